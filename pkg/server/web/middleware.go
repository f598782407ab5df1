package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/solana-http-server/pkg/apierror"
	"github.com/code-payments/solana-http-server/pkg/metrics"
	"github.com/code-payments/solana-http-server/pkg/rate"
)

const (
	requestIdHeaderName = "X-Request-Id"

	maxRequestIdLength = 128

	unknownRouteLabel = "unknown"

	rateLimitedErrorMessage = "Rate limit exceeded"
)

type requestIdContextKey struct{}

// RequestIdFromContext returns the id assigned to the request being served, or
// an empty string outside of a request.
func RequestIdFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIdContextKey{}).(string)
	return id
}

type middleware func(next http.Handler) http.Handler

func chain(h http.Handler, middlewares ...middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	if !r.wroteHeader {
		r.statusCode = statusCode
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

// requestIdMiddleware propagates a caller supplied X-Request-Id, or assigns a
// new one, and echoes it back on the response.
func requestIdMiddleware() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(requestIdHeaderName))
			if len(id) == 0 || len(id) > maxRequestIdLength {
				id = uuid.New().String()
			}

			w.Header().Set(requestIdHeaderName, id)
			ctx := context.WithValue(r.Context(), requestIdContextKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func prometheusMiddleware(routes map[string]struct{}) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := metrics.TrackInFlightRequest()
			defer done()

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			metrics.ObserveHttpRequest(r.Method, routeLabel(routes, r), rec.statusCode, time.Since(start))
		})
	}
}

func newRelicMiddleware(app *newrelic.Application, routes map[string]struct{}) middleware {
	return func(next http.Handler) http.Handler {
		if app == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := fmt.Sprintf("%s %s", r.Method, routeLabel(routes, r))
			txn, w, r := metrics.StartWebTransaction(app, name, w, r)
			defer txn.End()

			txn.AddAttribute("request_id", RequestIdFromContext(r.Context()))
			next.ServeHTTP(w, r)
		})
	}
}

func loggingMiddleware(log *logrus.Entry) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  RequestIdFromContext(r.Context()),
			}).Info("request served")
		})
	}
}

// recoveryMiddleware converts a panic into the generic internal error
// response.
func recoveryMiddleware(log *logrus.Entry) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				log.WithFields(logrus.Fields{
					"path":       r.URL.Path,
					"request_id": RequestIdFromContext(r.Context()),
					"panic":      fmt.Sprintf("%v", recovered),
				}).Error("recovered from panic")

				if rec.wroteHeader {
					return
				}

				statusCode, body := HandleApiErrorInWebContext(apierror.Internal(errors.Errorf("panic: %v", recovered)))
				if err := writeResponse(rec, statusCode, body); err != nil {
					log.WithError(err).Warn("failed to write body")
				}
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

// corsMiddleware allows browser clients from the configured origins. A "*"
// entry allows any origin. Preflight requests are answered directly.
func corsMiddleware(allowedOrigins []string) middleware {
	allowAll := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	isAllowed := func(origin string) bool {
		if allowAll {
			return true
		}
		for _, allowed := range allowedOrigins {
			if allowed == origin {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if isAllowed(origin) {
				allowOrigin := origin
				if allowAll {
					allowOrigin = "*"
				}

				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
				w.Header().Set("Access-Control-Expose-Headers", requestIdHeaderName)
				w.Header().Set("Access-Control-Max-Age", "3600")
				if !allowAll {
					w.Header().Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware limits requests per client IP.
func rateLimitMiddleware(limiter rate.Limiter, log *logrus.Entry) middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIp(r)

			allowed, err := limiter.Allow(ip)
			if err != nil {
				log.WithError(err).Warn("failed to check rate limit, allowing request")
				allowed = true
			}

			if !allowed {
				log.WithFields(logrus.Fields{
					"ip":         ip,
					"path":       r.URL.Path,
					"request_id": RequestIdFromContext(r.Context()),
				}).Debug("rate limited")

				metrics.RecordEvent(r.Context(), "RateLimited", map[string]interface{}{
					"path": r.URL.Path,
				})

				if err := writeResponse(w, http.StatusTooManyRequests, NewGenericApiFailureResponseBody(rateLimitedErrorMessage)); err != nil {
					log.WithError(err).Warn("failed to write body")
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func routeLabel(routes map[string]struct{}, r *http.Request) string {
	if _, ok := routes[r.URL.Path]; ok {
		return r.URL.Path
	}
	return unknownRouteLabel
}
