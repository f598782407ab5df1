package web

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/solana-http-server/pkg/rate"
)

const (
	notFoundErrorMessage         = "Not found"
	methodNotAllowedErrorMessage = "Method not allowed"
)

// Option configures the handler returned by NewHandler.
type Option func(o *opts)

type opts struct {
	corsAllowedOrigins []string
	limiter            rate.Limiter
	newRelic           *newrelic.Application
}

// WithCorsAllowedOrigins restricts the origins allowed by CORS. "*" allows
// every origin, which is the default.
func WithCorsAllowedOrigins(origins ...string) Option {
	return func(o *opts) {
		o.corsAllowedOrigins = origins
	}
}

// WithRateLimiter limits requests per client IP.
func WithRateLimiter(limiter rate.Limiter) Option {
	return func(o *opts) {
		o.limiter = limiter
	}
}

// WithNewRelic records a New Relic web transaction for every request.
func WithNewRelic(app *newrelic.Application) Option {
	return func(o *opts) {
		o.newRelic = app
	}
}

// NewHandler returns the HTTP handler serving s.
//
// Middleware wraps the router rather than being registered on it so that
// unmatched routes are also observed.
func NewHandler(s *Server, options ...Option) http.Handler {
	o := opts{
		corsAllowedOrigins: []string{"*"},
		limiter:            &rate.NoLimiter{},
	}
	for _, option := range options {
		option(&o)
	}

	log := logrus.StandardLogger().WithField("type", "web/router")

	router := mux.NewRouter()
	routes := make(map[string]struct{})

	for path, handler := range s.GetHandlers() {
		router.HandleFunc(path, handler).Methods(http.MethodPost)
		routes[path] = struct{}{}
	}
	router.HandleFunc(healthPath, s.healthHandler(healthPath)).Methods(http.MethodGet)
	routes[healthPath] = struct{}{}

	router.NotFoundHandler = failureHandler(log, http.StatusNotFound, notFoundErrorMessage)
	router.MethodNotAllowedHandler = failureHandler(log, http.StatusMethodNotAllowed, methodNotAllowedErrorMessage)

	return chain(
		router,
		requestIdMiddleware(),
		prometheusMiddleware(routes),
		newRelicMiddleware(o.newRelic, routes),
		loggingMiddleware(log),
		recoveryMiddleware(log),
		corsMiddleware(o.corsAllowedOrigins),
		rateLimitMiddleware(o.limiter, log),
	)
}

func failureHandler(log *logrus.Entry, statusCode int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := writeResponse(w, statusCode, NewGenericApiFailureResponseBody(message)); err != nil {
			log.WithError(err).Warn("failed to write body")
		}
	})
}
