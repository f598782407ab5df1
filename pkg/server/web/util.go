package web

import (
	"encoding/json"
	"net/http"

	"github.com/code-payments/solana-http-server/pkg/apierror"
)

const (
	successJsonKey = "success"
	dataJsonKey    = "data"
	errorJsonKey   = "error"

	contentTypeHeaderName      = "content-type"
	jsonContentTypeHeaderValue = "application/json"
)

// GenericApiResponseBody is the envelope of every response. data is present
// only on success and error only on failure.
type GenericApiResponseBody map[string]any

func NewGenericApiSuccessResponseBody(data any) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: true,
		dataJsonKey:    data,
	}
}

func NewGenericApiFailureResponseBody(message string) GenericApiResponseBody {
	return map[string]any{
		successJsonKey: false,
		errorJsonKey:   message,
	}
}

func (b *GenericApiResponseBody) ToString() string {
	marshalled, err := json.Marshal(b)
	if err != nil {
		fallback := NewGenericApiFailureResponseBody(apierror.Internal(err).Public())
		marshalled, _ = json.Marshal(fallback)
	}
	return string(marshalled)
}

// HandleApiErrorInWebContext maps err onto its HTTP status code and the
// failure envelope shown to callers. This is the only place error kinds are
// translated into status codes.
func HandleApiErrorInWebContext(err error) (int, GenericApiResponseBody) {
	apiErr := apierror.From(err)

	var statusCode int
	switch apiErr.Kind {
	case apierror.KindInvalidInput, apierror.KindKeypair, apierror.KindTransaction, apierror.KindMalformedBody:
		statusCode = http.StatusBadRequest
	case apierror.KindRemote:
		statusCode = http.StatusBadGateway
	default:
		statusCode = http.StatusInternalServerError
	}

	return statusCode, NewGenericApiFailureResponseBody(apiErr.Public())
}

func writeResponse(w http.ResponseWriter, statusCode int, body GenericApiResponseBody) error {
	w.Header().Set(contentTypeHeaderName, jsonContentTypeHeaderValue)
	w.WriteHeader(statusCode)
	_, err := w.Write([]byte(body.ToString()))
	return err
}
