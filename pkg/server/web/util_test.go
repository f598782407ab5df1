package web

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-http-server/pkg/apierror"
)

func TestHandleApiErrorInWebContext(t *testing.T) {
	for _, tc := range []struct {
		err        error
		statusCode int
		message    string
	}{
		{apierror.InvalidInput("from", "invalid public key: invalid base58 string"), http.StatusBadRequest, "Invalid input: from: invalid public key: invalid base58 string"},
		{apierror.Keypair("secret", nil, "invalid base58 private key"), http.StatusBadRequest, "Keypair error: secret: invalid base58 private key"},
		{apierror.Transaction(nil, "bad seeds"), http.StatusBadRequest, "Transaction failed: bad seeds"},
		{apierror.MissingField("amount"), http.StatusBadRequest, "JSON error: missing field `amount`"},
		{apierror.Remote(errors.New("node unavailable")), http.StatusBadGateway, "Solana RPC error: node unavailable"},
		{errors.Wrap(apierror.Remote(errors.New("timeout")), "wrapped"), http.StatusBadGateway, "Solana RPC error: timeout"},
		{apierror.Internal(errors.New("secret detail")), http.StatusInternalServerError, "Internal server error"},
		{errors.New("unclassified"), http.StatusInternalServerError, "Internal server error"},
	} {
		statusCode, body := HandleApiErrorInWebContext(tc.err)
		assert.Equal(t, tc.statusCode, statusCode, tc.err.Error())
		assert.Equal(t, false, body[successJsonKey])
		assert.Equal(t, tc.message, body[errorJsonKey])
		assert.NotContains(t, body, dataJsonKey)
	}
}

func TestGenericApiResponseBody(t *testing.T) {
	success := NewGenericApiSuccessResponseBody(&healthResponse{Status: "ok"})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(success.ToString()), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, map[string]interface{}{"status": "ok"}, decoded["data"])
	assert.NotContains(t, decoded, "error")

	failure := NewGenericApiFailureResponseBody("Invalid input: x")
	decoded = nil
	require.NoError(t, json.Unmarshal([]byte(failure.ToString()), &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "Invalid input: x", decoded["error"])
	assert.NotContains(t, decoded, "data")
}
