package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMethodCall_WithoutTransaction(t *testing.T) {
	tracer := TraceMethodCall(context.Background(), "pkg", "Method")
	assert.Nil(t, tracer)

	// Must not panic.
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("boom"))
	tracer.End()
}

func TestStartWebTransaction(t *testing.T) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName("test"),
		newrelic.ConfigEnabled(false),
	)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/send/sol", nil)

	txn, w, req := StartWebTransaction(app, "POST /send/sol", rec, req)
	defer txn.End()

	assert.NotNil(t, newrelic.FromContext(req.Context()))
	assert.Equal(t, app, req.Context().Value(NewRelicContextKey{}))

	tracer := TraceMethodCall(req.Context(), "pkg", "Method")
	require.NotNil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("boom"))
	tracer.End()

	w.WriteHeader(http.StatusAccepted)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// No app means no event, and no panic.
	RecordEvent(context.Background(), "Event", map[string]interface{}{"k": "v"})
	RecordEvent(req.Context(), "Event", map[string]interface{}{"k": "v"})
}
