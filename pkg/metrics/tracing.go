package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// StartWebTransaction starts a New Relic web transaction named name for r. The
// returned writer and request must be used for the rest of the request so the
// response status and downstream segments are attributed to the transaction.
// The caller ends the transaction.
func StartWebTransaction(app *newrelic.Application, name string, w http.ResponseWriter, r *http.Request) (*newrelic.Transaction, http.ResponseWriter, *http.Request) {
	txn := app.StartTransaction(name)
	txn.SetWebRequestHTTP(r)
	w = txn.SetWebResponse(w)

	ctx := WithNewRelicApp(r.Context(), app)
	ctx = newrelic.NewContext(ctx, txn)
	return txn, w, r.WithContext(ctx)
}

// TraceMethodCall traces a method call with a given struct/package and method
// names. It returns nil when ctx carries no transaction; all MethodTracer
// methods are safe to call on nil.
func TraceMethodCall(ctx context.Context, structOrPackageName, methodName string) *MethodTracer {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}

	seg := txn.StartSegment(fmt.Sprintf("%s %s", structOrPackageName, methodName))

	return &MethodTracer{
		txn: txn,
		seg: seg,
	}
}

// MethodTracer collects analytics for a given method call within an existing
// trace.
type MethodTracer struct {
	txn *newrelic.Transaction
	seg *newrelic.Segment
}

// AddAttribute adds a key-value pair metadata to the method trace
func (t *MethodTracer) AddAttribute(key string, value interface{}) {
	if t == nil {
		return
	}

	t.seg.AddAttribute(key, value)
}

// OnError observes an error within a method trace
func (t *MethodTracer) OnError(err error) {
	if t == nil || err == nil {
		return
	}

	t.txn.NoticeError(err)
}

// End completes the trace for the method call.
func (t *MethodTracer) End() {
	if t == nil {
		return
	}

	t.seg.End()
}
