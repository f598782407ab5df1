package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// RpcError is a JSON-RPC error object returned by a FakeRpcNode.
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResult struct {
	result interface{}
	err    *RpcError
	delay  time.Duration
}

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      int               `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// RecordedCall is a request observed by a FakeRpcNode.
type RecordedCall struct {
	Method string
	Params []json.RawMessage
}

// FakeRpcNode is a minimal Solana JSON-RPC node backed by httptest. Methods
// without a configured response reply with a method-not-found error.
type FakeRpcNode struct {
	server *httptest.Server

	mu      sync.Mutex
	results map[string]rpcResult
	calls   []RecordedCall
}

// NewFakeRpcNode starts a FakeRpcNode that is closed when the test ends.
func NewFakeRpcNode(t *testing.T) *FakeRpcNode {
	n := &FakeRpcNode{
		results: make(map[string]rpcResult),
	}
	n.server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.server.Close)
	return n
}

// URL returns the node's endpoint.
func (n *FakeRpcNode) URL() string {
	return n.server.URL
}

// SetResult configures the result returned for method.
func (n *FakeRpcNode) SetResult(method string, result interface{}) {
	n.mu.Lock()
	n.results[method] = rpcResult{result: result}
	n.mu.Unlock()
}

// SetError configures the JSON-RPC error returned for method.
func (n *FakeRpcNode) SetError(method string, code int, message string) {
	n.mu.Lock()
	n.results[method] = rpcResult{err: &RpcError{Code: code, Message: message}}
	n.mu.Unlock()
}

// SetDelay makes the node stall before answering method.
func (n *FakeRpcNode) SetDelay(method string, delay time.Duration) {
	n.mu.Lock()
	r := n.results[method]
	r.delay = delay
	n.results[method] = r
	n.mu.Unlock()
}

// Calls returns the requests observed so far.
func (n *FakeRpcNode) Calls() []RecordedCall {
	n.mu.Lock()
	defer n.mu.Unlock()

	calls := make([]RecordedCall, len(n.calls))
	copy(calls, n.calls)
	return calls
}

func (n *FakeRpcNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, RecordedCall{Method: req.Method, Params: req.Params})
	res, ok := n.results[req.Method]
	n.mu.Unlock()

	if res.delay > 0 {
		select {
		case <-time.After(res.delay):
		case <-r.Context().Done():
			return
		}
	}

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      req.ID,
	}
	switch {
	case !ok:
		resp["error"] = RpcError{Code: -32601, Message: "Method not found"}
	case res.err != nil:
		resp["error"] = res.err
	default:
		resp["result"] = res.result
	}

	w.Header().Set("content-type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ContextValue wraps value in the {context, value} envelope used by most
// Solana RPC responses.
func ContextValue(slot uint64, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": slot},
		"value":   value,
	}
}
