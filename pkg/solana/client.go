package solana

import (
	"crypto/ed25519"
	"net/http"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/solana-http-server/pkg/metrics"
)

const (
	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005

	invalidParamCode = -32602

	DefaultTimeout = 30 * time.Second
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrNoBalance        = errors.New("no balance")
	ErrRateLimited      = errors.New("rate limited")
	ErrNodeUnavailable  = errors.New("rpc node unavailable")
	ErrInvalidRpcResult = errors.New("invalid value in rpc response")
)

// TokenAmount is the raw token balance of a token account.
type TokenAmount struct {
	Amount   uint64
	Decimals uint8
}

// Client provides read-only access to the Solana JSON RPC API.
//
// Calls are bounded by the client's HTTP timeout and are not retried.
//
// Reference: https://docs.solana.com/apps/jsonrpc-api
type Client interface {
	Commitment() Commitment
	GetBalance(ed25519.PublicKey) (uint64, error)
	GetTokenAccountBalance(ed25519.PublicKey) (*TokenAmount, error)
	GetMinimumBalanceForRentExemption(size uint64) (lamports uint64, err error)
}

type client struct {
	log        *logrus.Entry
	client     jsonrpc.RPCClient
	commitment Commitment
}

// New returns a client using the specified endpoint, commitment and per-call
// timeout. A non-positive timeout uses DefaultTimeout.
func New(endpoint string, commitment Commitment, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return NewWithRPCOptions(endpoint, commitment, &jsonrpc.RPCClientOpts{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	})
}

// NewWithRPCOptions returns a client configured with the specified RPC options.
func NewWithRPCOptions(endpoint string, commitment Commitment, opts *jsonrpc.RPCClientOpts) Client {
	return &client{
		log:        logrus.StandardLogger().WithField("type", "solana/client"),
		client:     jsonrpc.NewClientWithOpts(endpoint, opts),
		commitment: commitment,
	}
}

func (c *client) Commitment() Commitment {
	return c.commitment
}

func (c *client) call(out interface{}, method string, params ...interface{}) error {
	start := time.Now()
	err := c.client.CallFor(out, method, params...)
	metrics.ObserveRpcCall(method, time.Since(start), err)
	if err == nil {
		return nil
	}

	log := c.log.WithField("method", method)

	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		log.WithError(err).Warn("rpc transport failure")
		return err
	}

	switch {
	case rpcErr.Code == http.StatusTooManyRequests:
		log.Warn("rate limited")
		return ErrRateLimited
	case rpcErr.Code >= http.StatusInternalServerError || rpcErr.Code == rpcNodeUnhealthyCode:
		log.WithError(rpcErr).Warn("rpc node unavailable")
		return ErrNodeUnavailable
	}

	return rpcErr
}

func isInvalidParam(err error) bool {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	return ok && rpcErr.Code == invalidParamCode
}

func (c *client) GetMinimumBalanceForRentExemption(dataSize uint64) (lamports uint64, err error) {
	if err := c.call(&lamports, "getMinimumBalanceForRentExemption", dataSize, c.commitment); err != nil {
		return 0, errors.Wrap(err, "getMinimumBalanceForRentExemption() failed to send request")
	}

	return lamports, nil
}

func (c *client) GetBalance(account ed25519.PublicKey) (uint64, error) {
	var resp struct {
		Context struct {
			Slot int64 `json:"slot"`
		} `json:"context"`
		Value *uint64 `json:"value"`
	}
	if err := c.call(&resp, "getBalance", base58.Encode(account), c.commitment); err != nil {
		if isInvalidParam(err) {
			return 0, ErrNoBalance
		}

		return 0, errors.Wrap(err, "getBalance() failed to send request")
	}

	if resp.Value == nil {
		return 0, ErrInvalidRpcResult
	}
	return *resp.Value, nil
}

func (c *client) GetTokenAccountBalance(account ed25519.PublicKey) (*TokenAmount, error) {
	var resp struct {
		Context struct {
			Slot int64 `json:"slot"`
		} `json:"context"`
		Value *struct {
			Amount   string `json:"amount"`   // example: "49801500000",
			Decimals uint8  `json:"decimals"` // example: 5,
		} `json:"value"`
	}
	if err := c.call(&resp, "getTokenAccountBalance", base58.Encode(account), c.commitment); err != nil {
		// The node reports a missing token account as an invalid parameter
		// ("could not find account") rather than as a zero balance.
		if isInvalidParam(err) {
			return nil, ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "getTokenAccountBalance() failed to send request")
	}

	if resp.Value == nil {
		return nil, ErrAccountNotFound
	}

	amount, err := strconv.ParseUint(resp.Value.Amount, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRpcResult, "token amount %q", resp.Value.Amount)
	}

	return &TokenAmount{
		Amount:   amount,
		Decimals: resp.Value.Decimals,
	}, nil
}
