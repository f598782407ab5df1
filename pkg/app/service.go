package app

import (
	"net/http"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"

	"github.com/code-payments/solana-http-server/pkg/balance"
	"github.com/code-payments/solana-http-server/pkg/instruction"
	"github.com/code-payments/solana-http-server/pkg/keypair"
	"github.com/code-payments/solana-http-server/pkg/netutil"
	"github.com/code-payments/solana-http-server/pkg/rate"
	"github.com/code-payments/solana-http-server/pkg/server/web"
	"github.com/code-payments/solana-http-server/pkg/solana"
)

// NewHandler wires the Solana client and services behind the HTTP API. The
// RPC endpoint is not contacted until the first request that needs it.
func NewHandler(config BaseConfig, metricsProvider *newrelic.Application) (http.Handler, error) {
	if _, err := netutil.ValidateHttpUrl(config.SolanaRpcUrl, false); err != nil {
		return nil, errors.Wrap(err, "invalid solana rpc url")
	}

	client := solana.New(config.SolanaRpcUrl, config.Commitment(), config.Timeout())

	server := web.NewServer(
		keypair.NewGenerator(nil),
		instruction.NewBuilder(client),
		balance.NewService(client),
	)

	return web.NewHandler(
		server,
		web.WithCorsAllowedOrigins(config.CorsOrigins()...),
		web.WithRateLimiter(rate.NewLimiter(config.RateLimitPerSecond)),
		web.WithNewRelic(metricsProvider),
	), nil
}
