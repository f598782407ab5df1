package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-http-server/pkg/solana"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", config.ListenAddress)
	assert.Equal(t, "https://api.devnet.solana.com", config.SolanaRpcUrl)
	assert.Equal(t, solana.CommitmentConfirmed, config.Commitment())
	assert.Equal(t, 30*time.Second, config.Timeout())
	assert.Equal(t, []string{"*"}, config.CorsOrigins())
	assert.Zero(t, config.RateLimitPerSecond)
	assert.Equal(t, "solana-http-server", config.AppName)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SOLANA_RPC_URL", "http://127.0.0.1:8899")
	t.Setenv("SOLANA_COMMITMENT", "finalized")
	t.Setenv("TIMEOUT_SECONDS", "5")
	t.Setenv("LISTEN_ADDRESS", "127.0.0.1:4000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RATE_LIMIT_PER_SECOND", "2.5")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "5s")
	t.Setenv("ENABLE_PPROF", "false")

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8899", config.SolanaRpcUrl)
	assert.Equal(t, solana.CommitmentFinalized, config.Commitment())
	assert.Equal(t, 5*time.Second, config.Timeout())
	assert.Equal(t, "127.0.0.1:4000", config.ListenAddress)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CorsOrigins())
	assert.Equal(t, 2.5, config.RateLimitPerSecond)
	assert.Equal(t, 5*time.Second, config.ShutdownGracePeriod)
	assert.False(t, config.EnablePprof)
}

func TestLoadConfig_Fallbacks(t *testing.T) {
	for _, tc := range []struct {
		commitment string
		timeout    string
		expectedC  solana.Commitment
		expectedT  time.Duration
	}{
		{"processed", "abc", solana.CommitmentProcessed, 30 * time.Second},
		{"max", "-1", solana.CommitmentConfirmed, 30 * time.Second},
		{"FINALIZED", "0", solana.CommitmentFinalized, 30 * time.Second},
		{"bogus", " 12 ", solana.CommitmentConfirmed, 12 * time.Second},
	} {
		t.Run(tc.commitment, func(t *testing.T) {
			t.Setenv("SOLANA_COMMITMENT", tc.commitment)
			t.Setenv("TIMEOUT_SECONDS", tc.timeout)

			config, err := LoadConfig("")
			require.NoError(t, err)
			assert.Equal(t, tc.expectedC, config.Commitment())
			assert.Equal(t, tc.expectedT, config.Timeout())
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"solana_rpc_url: http://10.0.0.1:8899\n"+
			"solana_commitment: processed\n"+
			"timeout_seconds: 7\n"+
			"log_level: debug\n",
	), 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.1:8899", config.SolanaRpcUrl)
	assert.Equal(t, solana.CommitmentProcessed, config.Commitment())
	assert.Equal(t, 7*time.Second, config.Timeout())
	assert.Equal(t, "debug", config.LogLevel)

	t.Setenv("SOLANA_COMMITMENT", "finalized")
	config, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, solana.CommitmentFinalized, config.Commitment())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, config)
}
