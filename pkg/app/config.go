package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/solana-http-server/pkg/solana"
)

const defaultTimeoutSeconds = 30

// BaseConfig contains the configuration of the server process, as well as the
// Solana facade it serves. It is immutable once loaded.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	ListenAddress      string `mapstructure:"listen_address"`
	DebugListenAddress string `mapstructure:"debug_listen_address"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	EnablePprof  bool `mapstructure:"enable_pprof"`
	EnableExpvar bool `mapstructure:"enable_expvar"`

	// Ballast for improving Go GC performance. Note that capacity will be
	// limited to 50% of the total memory.
	// https://blog.twitch.tv/en/2019/04/10/go-memory-ballast-how-i-learnt-to-stop-worrying-and-love-the-heap/
	EnableBallast   bool    `mapstructure:"enable_ballast"`
	BallastCapacity float32 `mapstructure:"ballast_capacity"`

	// Periodically terminate the application when there's a memory leak
	EnableMemoryLeakCron   bool   `mapstructure:"enable_memory_leak_cron"`
	MemoryLeakCronSchedule string `mapstructure:"memory_leak_cron_schedule"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	SolanaRpcUrl     string `mapstructure:"solana_rpc_url"`
	SolanaCommitment string `mapstructure:"solana_commitment"`

	// Kept as text so an unparsable value falls back to the default rather
	// than failing startup.
	TimeoutSeconds string `mapstructure:"timeout_seconds"`

	// Comma separated list of origins, or "*".
	CorsAllowedOrigins string `mapstructure:"cors_allowed_origins"`

	// Requests per second allowed per client IP. Zero disables limiting.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	AppName: "solana-http-server",

	ListenAddress:      "0.0.0.0:3000",
	DebugListenAddress: ":8123",

	ShutdownGracePeriod: 30 * time.Second,

	EnablePprof:  true,
	EnableExpvar: true,

	EnableBallast:   false,
	BallastCapacity: 0.333,

	EnableMemoryLeakCron:   false,
	MemoryLeakCronSchedule: "0 5 * * *",

	SolanaRpcUrl:     string(solana.EnvironmentDev),
	SolanaCommitment: solana.CommitmentConfirmed.String(),
	TimeoutSeconds:   strconv.Itoa(defaultTimeoutSeconds),

	CorsAllowedOrigins: "*",
}

var envBindings = map[string]string{
	"log_level": "LOG_LEVEL",

	"app_name": "APP_NAME",

	"listen_address":       "LISTEN_ADDRESS",
	"debug_listen_address": "DEBUG_LISTEN_ADDRESS",

	"shutdown_grace_period": "SHUTDOWN_GRACE_PERIOD",

	"enable_pprof":  "ENABLE_PPROF",
	"enable_expvar": "ENABLE_EXPVAR",

	"enable_ballast":   "ENABLE_BALLAST",
	"ballast_capacity": "BALLAST_CAPACITY",

	"enable_memory_leak_cron":   "ENABLE_MEMORY_LEAK_CRON",
	"memory_leak_cron_schedule": "MEMORY_LEAK_CRON_SCHEDULE",

	"new_relic_license_key": "NEW_RELIC_LICENSE_KEY",

	"solana_rpc_url":    "SOLANA_RPC_URL",
	"solana_commitment": "SOLANA_COMMITMENT",
	"timeout_seconds":   "TIMEOUT_SECONDS",

	"cors_allowed_origins":  "CORS_ALLOWED_ORIGINS",
	"rate_limit_per_second": "RATE_LIMIT_PER_SECOND",
}

// LoadConfig reads the configuration from the environment and, when present,
// the file at configPath. Environment variables take precedence.
func LoadConfig(configPath string) (BaseConfig, error) {
	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return BaseConfig{}, errors.Wrapf(err, "error binding %s", env)
		}
	}

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we check ourselves.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return BaseConfig{}, errors.Wrap(err, "failed to load config")
			}
		} else if !os.IsNotExist(err) {
			return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
		}
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}

// Timeout is the bound on each outbound RPC call. Values that aren't a
// positive whole number of seconds fall back to the default.
func (c BaseConfig) Timeout() time.Duration {
	seconds, err := strconv.ParseUint(strings.TrimSpace(c.TimeoutSeconds), 10, 32)
	if err != nil || seconds == 0 {
		seconds = defaultTimeoutSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Commitment is the configured commitment level. Unknown values fall back to
// confirmed.
func (c BaseConfig) Commitment() solana.Commitment {
	return solana.ParseCommitment(c.SolanaCommitment)
}

func (c BaseConfig) CorsOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CorsAllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if len(origin) > 0 {
			origins = append(origins, origin)
		}
	}

	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
