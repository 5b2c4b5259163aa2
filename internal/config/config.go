// Package config loads service configuration from environment variables
// with sensible defaults, via viper.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the POS Insight service.
type Config struct {
	Port      int             `mapstructure:"port"`
	Version   string          `mapstructure:"version"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LLMConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type CacheConfig struct {
	ReportTTL time.Duration `mapstructure:"report_ttl"`
}

type SessionsConfig struct {
	// IdleTTL is how long a session may sit without activity before the
	// janitor purges it. Zero disables purging.
	IdleTTL time.Duration `mapstructure:"idle_ttl"`

	// SweepInterval is how often the janitor runs.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type NotifyConfig struct {
	// WebhookURL, when set, receives a POST for every finished report
	// workflow.
	WebhookURL string `mapstructure:"webhook_url"`

	// WebhookSecret enables HMAC-SHA256 signing of webhook payloads.
	WebhookSecret string `mapstructure:"webhook_secret"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name"`
}

// Load reads configuration from POSINSIGHT_* environment variables with
// defaults suitable for local development.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POSINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8080)
	v.SetDefault("version", "0.1.0")
	v.SetDefault("llm.endpoint", "https://api.openai.com/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "llama-3.3-70b")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("cache.report_ttl", 7*24*time.Hour)
	v.SetDefault("sessions.idle_ttl", 24*time.Hour)
	v.SetDefault("sessions.sweep_interval", time.Hour)
	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.webhook_secret", "")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "posinsight")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
