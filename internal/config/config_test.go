package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LLM.Endpoint != "https://api.openai.com/v1" {
		t.Errorf("LLM.Endpoint = %q", cfg.LLM.Endpoint)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("LLM.MaxTokens = %d", cfg.LLM.MaxTokens)
	}
	if cfg.Cache.ReportTTL != 7*24*time.Hour {
		t.Errorf("Cache.ReportTTL = %v", cfg.Cache.ReportTTL)
	}
	if cfg.Sessions.IdleTTL != 24*time.Hour {
		t.Errorf("Sessions.IdleTTL = %v", cfg.Sessions.IdleTTL)
	}
	if cfg.Notify.WebhookURL != "" {
		t.Errorf("Notify.WebhookURL = %q, want empty", cfg.Notify.WebhookURL)
	}
	if cfg.Telemetry.Enabled {
		t.Error("telemetry should default to disabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POSINSIGHT_PORT", "9090")
	t.Setenv("POSINSIGHT_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("POSINSIGHT_SESSIONS_IDLE_TTL", "48h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want env override 9090", cfg.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q", cfg.LLM.Model)
	}
	if cfg.Sessions.IdleTTL != 48*time.Hour {
		t.Errorf("Sessions.IdleTTL = %v, want 48h", cfg.Sessions.IdleTTL)
	}
}
