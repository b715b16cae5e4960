package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fullYAML = `
server:
  port: 9090

llm:
  model: gpt-4o-mini
  max_tokens: 800
  temperature: 0
  base_url: http://localhost:4000/v1
  api_key_env: TEAMDESK_OPENAI_KEY
  timeout: 45s

sessions:
  idle_timeout: 2h
  sweep_schedule: "0 * * * *"

logging:
  level: debug
  json: true
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q, want %q", cfg.LLM.Model, "gpt-4o-mini")
	}
	if cfg.LLM.MaxTokens != 800 {
		t.Errorf("LLM.MaxTokens = %d, want 800", cfg.LLM.MaxTokens)
	}
	if *cfg.LLM.Temperature != 0 {
		t.Errorf("LLM.Temperature = %v, want explicit 0", *cfg.LLM.Temperature)
	}
	if cfg.LLM.BaseURL != "http://localhost:4000/v1" {
		t.Errorf("LLM.BaseURL = %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.APIKeyEnv != "TEAMDESK_OPENAI_KEY" {
		t.Errorf("LLM.APIKeyEnv = %q", cfg.LLM.APIKeyEnv)
	}
	if cfg.LLM.Timeout != 45*time.Second {
		t.Errorf("LLM.Timeout = %v, want 45s", cfg.LLM.Timeout)
	}
	if cfg.Sessions.IdleTimeout != 2*time.Hour {
		t.Errorf("Sessions.IdleTimeout = %v, want 2h", cfg.Sessions.IdleTimeout)
	}
	if cfg.Sessions.SweepSchedule != "0 * * * *" {
		t.Errorf("Sessions.SweepSchedule = %q", cfg.Sessions.SweepSchedule)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	p := cfg.Params()
	if p.Model != "gpt-4o" || p.MaxTokens != 500 || p.Temperature != 0.6 {
		t.Errorf("Params() = %+v, want gpt-4o/500/0.6", p)
	}
	if cfg.LLM.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("LLM.APIKeyEnv = %q, want OPENAI_API_KEY", cfg.LLM.APIKeyEnv)
	}
	if cfg.Sessions.IdleTimeout != 12*time.Hour {
		t.Errorf("Sessions.IdleTimeout = %v, want 12h", cfg.Sessions.IdleTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestDefault_MatchesEmptyParse(t *testing.T) {
	parsed, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := Default()
	if d.Server != parsed.Server || d.Sessions != parsed.Sessions || d.Logging != parsed.Logging {
		t.Errorf("Default() = %+v, want %+v", d, parsed)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad model", "llm:\n  model: gpt-2\n", "model"},
		{"too many tokens", "llm:\n  max_tokens: 5000\n", "max_tokens"},
		{"temperature", "llm:\n  temperature: 2.0\n", "temperature"},
		{"port", "server:\n  port: 70000\n", "server.port"},
		{"schedule", "sessions:\n  sweep_schedule: every tuesday\n", "sweep_schedule"},
		{"log level", "logging:\n  level: loud\n", "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_MultipleErrors(t *testing.T) {
	_, err := Parse([]byte("server:\n  port: -1\nlogging:\n  level: loud\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected errors joined with '; ', got %q", err.Error())
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("server: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want config: parse prefix", err.Error())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "teamdesk.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error %v should wrap a not-exist error", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	env := map[string]string{EnvPort: "7070", EnvLogLevel: "warn"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	bad := Default()
	if err := bad.ApplyEnv(func(k string) string {
		if k == EnvPort {
			return "eighty"
		}
		return ""
	}); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestAPIKey(t *testing.T) {
	cfg := Default()
	got := cfg.APIKey(func(k string) string {
		if k == "OPENAI_API_KEY" {
			return "  sk-abc \n"
		}
		return ""
	})
	if got != "sk-abc" {
		t.Errorf("APIKey() = %q, want sk-abc", got)
	}
}
