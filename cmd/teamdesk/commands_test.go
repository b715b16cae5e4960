package main

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/zulandar/teamdesk/internal/config"
	"github.com/zulandar/teamdesk/internal/llm"
	"github.com/zulandar/teamdesk/internal/task"
	"go.uber.org/zap"
)

var errFake = errors.New("fake failure")

// stubCompleter replaces the model client factory for the duration of a test.
func stubCompleter(t *testing.T, fn llm.CompleterFunc) *[]string {
	t.Helper()
	var keys []string
	orig := newCompleter
	newCompleter = func(cfg *config.Config, logger *zap.Logger) llm.Factory {
		return func(apiKey string) (llm.Completer, error) {
			keys = append(keys, apiKey)
			return fn, nil
		}
	}
	t.Cleanup(func() { newCompleter = orig })
	return &keys
}

func stubTerminal(t *testing.T, isTerm bool, secret string) {
	t.Helper()
	origIs, origRead := stdinIsTerminal, readSecret
	stdinIsTerminal = func() bool { return isTerm }
	readSecret = func() (string, error) { return secret, nil }
	t.Cleanup(func() { stdinIsTerminal, readSecret = origIs, origRead })
}

// ---------------------------------------------------------------------------
// serve
// ---------------------------------------------------------------------------

func TestServeCmd_Help(t *testing.T) {
	out, err := run(t, "serve", "--help")
	if err != nil {
		t.Fatalf("serve --help failed: %v", err)
	}
	for _, want := range []string{"web server", "--port", "--config"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to mention %q, got: %s", want, out)
		}
	}
}

func TestServeCmd_MissingExplicitConfig(t *testing.T) {
	_, err := run(t, "serve", "--config", "/nonexistent/teamdesk.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestServeCmd_DefaultPort(t *testing.T) {
	cmd := newServeCmd()
	flag := cmd.Flags().Lookup("port")
	if flag == nil {
		t.Fatal("--port flag not found")
	}
	if flag.DefValue != "8080" {
		t.Errorf("default port = %q, want %q", flag.DefValue, "8080")
	}
}

func TestLoadConfig_MissingDefaultPathUsesDefaults(t *testing.T) {
	cfg, err := loadConfig("/nonexistent/teamdesk.yaml", false)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.LLM.Model != llm.DefaultModel {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(config.EnvPort, "9191")
	cfg, err := loadConfig("/nonexistent/teamdesk.yaml", false)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("port = %d, want 9191", cfg.Server.Port)
	}
}

// ---------------------------------------------------------------------------
// personas
// ---------------------------------------------------------------------------

func TestPersonasList(t *testing.T) {
	out, err := run(t, "personas", "list")
	if err != nil {
		t.Fatalf("personas list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 26 {
		t.Errorf("lines = %d, want 26", len(lines))
	}
	if !strings.Contains(lines[0], "Cold Calling Agent") {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestPersonasShow(t *testing.T) {
	out, err := run(t, "personas", "show", "BPO Specialist")
	if err != nil {
		t.Fatalf("personas show: %v", err)
	}
	if !strings.HasPrefix(out, "BPO Specialist\n\n") || !strings.Contains(out, "Broker Price Opinion") {
		t.Errorf("output = %q", out)
	}
}

func TestPersonasShow_Unknown(t *testing.T) {
	_, err := run(t, "personas", "show", "Nobody")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
}

// ---------------------------------------------------------------------------
// ask
// ---------------------------------------------------------------------------

func TestAsk_UsesEnvKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	var got llm.Request
	keys := stubCompleter(t, func(ctx context.Context, req llm.Request) (string, error) {
		got = req
		return "Try the Tuesday slot.", nil
	})

	out, err := run(t, "ask", "--persona", "Appointment Booker", "--model", "gpt-4o-mini", "--temperature", "0.2", "book", "a", "showing")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if strings.TrimSpace(out) != "Try the Tuesday slot." {
		t.Errorf("output = %q", out)
	}
	if len(*keys) != 1 || (*keys)[0] != "sk-env" {
		t.Errorf("keys = %v, want [sk-env]", *keys)
	}
	if got.Model != "gpt-4o-mini" || got.Temperature != 0.2 || got.MaxTokens != llm.DefaultMaxTokens {
		t.Errorf("params = %s/%v/%d", got.Model, got.Temperature, got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "book a showing" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestAsk_PromptsOnTerminal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	stubTerminal(t, true, " sk-typed \n")
	keys := stubCompleter(t, func(ctx context.Context, req llm.Request) (string, error) { return "ok", nil })

	out, err := run(t, "ask", "--persona", "Buyer Agent", "hello")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, "OpenAI API key:") {
		t.Errorf("no prompt shown: %q", out)
	}
	if len(*keys) != 1 || (*keys)[0] != "sk-typed" {
		t.Errorf("keys = %v, want [sk-typed]", *keys)
	}
}

func TestAsk_NoKeyNoTerminal(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	stubTerminal(t, false, "")
	stubCompleter(t, func(ctx context.Context, req llm.Request) (string, error) { return "ok", nil })

	_, err := run(t, "ask", "--persona", "Buyer Agent", "hello")
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("err = %v, want mention of OPENAI_API_KEY", err)
	}
}

func TestAsk_Validation(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	stubCompleter(t, func(ctx context.Context, req llm.Request) (string, error) { return "ok", nil })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing persona flag", []string{"ask", "hello"}, "persona"},
		{"unknown persona", []string{"ask", "--persona", "Nobody", "hello"}, "not found"},
		{"bad model", []string{"ask", "--persona", "Buyer Agent", "--model", "gpt-2", "hello"}, "model"},
		{"tokens too high", []string{"ask", "--persona", "Buyer Agent", "--max-tokens", "5000", "hello"}, "max_tokens"},
		{"blank message", []string{"ask", "--persona", "Buyer Agent", "   "}, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want to contain %q", err, tt.want)
			}
		})
	}
}

func TestAsk_ModelError(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	stubCompleter(t, func(ctx context.Context, req llm.Request) (string, error) {
		return "", errors.New("API request failed with status 401: bad key")
	})

	_, err := run(t, "ask", "--persona", "Buyer Agent", "hello")
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Errorf("err = %v, want the model error", err)
	}
}

// ---------------------------------------------------------------------------
// demo
// ---------------------------------------------------------------------------

func TestDemoExport(t *testing.T) {
	out, err := run(t, "demo", "export")
	if err != nil {
		t.Fatalf("demo export: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not CSV: %v", err)
	}
	titles := task.DemoTitles()
	if len(records) != len(titles)+1 {
		t.Fatalf("records = %d, want %d", len(records), len(titles)+1)
	}
	if records[0][0] != "task_id" || records[0][1] != "title" {
		t.Errorf("header = %v", records[0])
	}
	for i, title := range titles {
		if records[i+1][1] != title {
			t.Errorf("row %d title = %q, want %q", i, records[i+1][1], title)
		}
		if records[i+1][0] == "" {
			t.Errorf("row %d has no id", i)
		}
	}
}
