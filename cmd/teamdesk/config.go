package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/zulandar/teamdesk/internal/config"
	"github.com/zulandar/teamdesk/internal/llm"
	"github.com/zulandar/teamdesk/internal/logging"
	"go.uber.org/zap"
)

const defaultConfigPath = "teamdesk.yaml"

// loadConfig reads the config file at path. A missing file is only an error
// when the user named it explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cfg = config.Default()
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(logging.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
}

// newCompleter builds the model client for an API key. Tests replace it.
var newCompleter = func(cfg *config.Config, logger *zap.Logger) llm.Factory {
	return func(apiKey string) (llm.Completer, error) {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: cfg.LLM.BaseURL,
			Timeout: cfg.LLM.Timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
