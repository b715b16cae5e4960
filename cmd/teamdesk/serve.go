package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/teamdesk/internal/dashboard"
	"github.com/zulandar/teamdesk/internal/persona"
	"github.com/zulandar/teamdesk/internal/session"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the teamdesk web server",
		Long:  "Serves the chat, task and log pages and the JSON API. Every browser gets its own in-memory workspace.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to teamdesk config file")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	registry := persona.Default()
	apiKey := cfg.APIKey(os.Getenv)
	if apiKey == "" {
		logger.Info("no API key in environment; users must enter one in settings", zap.String("env", cfg.LLM.APIKeyEnv))
	}

	sessions, err := session.NewManager(session.Opts{
		Registry:      registry,
		Logger:        logger,
		Defaults:      session.Settings{APIKey: apiKey, Params: cfg.Params()},
		ClientFactory: newCompleter(cfg, logger),
		IdleTimeout:   cfg.Sessions.IdleTimeout,
	})
	if err != nil {
		return err
	}
	defer sessions.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := sessions.StartSweeper(ctx, cfg.Sessions.SweepSchedule); err != nil {
		return err
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		Sessions: sessions,
		Personas: registry,
		Port:     cfg.Server.Port,
		Out:      cmd.OutOrStdout(),
		Logger:   logger,
	})
}
