package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/zulandar/teamdesk/internal/chat"
	"github.com/zulandar/teamdesk/internal/config"
	"github.com/zulandar/teamdesk/internal/db"
	"github.com/zulandar/teamdesk/internal/persona"
	"golang.org/x/term"
)

type askOpts struct {
	configPath  string
	persona     string
	model       string
	maxTokens   int
	temperature float64
}

func newAskCmd() *cobra.Command {
	var opts askOpts

	cmd := &cobra.Command{
		Use:   "ask --persona <name> <message>",
		Short: "Send one message to a persona and print the reply",
		Long: "Runs a single chat turn against the configured model. The API key is read from the " +
			"environment variable named in the config (OPENAI_API_KEY by default), or prompted for " +
			"when stdin is a terminal.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to teamdesk config file")
	cmd.Flags().StringVar(&opts.persona, "persona", "", "persona to ask (see 'teamdesk personas list')")
	cmd.Flags().StringVar(&opts.model, "model", "", "model override")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "max tokens override")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "temperature override")
	cmd.MarkFlagRequired("persona")
	return cmd
}

func runAsk(cmd *cobra.Command, opts askOpts, text string) error {
	cfg, err := loadConfig(opts.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	params := cfg.Params()
	if opts.model != "" {
		params.Model = opts.model
	}
	if cmd.Flags().Changed("max-tokens") {
		params.MaxTokens = opts.maxTokens
	}
	if cmd.Flags().Changed("temperature") {
		params.Temperature = opts.temperature
	}
	if err := params.Validate(); err != nil {
		return err
	}

	registry := persona.Default()
	if !registry.Has(opts.persona) {
		_, err := registry.Get(opts.persona)
		return err
	}

	apiKey, err := resolveAPIKey(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	client, err := newCompleter(cfg, logger)(apiKey)
	if err != nil {
		return err
	}

	gdb, err := db.OpenSession("ask-" + uuid.NewString())
	if err != nil {
		return err
	}
	defer db.Close(gdb)

	orch, err := chat.New(chat.Opts{DB: gdb, Registry: registry, Client: client, Logger: logger})
	if err != nil {
		return err
	}
	if err := orch.Seed(); err != nil {
		return err
	}

	reply, err := orch.Send(cmd.Context(), opts.persona, text, params)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
	return nil
}

// stdinIsTerminal reports whether the API key may be prompted for. Tests
// replace it.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// readSecret reads a line from the terminal without echo. Tests replace it.
var readSecret = func() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	return string(b), err
}

func resolveAPIKey(cfg *config.Config, prompt io.Writer) (string, error) {
	if key := cfg.APIKey(os.Getenv); key != "" {
		return key, nil
	}
	if !stdinIsTerminal() {
		return "", fmt.Errorf("no API key: set %s", cfg.LLM.APIKeyEnv)
	}
	fmt.Fprint(prompt, "OpenAI API key: ")
	key, err := readSecret()
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read API key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("no API key entered")
	}
	return key, nil
}
