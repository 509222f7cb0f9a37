package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/strrl/llmchat/internal/chat"
	"github.com/strrl/llmchat/internal/config"
	"github.com/strrl/llmchat/internal/db"
	"github.com/strrl/llmchat/internal/logging"
	"github.com/strrl/llmchat/internal/storage"
	"github.com/strrl/llmchat/internal/tui"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	envFile    string
	apiBaseURL string
	debug      bool
}

// app is everything a command needs, built once per invocation
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *sql.DB
	store  *storage.DuckDBStore
	client *chat.Client
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	_ = a.logger.Sync()
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "llmchat",
		Short: "Chat with an LLM service from the terminal",
		Long: `llmchat is a TUI client for an LLM chat service.

It keeps the conversation's session id in local storage so the backend can
continue the same conversation across runs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file (default: ~/.llmchat/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "path to .env file (ignored if missing)")
	rootCmd.PersistentFlags().StringVar(&opts.apiBaseURL, "api-base-url", "", "chat API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log at debug level")

	rootCmd.AddCommand(NewSendCommand(opts))
	rootCmd.AddCommand(NewShowCommand(opts))
	rootCmd.AddCommand(NewResetCommand(opts))
	rootCmd.AddCommand(NewMockServerCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	if err := loadDotEnv(opts.envFile); err != nil {
		return config.Config{}, fmt.Errorf("failed to load %s: %w", opts.envFile, err)
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return config.Config{}, err
	}

	path, required := opts.configPath, true
	if path == "" {
		path, required = filepath.Join(dataDir, "config.yaml"), false
	}

	cfg, err := config.Load(path, dataDir, required)
	if err != nil {
		return config.Config{}, err
	}
	if opts.apiBaseURL != "" {
		cfg.APIBaseURL = opts.apiBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp wires configuration, logging, storage and the chat client
func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogFile, opts.debug)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.StoragePath)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	store, err := storage.NewDuckDBStore(ctx, database)
	if err != nil {
		database.Close()
		_ = logger.Sync()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		db:     database,
		store:  store,
		client: chat.NewClient(cfg, store, logger),
	}, nil
}

func runTUI(ctx context.Context, opts *rootOptions) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := tui.Run(ctx, a.cfg, a.client, a.logger); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
