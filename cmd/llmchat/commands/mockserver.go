package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strrl/llmchat/internal/devserver"
	"go.uber.org/zap"
)

// NewMockServerCommand creates the mock-server command
func NewMockServerCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run a local echo backend for development",
		Long: `Run a local backend that implements POST /api/chat by echoing
messages back. Point the client at it with --api-base-url http://localhost:5000/api.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewDevelopmentConfig()
			if !opts.debug {
				config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
			}
			logger, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			fmt.Fprintf(cmd.OutOrStdout(), "Mock chat API listening on %s\n", addr)
			return devserver.NewServer(logger).Start(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5000", "listen address")
	return cmd
}
