package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/strrl/llmchat/internal/storage"
)

// NewResetCommand creates the reset command
func NewResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored session id",
		Long:  `Remove the session id from local storage. The next message starts a new conversation.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.RemoveItem(cmd.Context(), storage.SessionKey); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			a.logger.Info("session reset")
			fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
			return nil
		},
	}
}
