package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSendCommand creates the send command
func NewSendCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send a single message without TUI",
		Long: `Send one message to the chat API and print the reply.
The stored session id is used and, for a new conversation, saved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.client.Init(cmd.Context()); err != nil {
				return err
			}

			out, ok := a.client.SendMessage(cmd.Context(), strings.Join(args, " "))
			if !ok {
				return nil
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, out.Text)
			if out.NewSession {
				fmt.Fprintf(w, "\n(new session: %s)\n", a.client.SessionID())
			}
			if out.Err != nil {
				return fmt.Errorf("message not delivered: %w", out.Err)
			}
			return nil
		},
	}
}
