package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/strrl/llmchat/internal/storage"
)

// NewShowCommand creates the show command
func NewShowCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show configuration and local storage without TUI",
		Long: `Show the effective API endpoint, where data is kept and everything
in local storage, including the current session id.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.Close()

			items, err := a.store.Items(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read local storage: %w", err)
			}
			return printOverview(cmd.OutOrStdout(), a.cfg.APIBaseURL, a.cfg.StoragePath, items)
		},
	}
}

func printOverview(w io.Writer, apiBaseURL, storagePath string, items []storage.Item) error {
	fmt.Fprintf(w, "API:     %s\n", apiBaseURL)
	fmt.Fprintf(w, "Storage: %s\n", storagePath)
	fmt.Fprintln(w)

	session := "(none)"
	for _, item := range items {
		if item.Key == storage.SessionKey {
			session = item.Value
		}
	}
	fmt.Fprintf(w, "Session: %s\n", session)

	if len(items) == 0 {
		fmt.Fprintln(w, "\nLocal storage is empty")
		return nil
	}

	fmt.Fprintln(w, "\nLocal storage:")
	fmt.Fprintln(w, "==============")
	for i, item := range items {
		fmt.Fprintf(w, "%d. %s = %s\n", i+1, item.Key, item.Value)
		fmt.Fprintf(w, "   Updated: %s\n", item.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
