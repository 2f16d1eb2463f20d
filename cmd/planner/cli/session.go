package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show who you are signed in as",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := NewClient()
		if err != nil {
			return err
		}

		sess, err := client.Session(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Label:   %s\n", sess.Label)
		fmt.Fprintf(out, "Role:    %s\n", sess.Role)
		fmt.Fprintf(out, "Server:  %s\n", client.BaseURL)
		fmt.Fprintf(out, "Expires: %s\n", sess.ExpiresAt.Local().Format("Mon Jan 2 15:04"))
		return nil
	},
}
