package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/homeplanner/homeplanner/internal/auth"
)

var hashCodeCmd = &cobra.Command{
	Use:   "hash-code",
	Short: "Print a bcrypt hash of an access code for the server config",
	Long: `Read an access code and print its bcrypt hash, ready to paste into an
access_code block of planner.hcl.

Example:
  planner hash-code
  echo "$CODE" | planner hash-code`,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readPassword("Access code: ")
		if err != nil {
			return fmt.Errorf("failed to read access code: %w", err)
		}

		if strings.TrimSpace(code) == "" {
			return fmt.Errorf("access code cannot be empty")
		}

		hash, err := auth.HashCode(code)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
