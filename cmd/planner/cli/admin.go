package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var adminAttemptsLimit int

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin-only views",
	Long: `Inspect the login audit trail and the configured access codes.
Requires a session with the admin role.

Examples:
  planner admin attempts --limit 20
  planner admin codes`,
}

var adminAttemptsCmd = &cobra.Command{
	Use:   "attempts",
	Short: "List recent login attempts, newest first",
	RunE:  runAdminAttempts,
}

var adminCodesCmd = &cobra.Command{
	Use:   "codes",
	Short: "List configured access codes",
	RunE:  runAdminCodes,
}

func init() {
	adminAttemptsCmd.Flags().IntVar(&adminAttemptsLimit, "limit", 100, "Number of attempts to show (max 1000)")

	adminCmd.AddCommand(adminAttemptsCmd)
	adminCmd.AddCommand(adminCodesCmd)
}

func runAdminAttempts(cmd *cobra.Command, args []string) error {
	client, err := NewClient()
	if err != nil {
		return err
	}

	attempts, err := client.LoginAttempts(cmd.Context(), adminAttemptsLimit)
	if err != nil {
		return fmt.Errorf("failed to list login attempts: %w", err)
	}

	if len(attempts) == 0 {
		fmt.Fprintf(os.Stderr, "No login attempts recorded\n")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tCODE\tLABEL\tROLE\tRESULT\tCLIENT")
	for _, a := range attempts {
		label, role, result := "-", "-", "ok"
		if a.CodeLabel != nil {
			label = *a.CodeLabel
		}
		if a.CodeRole != nil {
			role = *a.CodeRole
		}
		if !a.Success {
			result = "failed"
			if a.FailureReason != nil {
				result = *a.FailureReason
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			a.MaskedCode, label, role, result, a.ClientIP)
	}
	w.Flush()

	return nil
}

func runAdminCodes(cmd *cobra.Command, args []string) error {
	client, err := NewClient()
	if err != nil {
		return err
	}

	codes, err := client.AccessCodes(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list access codes: %w", err)
	}

	if len(codes) == 0 {
		fmt.Fprintf(os.Stderr, "No access codes configured\n")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tROLE\tACTIVE")
	for _, c := range codes {
		active := "yes"
		if !c.Active {
			active = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.Label, c.Role, active)
	}
	w.Flush()

	return nil
}
