package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Home planner dashboard from the command line",
	Long: `planner signs in to the home planner dashboard server with a shared
access code and shows the household dashboard: task histograms, what is
due soon, upcoming reminders, recent knowledge and each person's workload.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(hashCodeCmd)
	rootCmd.AddCommand(versionCmd)
}
