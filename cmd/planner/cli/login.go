package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginServer string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a dashboard server with an access code",
	Long: `Sign in to a dashboard server with a shared access code.
The session token is stored in ~/.homeplanner/token with 0600 permissions.

Example:
  planner login --server http://localhost:8080
  echo "$CODE" | planner login --server http://localhost:8080`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session token",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Dashboard server URL (e.g. http://localhost:8080)")
	loginCmd.MarkFlagRequired("server")
}

func runLogin(cmd *cobra.Command, args []string) error {
	server := strings.TrimRight(loginServer, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://")
	}

	code, err := readPassword("Access code: ")
	if err != nil {
		return fmt.Errorf("failed to read access code: %w", err)
	}
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("access code cannot be empty")
	}

	client := NewClientWithURL(server)
	fmt.Fprintf(os.Stderr, "Authenticating with %s...\n", server)

	resp, err := client.Login(cmd.Context(), code)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := SaveToken(TokenData{
		Token:  resp.AccessToken,
		Server: server,
		Label:  resp.Label,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Logged in as %s (%s)\n", resp.Label, resp.Role)
	fmt.Fprintf(os.Stderr, "  Session expires %s\n", resp.ExpiresAt.Local().Format("Mon Jan 2 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if client, err := NewClient(); err == nil {
		if err := client.Logout(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: server logout failed: %v\n", err)
		}
	}
	if err := RemoveToken(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "✓ Logged out")
	return nil
}

// readPassword prompts for a secret without echoing input.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Non-interactive: read from stdin (piped input)
	var secret string
	if _, err := fmt.Fscanln(os.Stdin, &secret); err != nil {
		return "", err
	}
	return secret, nil
}
