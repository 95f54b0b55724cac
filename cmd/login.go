package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/output"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the Feedback Management System",
	Long: `Sign in with a username and password and persist the session locally.

The password is read from the --password flag, or from stdin when the flag is
omitted.

Examples:
  feedbackctl login -u admin -p secret
  echo "$PASSWORD" | feedbackctl login -u admin`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "username")
	loginCmd.Flags().StringP("password", "p", "", "password (read from stdin if omitted)")
	_ = loginCmd.MarkFlagRequired("username")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if password == "" {
		reader := bufio.NewReader(cmd.InOrStdin())
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return &output.CLIError{
				Summary:  "no password provided",
				Detail:   "pass --password or pipe the password on stdin",
				ExitCode: output.ExitUsageError,
			}
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return &output.CLIError{
			Summary:  "no password provided",
			Detail:   "pass --password or pipe the password on stdin",
			ExitCode: output.ExitUsageError,
		}
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	if !a.session.SignIn(cmd.Context(), username, password) {
		return &output.CLIError{
			Summary:  "sign-in failed",
			Detail:   a.session.Err(),
			ExitCode: output.ExitAuthError,
		}
	}
	return nil
}
