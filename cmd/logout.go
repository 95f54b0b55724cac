package cmd

import (
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	Long: `Sign out of the Feedback Management System.

The server-side logout is best-effort; local tokens and session state are
cleared regardless of whether it succeeds.`,
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	a.session.SignOut(cmd.Context())
	return nil
}
