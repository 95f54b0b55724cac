package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/output"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)

	whoamiCmd.Flags().Bool("json", false, "output as JSON")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	user := a.session.CurrentUser()
	if user == nil {
		// A token can survive on disk without a session user (interrupted
		// sign-in); treat it as not logged in rather than dereference nil.
		return output.AuthRequired()
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	}

	a.printer.Header("Session")
	a.printer.Print("User:     %s", a.printer.Bold(user.Username))
	a.printer.Print("Email:    %s", user.Email)
	a.printer.Print("Roles:    %s", strings.Join(user.Roles, ", "))
	a.printer.Print("State:    %s", a.session.State())
	return nil
}
