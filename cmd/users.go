package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage users",
}

var usersListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE:    runUsersList,
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersGet,
}

var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user",
	RunE:  runUsersCreate,
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersUpdate,
}

var usersDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a user",
	Args:    cobra.ExactArgs(1),
	RunE:    runUsersDelete,
}

var usersActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Activate a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserActive(cmd, args[0], true)
	},
}

var usersDeactivateCmd = &cobra.Command{
	Use:   "deactivate <id>",
	Short: "Deactivate a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setUserActive(cmd, args[0], false)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(
		usersListCmd,
		usersGetCmd,
		usersCreateCmd,
		usersUpdateCmd,
		usersDeleteCmd,
		usersActivateCmd,
		usersDeactivateCmd,
	)

	usersListCmd.Flags().Bool("json", false, "output as JSON")

	usersCreateCmd.Flags().String("username", "", "username")
	usersCreateCmd.Flags().String("email", "", "email address")
	usersCreateCmd.Flags().String("password", "", "initial password")
	usersCreateCmd.Flags().StringSlice("roles", []string{"USER"}, "roles")
	usersCreateCmd.Flags().StringSlice("departments", nil, "department ids")
	_ = usersCreateCmd.MarkFlagRequired("username")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")

	usersUpdateCmd.Flags().String("email", "", "email address")
	usersUpdateCmd.Flags().StringSlice("roles", nil, "roles")
	usersUpdateCmd.Flags().StringSlice("departments", nil, "department ids")
	usersUpdateCmd.Flags().Bool("active", true, "active flag")
}

func runUsersList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	users, err := a.fms.Users.List(cmd.Context())
	if err != nil {
		return apiCLIError(err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(users)
	}

	table := output.NewTable([]string{"", "ID", "USERNAME", "EMAIL", "ROLES"})
	for _, u := range users {
		status := "inactive"
		if u.Active {
			status = "active"
		}
		table.AddRow([]string{
			a.printer.StatusBadge(status),
			u.ID,
			a.printer.Bold(u.Username),
			u.Email,
			strings.Join(u.Roles, ", "),
		})
	}
	table.Render()
	return nil
}

func runUsersGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	user, err := a.fms.Users.Get(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(user)
}

func runUsersCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	roles, _ := cmd.Flags().GetStringSlice("roles")
	departments, _ := cmd.Flags().GetStringSlice("departments")

	user, err := a.fms.Users.Create(cmd.Context(), fms.CreateUserRequest{
		Username:      username,
		Email:         email,
		Password:      password,
		Roles:         roles,
		DepartmentIDs: departments,
	})
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Created user %s (%s).", user.Username, user.ID)
	return nil
}

func runUsersUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	req := fms.UpdateUserRequest{}
	if cmd.Flags().Changed("email") {
		req.Email, _ = cmd.Flags().GetString("email")
	}
	if cmd.Flags().Changed("roles") {
		req.Roles, _ = cmd.Flags().GetStringSlice("roles")
	}
	if cmd.Flags().Changed("departments") {
		req.DepartmentIDs, _ = cmd.Flags().GetStringSlice("departments")
	}
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		req.Active = &active
	}

	user, err := a.fms.Users.Update(cmd.Context(), args[0], req)
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Updated user %s.", user.Username)
	return nil
}

func setUserActive(cmd *cobra.Command, id string, active bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	user, err := a.fms.Users.Activate(cmd.Context(), id, active)
	if err != nil {
		return apiCLIError(err)
	}

	if active {
		a.printer.Success("Activated user %s.", user.Username)
	} else {
		a.printer.Success("Deactivated user %s.", user.Username)
	}
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	if err := a.fms.Users.Delete(cmd.Context(), args[0]); err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Deleted user %s.", args[0])
	return nil
}
