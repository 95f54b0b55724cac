package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

var departmentsCmd = &cobra.Command{
	Use:     "departments",
	Aliases: []string{"department", "depts"},
	Short:   "Manage departments",
}

var departmentsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List departments",
	RunE:    runDepartmentsList,
}

var departmentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one department",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepartmentsGet,
}

var departmentsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a department",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepartmentsCreate,
}

var departmentsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a department",
	Args:  cobra.ExactArgs(1),
	RunE:  runDepartmentsUpdate,
}

var departmentsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a department",
	Args:    cobra.ExactArgs(1),
	RunE:    runDepartmentsDelete,
}

func init() {
	rootCmd.AddCommand(departmentsCmd)
	departmentsCmd.AddCommand(
		departmentsListCmd,
		departmentsGetCmd,
		departmentsCreateCmd,
		departmentsUpdateCmd,
		departmentsDeleteCmd,
	)

	departmentsListCmd.Flags().Bool("json", false, "output as JSON")

	departmentsCreateCmd.Flags().String("description", "", "department description")

	departmentsUpdateCmd.Flags().String("name", "", "department name")
	departmentsUpdateCmd.Flags().String("description", "", "department description")
	departmentsUpdateCmd.Flags().Bool("active", true, "active flag")
}

func runDepartmentsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	departments, err := a.fms.Departments.List(cmd.Context())
	if err != nil {
		return apiCLIError(err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(departments)
	}

	table := output.NewTable([]string{"", "ID", "NAME", "DESCRIPTION"})
	for _, d := range departments {
		status := "inactive"
		if d.Active {
			status = "active"
		}
		table.AddRow([]string{
			a.printer.StatusBadge(status),
			d.ID,
			a.printer.Bold(d.Name),
			d.Description,
		})
	}
	table.Render()
	return nil
}

func runDepartmentsGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	department, err := a.fms.Departments.Get(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(department)
}

func runDepartmentsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")

	department, err := a.fms.Departments.Create(cmd.Context(), fms.CreateDepartmentRequest{
		Name:        args[0],
		Description: description,
	})
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Created department %s (%s).", department.Name, department.ID)
	return nil
}

func runDepartmentsUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	req := fms.UpdateDepartmentRequest{}
	if cmd.Flags().Changed("name") {
		req.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("description") {
		req.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		req.Active = &active
	}

	department, err := a.fms.Departments.Update(cmd.Context(), args[0], req)
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Updated department %s.", department.Name)
	return nil
}

func runDepartmentsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	if err := a.fms.Departments.Delete(cmd.Context(), args[0]); err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Deleted department %s.", args[0])
	return nil
}
