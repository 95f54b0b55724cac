package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project"},
	Short:   "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	RunE:    runProjectsList,
}

var projectsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsGet,
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsCreate,
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsUpdate,
}

var projectsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectsDelete,
}

var projectsAddMembersCmd = &cobra.Command{
	Use:   "add-members <id> <user-id>...",
	Short: "Add members to a project",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runProjectsAddMembers,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(
		projectsListCmd,
		projectsGetCmd,
		projectsCreateCmd,
		projectsUpdateCmd,
		projectsDeleteCmd,
		projectsAddMembersCmd,
	)

	projectsListCmd.Flags().Bool("json", false, "output as JSON")

	projectsCreateCmd.Flags().String("description", "", "project description")
	projectsCreateCmd.Flags().String("department", "", "owning department id")
	projectsCreateCmd.Flags().StringSlice("members", nil, "member user ids")
	projectsCreateCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	projectsCreateCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	_ = projectsCreateCmd.MarkFlagRequired("department")

	projectsUpdateCmd.Flags().String("name", "", "project name")
	projectsUpdateCmd.Flags().String("description", "", "project description")
	projectsUpdateCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	projectsUpdateCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	projectsUpdateCmd.Flags().Bool("active", true, "active flag")
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	projects, err := a.fms.Projects.List(cmd.Context())
	if err != nil {
		return apiCLIError(err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(projects)
	}

	table := output.NewTable([]string{"", "ID", "NAME", "DEPARTMENT", "MEMBERS"})
	for _, p := range projects {
		status := "inactive"
		if p.Active {
			status = "active"
		}
		table.AddRow([]string{
			a.printer.StatusBadge(status),
			p.ID,
			a.printer.Bold(p.Name),
			p.DepartmentID,
			strings.Join(p.MemberIDs, ", "),
		})
	}
	table.Render()
	return nil
}

func runProjectsGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	project, err := a.fms.Projects.Get(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(project)
}

func runProjectsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	department, _ := cmd.Flags().GetString("department")
	members, _ := cmd.Flags().GetStringSlice("members")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	project, err := a.fms.Projects.Create(cmd.Context(), fms.CreateProjectRequest{
		Name:         args[0],
		Description:  description,
		DepartmentID: department,
		MemberIDs:    members,
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Created project %s (%s).", project.Name, project.ID)
	return nil
}

func runProjectsUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	req := fms.UpdateProjectRequest{}
	if cmd.Flags().Changed("name") {
		req.Name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("description") {
		req.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("start") {
		req.StartDate, _ = cmd.Flags().GetString("start")
	}
	if cmd.Flags().Changed("end") {
		req.EndDate, _ = cmd.Flags().GetString("end")
	}
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		req.Active = &active
	}

	project, err := a.fms.Projects.Update(cmd.Context(), args[0], req)
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Updated project %s.", project.Name)
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	if err := a.fms.Projects.Delete(cmd.Context(), args[0]); err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Deleted project %s.", args[0])
	return nil
}

func runProjectsAddMembers(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	project, err := a.fms.Projects.AddMembers(cmd.Context(), args[0], args[1:])
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Added %d member(s) to project %s.", len(args)-1, project.Name)
	return nil
}
