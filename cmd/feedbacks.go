package cmd

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

var feedbacksCmd = &cobra.Command{
	Use:     "feedbacks",
	Aliases: []string{"feedback", "forms"},
	Short:   "Manage feedback forms",
}

var feedbacksListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List feedback forms",
	RunE:    runFeedbacksList,
}

var feedbacksGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one feedback form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedbacksGet,
}

var feedbacksCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a feedback form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedbacksCreate,
}

var feedbacksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a feedback form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedbacksUpdate,
}

var feedbacksDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a feedback form",
	Args:    cobra.ExactArgs(1),
	RunE:    runFeedbacksDelete,
}

var feedbacksCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Stop collecting submissions for a feedback form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFeedbacksClose,
}

func init() {
	rootCmd.AddCommand(feedbacksCmd)
	feedbacksCmd.AddCommand(
		feedbacksListCmd,
		feedbacksGetCmd,
		feedbacksCreateCmd,
		feedbacksUpdateCmd,
		feedbacksDeleteCmd,
		feedbacksCloseCmd,
	)

	feedbacksListCmd.Flags().Bool("json", false, "output as JSON")

	feedbacksCreateCmd.Flags().String("description", "", "form description")
	feedbacksCreateCmd.Flags().String("project", "", "project id")
	feedbacksCreateCmd.Flags().StringSlice("questions", nil, "question ids")
	feedbacksCreateCmd.Flags().Bool("anonymous", false, "allow anonymous submissions")
	feedbacksCreateCmd.Flags().String("start", "", "collection start date (YYYY-MM-DD)")
	feedbacksCreateCmd.Flags().String("end", "", "collection end date (YYYY-MM-DD)")
	_ = feedbacksCreateCmd.MarkFlagRequired("project")
	_ = feedbacksCreateCmd.MarkFlagRequired("questions")

	feedbacksUpdateCmd.Flags().String("title", "", "form title")
	feedbacksUpdateCmd.Flags().String("description", "", "form description")
	feedbacksUpdateCmd.Flags().StringSlice("questions", nil, "question ids")
	feedbacksUpdateCmd.Flags().Bool("anonymous", false, "allow anonymous submissions")
	feedbacksUpdateCmd.Flags().String("start", "", "collection start date (YYYY-MM-DD)")
	feedbacksUpdateCmd.Flags().String("end", "", "collection end date (YYYY-MM-DD)")
}

func runFeedbacksList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	feedbacks, err := a.fms.Feedbacks.List(cmd.Context())
	if err != nil {
		return apiCLIError(err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(feedbacks)
	}

	table := output.NewTable([]string{"", "ID", "TITLE", "PROJECT", "QUESTIONS", "ENDS"})
	for _, f := range feedbacks {
		ends := ""
		if !f.EndDate.IsZero() {
			ends = f.EndDate.Format("2006-01-02")
		}
		table.AddRow([]string{
			a.printer.StatusBadge(f.Status),
			f.ID,
			a.printer.Bold(f.Title),
			f.ProjectID,
			strconv.Itoa(len(f.QuestionIDs)),
			ends,
		})
	}
	table.Render()
	return nil
}

func runFeedbacksGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	feedback, err := a.fms.Feedbacks.Get(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(feedback)
}

func runFeedbacksCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	description, _ := cmd.Flags().GetString("description")
	project, _ := cmd.Flags().GetString("project")
	questions, _ := cmd.Flags().GetStringSlice("questions")
	anonymous, _ := cmd.Flags().GetBool("anonymous")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	feedback, err := a.fms.Feedbacks.Create(cmd.Context(), fms.CreateFeedbackRequest{
		Title:          args[0],
		Description:    description,
		ProjectID:      project,
		QuestionIDs:    questions,
		AllowAnonymous: anonymous,
		StartDate:      start,
		EndDate:        end,
	})
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Created feedback form %s (%s).", feedback.Title, feedback.ID)
	return nil
}

func runFeedbacksUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	req := fms.UpdateFeedbackRequest{}
	if cmd.Flags().Changed("title") {
		req.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("description") {
		req.Description, _ = cmd.Flags().GetString("description")
	}
	if cmd.Flags().Changed("questions") {
		req.QuestionIDs, _ = cmd.Flags().GetStringSlice("questions")
	}
	if cmd.Flags().Changed("anonymous") {
		anonymous, _ := cmd.Flags().GetBool("anonymous")
		req.AllowAnonymous = &anonymous
	}
	if cmd.Flags().Changed("start") {
		req.StartDate, _ = cmd.Flags().GetString("start")
	}
	if cmd.Flags().Changed("end") {
		req.EndDate, _ = cmd.Flags().GetString("end")
	}

	feedback, err := a.fms.Feedbacks.Update(cmd.Context(), args[0], req)
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Updated feedback form %s.", feedback.Title)
	return nil
}

func runFeedbacksDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	if err := a.fms.Feedbacks.Delete(cmd.Context(), args[0]); err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Deleted feedback form %s.", args[0])
	return nil
}

func runFeedbacksClose(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	feedback, err := a.fms.Feedbacks.Close(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Closed feedback form %s.", feedback.Title)
	return nil
}
