package cmd

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

var questionsCmd = &cobra.Command{
	Use:     "questions",
	Aliases: []string{"question"},
	Short:   "Manage form questions",
}

var questionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List questions",
	RunE:    runQuestionsList,
}

var questionsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsGet,
}

var questionsCreateCmd = &cobra.Command{
	Use:   "create <text>",
	Short: "Create a question",
	Long: `Create a reusable form question.

Examples:
  feedbackctl questions create "How satisfied are you?" --type rating
  feedbackctl questions create "Preferred workflow?" --type single_choice --options "agile,kanban,other"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuestionsCreate,
}

var questionsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a question",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestionsUpdate,
}

var questionsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a question",
	Args:    cobra.ExactArgs(1),
	RunE:    runQuestionsDelete,
}

func init() {
	rootCmd.AddCommand(questionsCmd)
	questionsCmd.AddCommand(
		questionsListCmd,
		questionsGetCmd,
		questionsCreateCmd,
		questionsUpdateCmd,
		questionsDeleteCmd,
	)

	questionsListCmd.Flags().Bool("json", false, "output as JSON")

	questionsCreateCmd.Flags().String("type", fms.QuestionText, "question type (text, rating, single_choice, multiple_choice)")
	questionsCreateCmd.Flags().String("category", "", "question category")
	questionsCreateCmd.Flags().String("description", "", "question description")
	questionsCreateCmd.Flags().StringSlice("options", nil, "choice options")
	questionsCreateCmd.Flags().Bool("required", false, "answer required")

	questionsUpdateCmd.Flags().String("text", "", "question text")
	questionsUpdateCmd.Flags().String("category", "", "question category")
	questionsUpdateCmd.Flags().StringSlice("options", nil, "choice options")
	questionsUpdateCmd.Flags().Bool("required", false, "answer required")
}

func runQuestionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	questions, err := a.fms.Questions.List(cmd.Context())
	if err != nil {
		return apiCLIError(err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(questions)
	}

	table := output.NewTable([]string{"ID", "TEXT", "TYPE", "REQUIRED", "OPTIONS"})
	for _, q := range questions {
		required := ""
		if q.Required {
			required = "yes"
		}
		table.AddRow([]string{
			q.ID,
			q.Text,
			q.Type,
			required,
			strings.Join(q.Options, ", "),
		})
	}
	table.Render()
	return nil
}

func runQuestionsGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	question, err := a.fms.Questions.Get(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(question)
}

func runQuestionsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	qType, _ := cmd.Flags().GetString("type")
	category, _ := cmd.Flags().GetString("category")
	description, _ := cmd.Flags().GetString("description")
	options, _ := cmd.Flags().GetStringSlice("options")
	required, _ := cmd.Flags().GetBool("required")

	question, err := a.fms.Questions.Create(cmd.Context(), fms.CreateQuestionRequest{
		Text:        args[0],
		Description: description,
		Category:    category,
		Type:        qType,
		Options:     options,
		Required:    required,
	})
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Created question %s.", question.ID)
	return nil
}

func runQuestionsUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	req := fms.UpdateQuestionRequest{}
	if cmd.Flags().Changed("text") {
		req.Text, _ = cmd.Flags().GetString("text")
	}
	if cmd.Flags().Changed("category") {
		req.Category, _ = cmd.Flags().GetString("category")
	}
	if cmd.Flags().Changed("options") {
		req.Options, _ = cmd.Flags().GetStringSlice("options")
	}
	if cmd.Flags().Changed("required") {
		required, _ := cmd.Flags().GetBool("required")
		req.Required = &required
	}

	question, err := a.fms.Questions.Update(cmd.Context(), args[0], req)
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Updated question %s.", question.ID)
	return nil
}

func runQuestionsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	if err := a.fms.Questions.Delete(cmd.Context(), args[0]); err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Deleted question %s.", args[0])
	return nil
}
