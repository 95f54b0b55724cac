package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
)

var submissionsCmd = &cobra.Command{
	Use:     "submissions",
	Aliases: []string{"submission", "submits"},
	Short:   "View and create feedback submissions",
	Long: `View and create feedback submissions.

Sentiment and score columns come from the server's analysis pipeline and are
shown as reported.`,
}

var submissionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List submissions",
	RunE:    runSubmissionsList,
}

var submissionsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one submission",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubmissionsGet,
}

var submissionsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Submit a filled-in feedback form",
	Long: `Submit answers for a feedback form.

Answers are given as question-id=value pairs:

  feedbackctl submissions create --feedback f1 \
      --answer q1="Very satisfied" --answer q2=5`,
	RunE: runSubmissionsCreate,
}

func init() {
	rootCmd.AddCommand(submissionsCmd)
	submissionsCmd.AddCommand(submissionsListCmd, submissionsGetCmd, submissionsCreateCmd)

	submissionsListCmd.Flags().Bool("json", false, "output as JSON")
	submissionsListCmd.Flags().String("feedback", "", "filter by feedback form id")

	submissionsCreateCmd.Flags().String("feedback", "", "feedback form id")
	submissionsCreateCmd.Flags().StringArray("answer", nil, "answer as question-id=value (repeatable)")
	submissionsCreateCmd.Flags().Bool("anonymous", false, "submit anonymously")
	_ = submissionsCreateCmd.MarkFlagRequired("feedback")
	_ = submissionsCreateCmd.MarkFlagRequired("answer")
}

func runSubmissionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	feedbackID, _ := cmd.Flags().GetString("feedback")
	submissions, err := a.fms.Submissions.List(cmd.Context(), feedbackID)
	if err != nil {
		return apiCLIError(err)
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(submissions)
	}

	table := output.NewTable([]string{"", "ID", "FEEDBACK", "BY", "SENTIMENT", "SCORE", "SUBMITTED"})
	for _, s := range submissions {
		by := s.SubmittedBy
		if s.Privacy == "anonymous" {
			by = a.printer.Dim("(anonymous)")
		}
		table.AddRow([]string{
			a.printer.StatusBadge(s.Status),
			s.ID,
			s.FeedbackID,
			by,
			s.OverallSentiment,
			fmt.Sprintf("%.2f", s.Score),
			s.SubmittedAt.Format("2006-01-02 15:04"),
		})
	}
	table.Render()
	return nil
}

func runSubmissionsGet(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	submission, err := a.fms.Submissions.Get(cmd.Context(), args[0])
	if err != nil {
		return apiCLIError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(submission)
}

func runSubmissionsCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	if err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	feedbackID, _ := cmd.Flags().GetString("feedback")
	rawAnswers, _ := cmd.Flags().GetStringArray("answer")
	anonymous, _ := cmd.Flags().GetBool("anonymous")

	answers := make([]fms.Answer, 0, len(rawAnswers))
	for _, raw := range rawAnswers {
		questionID, value, ok := strings.Cut(raw, "=")
		if !ok || questionID == "" {
			return &output.CLIError{
				Summary:  fmt.Sprintf("malformed answer %q", raw),
				Detail:   "answers must be given as question-id=value",
				ExitCode: output.ExitUsageError,
			}
		}
		answers = append(answers, fms.Answer{QuestionID: questionID, Value: value})
	}

	privacy := "public"
	if anonymous {
		privacy = "anonymous"
	}

	submission, err := a.fms.Submissions.Create(cmd.Context(), fms.CreateSubmissionRequest{
		FeedbackID: feedbackID,
		Answers:    answers,
		Privacy:    privacy,
	})
	if err != nil {
		return apiCLIError(err)
	}

	a.printer.Success("Submitted feedback (%s).", submission.ID)
	return nil
}
