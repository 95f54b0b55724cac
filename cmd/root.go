// Package cmd contains all CLI commands for feedbackctl
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/feedback-platform/feedbackctl/internal/api"
	"github.com/feedback-platform/feedbackctl/internal/config"
	"github.com/feedback-platform/feedbackctl/internal/fms"
	"github.com/feedback-platform/feedbackctl/internal/output"
	"github.com/feedback-platform/feedbackctl/internal/session"
)

var (
	cfgFile  string
	verbose  bool
	apiURL   string
	stateDir string
	cfg      *config.Config
	logger   *slog.Logger
	version  = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "feedbackctl",
	Short: "Feedback Management System CLI",
	Long: `feedbackctl is a command-line client for the Feedback Management System.

It manages users, departments, projects, questions, feedback forms, and
submissions over the system's REST API, and keeps the authenticated session
alive across invocations by refreshing tokens before they expire.

Example usage:
  feedbackctl login -u admin       # Sign in and persist the session
  feedbackctl users list           # List users
  feedbackctl feedbacks create ... # Create a feedback form
  feedbackctl submissions list     # Show submissions with analysis results`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .feedbackctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Feedback API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "session state directory (overrides config)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	var err error

	// Setup logger
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Load configuration
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if stateDir != "" {
		cfg.State.Dir = stateDir
	}

	// Update logger based on config
	if cfg.Logging.Level == "debug" || verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	logger.Debug("configuration loaded",
		"api_base_url", cfg.API.BaseURL,
		"state_dir", cfg.State.Dir,
	)

	return nil
}

// app wires the shared infrastructure a command needs: printer, session
// manager, and resource clients over one HTTP client.
type app struct {
	printer *output.Printer
	session *session.Manager
	fms     *fms.Client
}

func newApp() (*app, error) {
	store, err := session.NewFileStore(cfg.State.Dir)
	if err != nil {
		return nil, err
	}

	client, err := api.New(api.Options{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Tokens:  session.TokenSource(store),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	printer := output.NewPrinter(output.ResolveColors(cfg.Output.Colors))
	manager := session.NewManager(session.ManagerOptions{
		API:      client,
		Store:    store,
		Notifier: printer,
		Logger:   logger,
	})

	return &app{
		printer: printer,
		session: manager,
		fms:     fms.New(client),
	}, nil
}

// requireSession guards authenticated commands. It refreshes or validates the
// stored token as needed and fails when no valid session can be established.
func (a *app) requireSession(ctx context.Context) error {
	if !a.session.EnsureValidSession(ctx) {
		return output.AuthRequired()
	}
	return nil
}

// apiCLIError converts a classified API error into a structured CLI error.
func apiCLIError(err error) error {
	switch {
	case errors.Is(err, api.ErrNetwork):
		return &output.CLIError{
			Summary:    "cannot reach the server",
			Detail:     err.Error(),
			Suggestion: "check the API base URL and your connection",
			ExitCode:   output.ExitAPIError,
		}
	case errors.Is(err, api.ErrUnauthorized):
		return &output.CLIError{
			Summary:    "not authorized",
			Detail:     err.Error(),
			Suggestion: "run 'feedbackctl login' again",
			ExitCode:   output.ExitAuthError,
		}
	case errors.Is(err, api.ErrNotFound):
		return &output.CLIError{
			Summary:  "resource not found",
			Detail:   err.Error(),
			ExitCode: output.ExitAPIError,
		}
	default:
		return &output.CLIError{
			Summary:  "request failed",
			Detail:   err.Error(),
			ExitCode: output.ExitAPIError,
		}
	}
}
