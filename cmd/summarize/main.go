package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"halo-summarizer/internal/app"
	"halo-summarizer/internal/config"
	"halo-summarizer/internal/extract"
	"halo-summarizer/internal/llm"
	"halo-summarizer/internal/logger"
	"halo-summarizer/internal/settings"
	"halo-summarizer/internal/summary"
)

const (
	exitFailure   = 1
	exitUserError = 2
)

type summarizer interface {
	Summarize(ctx context.Context, req summary.Request) (string, error)
}

// environment is resolved lazily so --help works without configuration.
type environment struct {
	pipeline summarizer
	settings settings.Settings
}

type loader func(stderr io.Writer) (environment, error)

type options struct {
	style    string
	provider string
}

// exitError carries the process exit code for an already reported failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(loadEnvironment)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
}

func loadEnvironment(stderr io.Writer) (environment, error) {
	if err := app.LoadEnv(); err != nil {
		return environment{}, err
	}
	cfg, err := config.Load()
	if err != nil {
		return environment{}, err
	}
	log := logger.NewWithWriter(cfg.LogLevel, stderr)
	return environment{
		pipeline: app.BuildPipeline(cfg, log, nil),
		settings: app.SettingsFromConfig(cfg),
	}, nil
}

func newRootCommand(load loader) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "summarize [FILE]",
		Short: "Summarize a text or PDF file with Gemini or Groq",
		Long: "Reads FILE, or standard input when FILE is omitted or \"-\", and prints a\n" +
			"plain-text summary. API keys come from GEMINI_API_KEY and GROQ_API_KEY.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			return run(cmd, load, *opts, path)
		},
	}

	cmd.Flags().StringVarP(&opts.style, "style", "s", string(summary.StyleQuick), "summary style: quick or bullets")
	cmd.Flags().StringVarP(&opts.provider, "provider", "p", "", "AI provider: gemini or groq (default from AI_PROVIDER)")
	return cmd
}

func run(cmd *cobra.Command, load loader, opts options, path string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	text, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	env, err := load(stderr)
	if err != nil {
		return err
	}

	provider := llm.ProviderName(opts.provider)
	if provider == "" {
		provider = env.settings.Provider
	}

	fmt.Fprintln(stderr, summary.Loading().Message)
	out, err := env.pipeline.Summarize(cmd.Context(), summary.Request{
		Text:       text,
		Style:      summary.Style(opts.style),
		Provider:   provider,
		Credential: env.settings.Credential(provider),
	})
	outcome := summary.Present(out, err)
	if outcome.State == summary.StateError {
		fmt.Fprintln(stderr, outcome.Message)
		code := exitFailure
		if summary.IsUserError(err) {
			code = exitUserError
		}
		return &exitError{code: code, err: err}
	}

	_, err = fmt.Fprintln(stdout, outcome.Summary)
	return err
}

func readInput(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(content), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := extract.Text(path, "", content)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	return text, nil
}
