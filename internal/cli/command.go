package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/anatolykoptev/go-twint/internal/config"
	"github.com/anatolykoptev/go-twint/internal/run"
	"github.com/anatolykoptev/go-twint/internal/settings"
	"github.com/anatolykoptev/go-twint/internal/ui"
	"github.com/anatolykoptev/go-twint/twitter"
)

// version is set at build time.
var version = "dev"

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// CollectorFactory builds the collector for a validated run. It is only
// called once validation passed, so no network work happens before that.
type CollectorFactory func(ctx context.Context, cfg config.Config, settingsPath string, stdout io.Writer) (Collector, error)

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return newApp(stdout, stderr, newTwitterCollector).execute(ctx, args)
}

type app struct {
	stdout, stderr io.Writer
	newCollector   CollectorFactory
}

func newApp(stdout, stderr io.Writer, f CollectorFactory) *app {
	return &app{stdout: stdout, stderr: stderr, newCollector: f}
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "twint",
		Short: "An advanced Twitter scraping & OSINT tool.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return invalid(fmt.Sprintf("Unexpected argument %q.", args[0]))
			}
			return nil
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), cmd.Flags())
		},
	}
	fs := cmd.Flags()
	registerFlags(fs)
	fs.String("config", "", "YAML settings file (accounts, CAPTCHA key, sessions).")
	fs.Bool("debug", false, "Log debug output to stderr.")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return invalid(err.Error())
	})
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

func (a *app) execute(ctx context.Context, args []string) int {
	cmd := a.command()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	status := ui.New(a.stdout)
	var verr *ValidationError
	if errors.As(err, &verr) {
		status.Problem(verr.Category, verr.Message)
		return ExitUsage
	}
	status.Problem(CategoryError, err.Error())
	return ExitFailure
}

func (a *app) run(ctx context.Context, fs *pflag.FlagSet) error {
	debug, _ := fs.GetBool("debug")
	setupLogging(a.stderr, debug)

	cfg, err := Resolve(optionsFromFlags(fs))
	if err != nil {
		return err
	}
	settingsPath, _ := fs.GetString("config")
	c, err := a.newCollector(ctx, cfg, settingsPath, a.stdout)
	if err != nil {
		return err
	}
	_, err = Dispatch(ctx, cfg, c)
	return err
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// newTwitterCollector loads settings and logs the client in over the
// resolved proxy route.
func newTwitterCollector(ctx context.Context, cfg config.Config, settingsPath string, stdout io.Writer) (Collector, error) {
	s, err := settings.Load(settingsPath)
	if err != nil {
		return nil, err
	}
	if err := settings.ApplyEnv(&s); err != nil {
		return nil, err
	}
	cc, err := s.ClientConfig(cfg.Proxy)
	if err != nil {
		return nil, err
	}
	cc.MetricsHook = func(endpoint string, success, rateLimited bool) {
		slog.Debug("api call", slog.String("endpoint", endpoint), slog.Bool("success", success), slog.Bool("rate_limited", rateLimited))
	}

	client, err := twitter.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("twitter client: %w", err)
	}
	return run.New(client, stdout, ui.New(stdout)), nil
}
