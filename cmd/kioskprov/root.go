// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/kioskprov/kioskprov/internal/config"
	"github.com/kioskprov/kioskprov/internal/hostexec"
	"github.com/kioskprov/kioskprov/internal/issue"
	"github.com/kioskprov/kioskprov/internal/provision"
	"github.com/kioskprov/kioskprov/pkg/platform"
	"github.com/kioskprov/kioskprov/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// signalExitBase is what shells add to a signal number in an exit status.
const signalExitBase = 128

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags of one command tree.
type rootFlags struct {
	configPath string
	verbose    bool
	dryRun     bool
}

// NewRootCommand builds the kioskprov command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "kioskprov",
		Short: "Provision a Fedora machine as a locked-down browser kiosk",
		Long: TitleStyle.Render("kioskprov") + SubtitleStyle.Render(" - Fedora kiosk provisioner") + `

kioskprov turns a Fedora installation into a single-purpose kiosk: it disables
remote login, installs the cage compositor and a Flatpak browser, creates an
auto-login account and keeps both the OS and the browser updated.

Every step checks the host first, so running it again is safe.

` + SubtitleStyle.Render("Environment:") + `
  KIOSK_USER   account that logs in automatically (default kiosk)
  KIOSK_URL    page the kiosk opens (default https://example.com)

` + SubtitleStyle.Render("Examples:") + `
  sudo kioskprov                                 Provision with defaults
  sudo KIOSK_URL=https://intranet/board kioskprov
  kioskprov --dry-run                            Show what would change
  kioskprov render profile                       Print the login hook`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd.Context(), app, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is "+config.DefaultConfigPath+" when present)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log every host command")
	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "log commands and file changes without applying them")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newRenderCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the provisioning status.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code.Normalize()))
		}
		os.Exit(int(types.ExitFailure))
	}
}

func runProvision(ctx context.Context, app *App, flags *rootFlags) error {
	logger := newLogger(app.stderr, flags.verbose)

	cfg, _, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}

	if st := platform.DetectSandbox(); st != platform.SandboxNone {
		logger.Info("running inside a sandbox; host commands go through flatpak-spawn --host", "sandbox", st)
	}

	fs := app.Fs
	var runner hostexec.Runner
	if flags.dryRun {
		fs = afero.NewCopyOnWriteFs(app.Fs, afero.NewMemMapFs())
		runner = hostexec.NewDryRunRunner(logger)
	} else {
		runner = app.NewRunner(logger, app.stdout, app.stderr)
	}

	p := provision.New(provision.Options{
		Config: cfg,
		Runner: runner,
		Fs:     fs,
		Out:    app.stdout,
		Logger: logger,
		DryRun: flags.dryRun,
		EUID:   app.EUID,
	})

	err = p.Run(ctx)
	switch {
	case err == nil:
		renderWarningIssues(app.stderr, p.Outcomes())
		return nil
	case errors.Is(err, provision.ErrNotRoot):
		renderIssue(app.stderr, issue.NotRootId)
		return &ExitError{Code: types.ExitFailure, Err: err}
	default:
		renderIssue(app.stderr, issue.HostToolFailedId)
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			fmt.Fprintln(app.stderr, ae.Format(flags.verbose))
		}
		code := hostexec.ExitCodeOf(err)
		if code.IsSignal() {
			logger.Error("host tool was killed by a signal", "signal", int(code)-signalExitBase, "code", code)
		}
		return &ExitError{Code: code, Err: err}
	}
}

// loadConfig loads the configuration and the file it came from, rendering
// guidance on failure.
func loadConfig(ctx context.Context, app *App, flags *rootFlags) (*config.Config, string, error) {
	cfg, path, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath, Fs: app.Fs})
	if err != nil {
		renderIssue(app.stderr, issue.ConfigLoadFailedId)
		var ae *issue.ActionableError
		if errors.As(err, &ae) {
			fmt.Fprintln(app.stderr, ae.Format(flags.verbose))
		}
		return nil, "", &ExitError{Code: types.ExitFailure, Err: err}
	}

	newLogger(app.stderr, flags.verbose).Debug("configuration loaded", "file", path, "user", cfg.User, "url", cfg.URL)
	return cfg, path, nil
}

// renderWarningIssues prints guidance for warnings that need operator attention.
func renderWarningIssues(w io.Writer, outcomes []provision.Outcome) {
	for _, o := range outcomes {
		if o.Status != provision.StatusWarn {
			continue
		}
		switch o.Step {
		case provision.StepCheckHost:
			renderIssue(w, issue.UnsupportedHostId)
		case provision.StepAccount:
			renderIssue(w, issue.AccountUnavailableId)
		}
	}
}

// renderIssue prints a catalog entry; rendering failures fall back to raw markdown.
func renderIssue(w io.Writer, id issue.Id) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render("dark")
	if err != nil {
		log.Debug("issue render failed", "err", err)
		rendered = string(entry.MarkdownMsg())
	}
	fmt.Fprint(w, rendered)
}
