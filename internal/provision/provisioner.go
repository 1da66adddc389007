// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/kioskprov/kioskprov/internal/account"
	"github.com/kioskprov/kioskprov/internal/artifact"
	"github.com/kioskprov/kioskprov/internal/config"
	"github.com/kioskprov/kioskprov/internal/hostexec"
	"github.com/kioskprov/kioskprov/internal/issue"
	"github.com/kioskprov/kioskprov/pkg/platform"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// ErrNotRoot is returned by Run when the effective UID is not 0.
var ErrNotRoot = errors.New("kioskprov must be run as root")

// Step titles, in execution order.
const (
	StepCheckHost   = "Check privileges"
	StepRemoteLogin = "Disable remote login"
	StepPackages    = "Install packages"
	StepRemote      = "Add Flatpak remote"
	StepApp         = "Install kiosk application"
	StepAccount     = "Ensure kiosk account"
	StepAutologin   = "Configure autologin"
	StepAutostart   = "Configure autostart"
	StepAppUpdates  = "Configure application updates"
	StepOSUpdates   = "Configure OS updates"
)

type (
	// Options configures a Provisioner. Config, Runner and Fs are required.
	Options struct {
		Config *config.Config
		Runner hostexec.Runner
		// Fs is the host filesystem. Dry runs pass a copy-on-write overlay.
		Fs afero.Fs
		// Out receives banners, outcome lines and the summary.
		Out    io.Writer
		Logger *log.Logger
		// DryRun skips the privilege check.
		DryRun bool
		// EUID returns the effective user ID; defaults to platform.EffectiveUID.
		EUID func() int
	}

	// Provisioner brings the host to the kiosk end state.
	Provisioner struct {
		cfg       *config.Config
		runner    hostexec.Runner
		fs        afero.Fs
		logger    *log.Logger
		reporter  *Reporter
		accounts  *account.Manager
		artifacts artifact.Set
		dryRun    bool
		euid      func() int

		// account is resolved by the account step and used by the ones after it.
		account account.Account
	}

	// step is one entry of the provisioning sequence. run returns the status
	// and detail to report; a non-nil error aborts the run.
	step struct {
		title string
		run   func(ctx context.Context) (Status, string, error)
	}
)

// New creates a Provisioner.
func New(opts Options) *Provisioner {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	euid := opts.EUID
	if euid == nil {
		euid = platform.EffectiveUID
	}
	return &Provisioner{
		cfg:       opts.Config,
		runner:    opts.Runner,
		fs:        opts.Fs,
		logger:    logger,
		reporter:  NewReporter(out),
		accounts:  account.NewManager(opts.Fs, opts.Runner),
		artifacts: artifact.Build(opts.Config),
		dryRun:    opts.DryRun,
		euid:      euid,
	}
}

// Outcomes returns the outcomes reported so far.
func (p *Provisioner) Outcomes() []Outcome {
	return p.reporter.Outcomes()
}

// Run executes every step in order and stops at the first hard failure.
func (p *Provisioner) Run(ctx context.Context) error {
	steps := p.steps()
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.reporter.Banner(i+1, len(steps), s.title)
		status, detail, err := s.run(ctx)
		if err != nil {
			failed := Outcome{Step: s.title, Status: StatusFail, Detail: err.Error()}
			p.reporter.Report(failed)
			p.reporter.Summary(p.dryRun, &failed, p.cfg)
			return err
		}
		p.reporter.Report(Outcome{Step: s.title, Status: status, Detail: detail})
	}

	p.reporter.Summary(p.dryRun, nil, p.cfg)
	return nil
}

func (p *Provisioner) steps() []step {
	return []step{
		{title: StepCheckHost, run: p.checkHost},
		{title: StepRemoteLogin, run: p.disableRemoteLogin},
		{title: StepPackages, run: p.installPackages},
		{title: StepRemote, run: p.addRemote},
		{title: StepApp, run: p.installApp},
		{title: StepAccount, run: p.ensureAccount},
		{title: StepAutologin, run: p.configureAutologin},
		{title: StepAutostart, run: p.configureAutostart},
		{title: StepAppUpdates, run: p.configureAppUpdates},
		{title: StepOSUpdates, run: p.configureOSUpdates},
	}
}

// bestEffort runs a command whose failure does not stop provisioning.
// It reports whether the command succeeded.
func (p *Provisioner) bestEffort(ctx context.Context, name string, args ...string) bool {
	if err := p.runner.Run(ctx, name, args...); err != nil {
		p.logger.Warn("ignoring failed command", "cmd", hostexec.CommandLine(name, args...), "err", err)
		return false
	}
	return true
}

// hostToolError attaches operator guidance to a failed hard command.
func hostToolError(operation, resource string, err error) error {
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithSuggestion("Read the tool output above for the cause").
		WithSuggestion("Re-run kioskprov once the cause is fixed; finished steps are not repeated").
		Wrap(err).
		BuildError()
}

func fileError(operation, path string, err error) error {
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(path).
		WithSuggestion("Check that the parent directory exists and is writable by root").
		Wrap(err).
		BuildError()
}

func writeFile(fs afero.Fs, f artifact.File) error {
	if err := fs.MkdirAll(path.Dir(f.Path), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, f.Path, f.Content, f.Mode)
}

