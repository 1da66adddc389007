// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"

	"github.com/kioskprov/kioskprov/internal/config"
	"github.com/kioskprov/kioskprov/internal/hostexec"
	"github.com/kioskprov/kioskprov/pkg/platform"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

type (
	// RunnerFactory builds the host command runner for a logger.
	RunnerFactory func(logger *log.Logger, stdout, stderr io.Writer) hostexec.Runner

	// App wires CLI services and shared dependencies. Every command handler
	// receives an App and reaches the host only through it.
	App struct {
		Config    config.Provider
		Fs        afero.Fs
		NewRunner RunnerFactory
		EUID      func() int
		stdout    io.Writer
		stderr    io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    config.Provider
		Fs        afero.Fs
		NewRunner RunnerFactory
		EUID      func() int
		Stdout    io.Writer
		Stderr    io.Writer
	}
)

// NewApp creates an App, filling unset dependencies with the real host.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Fs:        deps.Fs,
		NewRunner: deps.NewRunner,
		EUID:      deps.EUID,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
	if app.NewRunner == nil {
		app.NewRunner = func(logger *log.Logger, stdout, stderr io.Writer) hostexec.Runner {
			return hostexec.NewExecRunner(hostexec.WithLogger(logger), hostexec.WithOutput(stdout, stderr))
		}
	}
	if app.EUID == nil {
		app.EUID = platform.EffectiveUID
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newLogger returns the CLI logger writing to w.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}
