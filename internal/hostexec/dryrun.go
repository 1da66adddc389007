// SPDX-License-Identifier: MPL-2.0

package hostexec

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// DryRunRunner logs commands instead of running them. Every command succeeds
// with empty output, so guard queries report "absent" and the full plan of a
// fresh host is shown.
type DryRunRunner struct {
	logger *log.Logger

	mu       sync.Mutex
	commands []string
}

// NewDryRunRunner creates a DryRunRunner logging at info level to logger.
func NewDryRunRunner(logger *log.Logger) *DryRunRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &DryRunRunner{logger: logger}
}

// Run records the command.
func (r *DryRunRunner) Run(_ context.Context, name string, args ...string) error {
	r.record(CommandLine(name, args...))
	return nil
}

// Output records the command and returns no output.
func (r *DryRunRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	r.record(CommandLine(name, args...))
	return "", nil
}

// Commands returns the recorded command lines in order.
func (r *DryRunRunner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

func (r *DryRunRunner) record(cmdline string) {
	r.mu.Lock()
	r.commands = append(r.commands, cmdline)
	r.mu.Unlock()
	r.logger.Info("would run", "cmd", cmdline)
}
