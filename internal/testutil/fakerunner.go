// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/kioskprov/kioskprov/internal/hostexec"
	"github.com/kioskprov/kioskprov/pkg/types"
)

// FakeRunner is a hostexec.Runner that records command lines and answers
// from a script keyed by the exact command line ("dnf install -y cage").
// Unscripted commands succeed with empty output.
type FakeRunner struct {
	mu       sync.Mutex
	calls    []string
	outputs  map[string]string
	failures map[string]types.ExitCode
	handlers map[string]func() error
}

// NewFakeRunner creates an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		outputs:  make(map[string]string),
		failures: make(map[string]types.ExitCode),
		handlers: make(map[string]func() error),
	}
}

// SetOutput makes Output return out for cmdline.
func (f *FakeRunner) SetOutput(cmdline, out string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[cmdline] = out
	return f
}

// Fail makes cmdline exit with code.
func (f *FakeRunner) Fail(cmdline string, code types.ExitCode) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[cmdline] = code
	return f
}

// Handle runs fn whenever cmdline executes, simulating its side effects.
// A non-nil return is reported as the command's error.
func (f *FakeRunner) Handle(cmdline string, fn func() error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[cmdline] = fn
	return f
}

// Run implements hostexec.Runner.
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) error {
	_, err := f.exec(hostexec.CommandLine(name, args...))
	return err
}

// Output implements hostexec.Runner.
func (f *FakeRunner) Output(_ context.Context, name string, args ...string) (string, error) {
	return f.exec(hostexec.CommandLine(name, args...))
}

func (f *FakeRunner) exec(cmdline string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmdline)
	out := f.outputs[cmdline]
	code, failing := f.failures[cmdline]
	handler := f.handlers[cmdline]
	f.mu.Unlock()

	if failing {
		return "", &hostexec.CommandError{
			Command:  cmdline,
			ExitCode: code,
			Err:      fmt.Errorf("exit status %d", code),
		}
	}
	if handler != nil {
		if err := handler(); err != nil {
			var cmdErr *hostexec.CommandError
			if errors.As(err, &cmdErr) {
				return "", err
			}
			return "", &hostexec.CommandError{Command: cmdline, ExitCode: types.ExitFailure, Err: err}
		}
	}
	return out, nil
}

// Calls returns every executed command line in order.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Count returns how many times cmdline ran.
func (f *FakeRunner) Count(cmdline string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == cmdline {
			n++
		}
	}
	return n
}

// Called reports whether cmdline ran at least once.
func (f *FakeRunner) Called(cmdline string) bool {
	return f.Count(cmdline) > 0
}

// Reset forgets recorded calls but keeps the script.
func (f *FakeRunner) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
