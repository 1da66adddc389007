// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "one is valid", value: 1, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if (err == nil) != tt.wantValid {
				t.Errorf("ExitCode(%d).Validate() error = %v, wantValid %v", tt.value, err, tt.wantValid)
			}
			if !tt.wantValid && !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
		})
	}
}

func TestExitCodeNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code ExitCode
		want ExitCode
	}{
		{0, 0},
		{3, 3},
		{255, 255},
		{-1, ExitFailure},
		{300, ExitFailure},
	}

	for _, tt := range tests {
		if got := tt.code.Normalize(); got != tt.want {
			t.Errorf("ExitCode(%d).Normalize() = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestExitCodePredicates(t *testing.T) {
	t.Parallel()

	if !ExitCode(130).IsSignal() {
		t.Error("ExitCode(130).IsSignal() = false, want true for SIGINT")
	}
	if ExitCode(128).IsSignal() {
		t.Error("ExitCode(128).IsSignal() = true")
	}
	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("String() = %q, want %q", got, "42")
	}
}
