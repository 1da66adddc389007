// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestUsernameIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value Username
		want  bool
	}{
		{"kiosk", true},
		{"_svc", true},
		{"web-kiosk1", true},
		{"machine$", true},
		{"", false},
		{"Kiosk", false},
		{"1kiosk", false},
		{"kiosk user", false},
		{Username(strings.Repeat("a", 33)), false},
	}

	for _, tt := range tests {
		valid, errs := tt.value.IsValid()
		if valid != tt.want {
			t.Errorf("Username(%q).IsValid() = %v, want %v", tt.value, valid, tt.want)
		}
		if !valid && !errors.Is(errs[0], ErrInvalidUsername) {
			t.Errorf("Username(%q) error does not wrap ErrInvalidUsername: %v", tt.value, errs[0])
		}
	}
}

func TestConsole(t *testing.T) {
	t.Parallel()

	c := Console("tty1")
	if got := c.Device(); got != "/dev/tty1" {
		t.Errorf("Device() = %q", got)
	}
	if got := c.GettyUnit(); got != "getty@tty1.service" {
		t.Errorf("GettyUnit() = %q", got)
	}

	for _, bad := range []Console{"", "tty", "ttyS0", "/dev/tty1", "pts/0"} {
		if valid, _ := bad.IsValid(); valid {
			t.Errorf("Console(%q).IsValid() = true", bad)
		}
	}
}

func TestAppIDIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value AppID
		want  bool
	}{
		{"org.chromium.Chromium", true},
		{"com.google.Chrome", true},
		{"org.mozilla.firefox", true},
		{"chromium", false},
		{"org.chromium", false},
		{"", false},
	}

	for _, tt := range tests {
		if valid, _ := tt.value.IsValid(); valid != tt.want {
			t.Errorf("AppID(%q).IsValid() = %v, want %v", tt.value, valid, tt.want)
		}
	}
}

func TestKioskURLIsValid(t *testing.T) {
	t.Parallel()

	// Shell metacharacters are the operator's business.
	for _, ok := range []KioskURL{"https://example.com", `https://x/"; rm -rf /`, "about:blank"} {
		if valid, _ := ok.IsValid(); !valid {
			t.Errorf("KioskURL(%q).IsValid() = false", ok)
		}
	}
	if valid, errs := KioskURL("  ").IsValid(); valid || !errors.Is(errs[0], ErrInvalidKioskURL) {
		t.Errorf("blank URL accepted or wrong sentinel: %v", errs)
	}
}

func TestConfigIsValid(t *testing.T) {
	t.Parallel()

	if valid, errs := DefaultConfig().IsValid(); !valid {
		t.Fatalf("DefaultConfig() invalid: %v", errs)
	}

	cfg := DefaultConfig()
	cfg.Shell = "bash"
	cfg.Updates.OSUpgradeType = "everything"

	valid, errs := cfg.IsValid()
	if valid {
		t.Fatal("IsValid() = true for bad shell and upgrade type")
	}
	if len(errs) != 1 {
		t.Fatalf("IsValid() returned %d errors, want 1 aggregate", len(errs))
	}

	err := errs[0]
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidShellPath, ErrInvalidUpgradeType} {
		if !errors.Is(err, sentinel) {
			t.Errorf("errors.Is(%v, %v) = false", err, sentinel)
		}
	}
	if errors.Is(err, ErrInvalidUsername) {
		t.Error("valid username reported as invalid")
	}

	var ice *InvalidConfigError
	if !errors.As(err, &ice) || len(ice.FieldErrors) != 2 {
		t.Errorf("expected InvalidConfigError with 2 field errors, got %v", err)
	}
}

func TestHomeProfile(t *testing.T) {
	t.Parallel()

	if got := HomeProfile("/home/kiosk"); got != "/home/kiosk/.bash_profile" {
		t.Errorf("HomeProfile() = %q", got)
	}
}
