// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/kioskprov/kioskprov/internal/hostexec"

	"github.com/spf13/afero"
)

var _ hostexec.Runner = (*FakeRunner)(nil)

func TestFakeRunner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	handled := 0
	f := NewFakeRunner().
		SetOutput("flatpak remotes --columns=name", "fedora\n").
		Fail("dnf install -y cage", 7).
		Handle("systemctl daemon-reload", func() error { handled++; return nil })

	out, err := f.Output(ctx, "flatpak", "remotes", "--columns=name")
	if err != nil || out != "fedora\n" {
		t.Fatalf("Output() = %q, %v", out, err)
	}

	err = f.Run(ctx, "dnf", "install", "-y", "cage")
	if got := hostexec.ExitCodeOf(err); got != 7 {
		t.Errorf("ExitCodeOf() = %d, want 7", got)
	}

	if err := f.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if handled != 1 {
		t.Errorf("handler ran %d times", handled)
	}

	if got := len(f.Calls()); got != 3 {
		t.Errorf("Calls() len = %d, want 3", got)
	}
	if !f.Called("dnf install -y cage") || f.Count("useradd") != 0 {
		t.Error("Called/Count disagree with recorded calls")
	}

	f.Reset()
	if len(f.Calls()) != 0 {
		t.Error("Reset() kept calls")
	}
}

func TestFakeRunner_HandlerError(t *testing.T) {
	t.Parallel()

	f := NewFakeRunner().Handle("useradd -m kiosk", func() error { return errors.New("disk full") })

	err := f.Run(context.Background(), "useradd", "-m", "kiosk")
	var cmdErr *hostexec.CommandError
	if !errors.As(err, &cmdErr) || cmdErr.Command != "useradd -m kiosk" {
		t.Fatalf("Run() error = %v, want *CommandError", err)
	}
}

func TestAddPasswdEntry(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	if err := AddPasswdEntry(fs, "root", 0, "/bin/bash"); err != nil {
		t.Fatal(err)
	}
	if err := AddPasswdEntry(fs, "kiosk", 1000, "/bin/bash"); err != nil {
		t.Fatal(err)
	}

	want := "root:x:0:0::/home/root:/bin/bash\nkiosk:x:1000:1000::/home/kiosk:/bin/bash\n"
	if got := MustReadFile(t, fs, "/etc/passwd"); got != want {
		t.Errorf("/etc/passwd = %q", got)
	}
	if ok, _ := afero.DirExists(fs, "/home/kiosk"); !ok {
		t.Error("home directory not created")
	}
}
