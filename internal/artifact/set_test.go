// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"slices"
	"strings"
	"testing"

	"github.com/kioskprov/kioskprov/internal/config"

	"golang.org/x/exp/maps"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Console = "tty2"
	cfg.URL = "https://board.example"

	set := Build(cfg)

	names := slices.Sorted(maps.Keys(set))
	want := []string{NameUpdateService, NameUpdateTimer, NameAutologin, NameProfile}
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Fatalf("Build() names = %v, want %v", names, want)
	}

	if got := set[NameAutologin].Path; got != "/etc/systemd/system/getty@tty2.service.d/autologin.conf" {
		t.Errorf("autologin path = %q", got)
	}
	profile := string(set[NameProfile].Content)
	if !strings.Contains(profile, `"/dev/tty2"`) || !strings.Contains(profile, `"https://board.example"`) {
		t.Errorf("profile block not derived from config:\n%s", profile)
	}
	if got := set[NameUpdateTimer].Path; got != "/etc/systemd/system/flatpak-update.timer" {
		t.Errorf("timer path = %q", got)
	}
	for name, f := range set {
		if f.Mode != 0o644 {
			t.Errorf("%s mode = %v", name, f.Mode)
		}
	}
}
