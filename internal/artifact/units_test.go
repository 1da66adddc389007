// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"bytes"
	"testing"

	"github.com/coreos/go-systemd/v22/unit"
)

func TestAutologin(t *testing.T) {
	t.Parallel()

	want := "[Service]\n" +
		"ExecStart=\n" +
		"ExecStart=-/usr/sbin/agetty --autologin kiosk --noclear %I $TERM\n"

	if got := string(Autologin("kiosk")); got != want {
		t.Errorf("Autologin() =\n%s\nwant\n%s", got, want)
	}
}

func TestAutologinDropInPath(t *testing.T) {
	t.Parallel()

	want := "/etc/systemd/system/getty@tty1.service.d/autologin.conf"
	if got := AutologinDropInPath("getty@tty1.service"); got != want {
		t.Errorf("AutologinDropInPath() = %q, want %q", got, want)
	}
}

func TestFlatpakUpdateUnits(t *testing.T) {
	t.Parallel()

	service := FlatpakUpdateServiceUnit()
	timer := FlatpakUpdateTimerUnit("daily")

	tests := []struct {
		name    string
		content []byte
		want    []*unit.UnitOption
	}{
		{
			name:    "service",
			content: service,
			want: []*unit.UnitOption{
				unit.NewUnitOption("Service", "Type", "oneshot"),
				unit.NewUnitOption("Service", "ExecStart", "/usr/bin/flatpak update -y --noninteractive"),
				unit.NewUnitOption("Unit", "After", "network-online.target"),
			},
		},
		{
			name:    "timer",
			content: timer,
			want: []*unit.UnitOption{
				unit.NewUnitOption("Timer", "OnCalendar", "daily"),
				unit.NewUnitOption("Timer", "Persistent", "true"),
				unit.NewUnitOption("Install", "WantedBy", "timers.target"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts, err := unit.DeserializeOptions(bytes.NewReader(tt.content))
			if err != nil {
				t.Fatalf("rendered unit does not parse: %v", err)
			}
			for _, want := range tt.want {
				if !containsOption(opts, want) {
					t.Errorf("missing [%s] %s=%s in\n%s", want.Section, want.Name, want.Value, tt.content)
				}
			}
		})
	}
}

func TestUnitsAreDeterministic(t *testing.T) {
	t.Parallel()

	if !bytes.Equal(FlatpakUpdateTimerUnit("weekly"), FlatpakUpdateTimerUnit("weekly")) {
		t.Error("timer rendering is not deterministic")
	}
	if !bytes.Equal(Autologin("kiosk"), Autologin("kiosk")) {
		t.Error("autologin rendering is not deterministic")
	}
}

func containsOption(opts []*unit.UnitOption, want *unit.UnitOption) bool {
	for _, o := range opts {
		if o.Match(want) {
			return true
		}
	}
	return false
}
