// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"io"
	"path"

	"github.com/coreos/go-systemd/v22/unit"
)

const (
	// SystemdUnitDir holds administrator unit files and drop-ins.
	SystemdUnitDir = "/etc/systemd/system"

	// FlatpakUpdateService is the unit that updates Flatpak applications once.
	FlatpakUpdateService = "flatpak-update.service"
	// FlatpakUpdateTimer schedules FlatpakUpdateService.
	FlatpakUpdateTimer = "flatpak-update.timer"
	// DNFAutomaticTimer is shipped by the dnf-automatic package.
	DNFAutomaticTimer = "dnf-automatic.timer"

	agettyPath  = "/usr/sbin/agetty"
	flatpakPath = "/usr/bin/flatpak"
)

// AutologinDropInPath returns the drop-in location for the console's getty unit.
func AutologinDropInPath(gettyUnit string) string {
	return path.Join(SystemdUnitDir, gettyUnit+".d", "autologin.conf")
}

// UnitPath returns the location of an administrator unit file.
func UnitPath(name string) string {
	return path.Join(SystemdUnitDir, name)
}

// Autologin renders the getty drop-in that logs user in without a password.
// The empty ExecStart= clears the vendor command before replacing it.
func Autologin(user string) []byte {
	return serialize([]*unit.UnitOption{
		unit.NewUnitOption("Service", "ExecStart", ""),
		unit.NewUnitOption("Service", "ExecStart", "-"+agettyPath+" --autologin "+user+" --noclear %I $TERM"),
	})
}

// FlatpakUpdateServiceUnit renders the oneshot unit updating every installed application.
func FlatpakUpdateServiceUnit() []byte {
	return serialize([]*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", "Update Flatpak applications"),
		unit.NewUnitOption("Unit", "Wants", "network-online.target"),
		unit.NewUnitOption("Unit", "After", "network-online.target"),
		unit.NewUnitOption("Service", "Type", "oneshot"),
		unit.NewUnitOption("Service", "ExecStart", flatpakPath+" update -y --noninteractive"),
	})
}

// FlatpakUpdateTimerUnit renders the timer triggering the update service on schedule,
// a systemd OnCalendar expression such as "daily".
func FlatpakUpdateTimerUnit(schedule string) []byte {
	return serialize([]*unit.UnitOption{
		unit.NewUnitOption("Unit", "Description", "Update Flatpak applications ("+schedule+")"),
		unit.NewUnitOption("Timer", "OnCalendar", schedule),
		unit.NewUnitOption("Timer", "Persistent", "true"),
		unit.NewUnitOption("Timer", "RandomizedDelaySec", "1h"),
		unit.NewUnitOption("Install", "WantedBy", "timers.target"),
	})
}

func serialize(opts []*unit.UnitOption) []byte {
	// Serialize writes into an in-memory buffer; reading it cannot fail.
	b, _ := io.ReadAll(unit.Serialize(opts))
	return b
}
