// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kioskprov/kioskprov/pkg/types"
)

const (
	// UpgradeTypeDefault makes dnf-automatic apply every available update.
	UpgradeTypeDefault UpgradeType = "default"
	// UpgradeTypeSecurity makes dnf-automatic apply security updates only.
	UpgradeTypeSecurity UpgradeType = "security"

	// maxUsernameLength is the useradd limit on login names.
	maxUsernameLength = 32
)

var (
	// ErrInvalidUsername is returned when a Username value is not a valid login name.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidConsole is returned when a Console value is not a virtual terminal name.
	ErrInvalidConsole = errors.New("invalid console")
	// ErrInvalidAppID is returned when an AppID value is not a reverse-DNS application ID.
	ErrInvalidAppID = errors.New("invalid application ID")
	// ErrInvalidUpgradeType is returned when an UpgradeType value is not recognized.
	ErrInvalidUpgradeType = errors.New("invalid upgrade type")
	// ErrInvalidKioskURL is returned when the kiosk URL is empty.
	ErrInvalidKioskURL = errors.New("invalid kiosk URL")
	// ErrInvalidShellPath is returned when the login shell is not an absolute path.
	ErrInvalidShellPath = errors.New("invalid shell path")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)
	consolePattern  = regexp.MustCompile(`^tty[0-9]+$`)
	appIDPattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z0-9_-]+){2,}$`)
)

type (
	// Username is a local login name (useradd rules, at most 32 characters).
	Username string

	// Console is a virtual terminal name such as "tty1".
	Console string

	// AppID is a Flatpak application ID such as "org.chromium.Chromium".
	AppID string

	// UpgradeType selects which updates dnf-automatic applies.
	UpgradeType string

	// KioskURL is the page the kiosk browser opens. It is substituted into the
	// login hook verbatim, so it must come from a trusted operator.
	KioskURL string

	// FieldError reports an invalid config value. It wraps the field's
	// sentinel error for errors.Is() compatibility.
	FieldError struct {
		Field    string
		Value    string
		Reason   string
		sentinel error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the provisioning configuration.
	Config struct {
		// User is the auto-login kiosk account.
		User Username `json:"user" mapstructure:"user"`
		// URL is the page opened by the kiosk browser.
		URL KioskURL `json:"url" mapstructure:"url"`
		// Console is the virtual terminal that auto-logs in and launches the kiosk.
		Console Console `json:"console" mapstructure:"console"`
		// Shell is the login shell given to a newly created account.
		Shell types.FilesystemPath `json:"shell" mapstructure:"shell"`
		// Packages are installed with dnf before anything else.
		Packages []string `json:"packages" mapstructure:"packages"`
		// Compositor is the Wayland compositor command wrapping the browser.
		Compositor string `json:"compositor" mapstructure:"compositor"`
		// App configures the Flatpak kiosk application.
		App AppConfig `json:"app" mapstructure:"app"`
		// RemoteLogin names the remote-login service to disable.
		RemoteLogin RemoteLoginConfig `json:"remote_login" mapstructure:"remote_login"`
		// Updates configures the scheduled update tasks.
		Updates UpdatesConfig `json:"updates" mapstructure:"updates"`
	}

	// AppConfig configures the Flatpak application the kiosk runs.
	AppConfig struct {
		// ID is the Flatpak application ID.
		ID AppID `json:"id" mapstructure:"id"`
		// Args are passed to the application before the URL.
		Args []string `json:"args" mapstructure:"args"`
		// Remote is the Flatpak remote the application is installed from.
		Remote RemoteConfig `json:"remote" mapstructure:"remote"`
	}

	// RemoteConfig names a Flatpak remote and its .flatpakrepo location.
	RemoteConfig struct {
		Name string `json:"name" mapstructure:"name"`
		URL  string `json:"url" mapstructure:"url"`
	}

	// RemoteLoginConfig identifies the remote-login service unit.
	RemoteLoginConfig struct {
		Service string `json:"service" mapstructure:"service"`
	}

	// UpdatesConfig configures Flatpak and OS auto-updates.
	UpdatesConfig struct {
		// AppSchedule is the OnCalendar expression of flatpak-update.timer.
		AppSchedule string `json:"app_schedule" mapstructure:"app_schedule"`
		// OSUpgradeType is written to upgrade_type in dnf-automatic's config.
		OSUpgradeType UpgradeType `json:"os_upgrade_type" mapstructure:"os_upgrade_type"`
		// AutomaticConf is the dnf-automatic configuration file.
		AutomaticConf types.FilesystemPath `json:"automatic_conf" mapstructure:"automatic_conf"`
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		User:       "kiosk",
		URL:        "https://example.com",
		Console:    "tty1",
		Shell:      "/bin/bash",
		Packages:   []string{"cage", "flatpak"},
		Compositor: "cage",
		App: AppConfig{
			ID:   "org.chromium.Chromium",
			Args: []string{"--kiosk", "--ozone-platform=wayland"},
			Remote: RemoteConfig{
				Name: "flathub",
				URL:  "https://dl.flathub.org/repo/flathub.flatpakrepo",
			},
		},
		RemoteLogin: RemoteLoginConfig{Service: "sshd.service"},
		Updates: UpdatesConfig{
			AppSchedule:   "daily",
			OSUpgradeType: UpgradeTypeDefault,
			AutomaticConf: "/etc/dnf/automatic.conf",
		},
	}
}

// HomeProfile returns the login profile path inside home.
func HomeProfile(home string) string {
	return filepath.Join(home, ".bash_profile")
}

// Device returns the console's device path (e.g. /dev/tty1).
func (c Console) Device() string { return "/dev/" + string(c) }

// GettyUnit returns the getty unit bound to the console (e.g. getty@tty1.service).
func (c Console) GettyUnit() string { return "getty@" + string(c) + ".service" }

// IsValid reports whether the console is a virtual terminal name.
func (c Console) IsValid() (bool, []error) {
	if !consolePattern.MatchString(string(c)) {
		return false, []error{newFieldError("console", string(c), "must look like tty1", ErrInvalidConsole)}
	}
	return true, nil
}

// String returns the login name.
func (u Username) String() string { return string(u) }

// IsValid reports whether the name is accepted by useradd.
func (u Username) IsValid() (bool, []error) {
	if len(u) == 0 || len(u) > maxUsernameLength || !usernamePattern.MatchString(string(u)) {
		return false, []error{newFieldError("user", string(u),
			fmt.Sprintf("must match %s and be at most %d characters", usernamePattern, maxUsernameLength),
			ErrInvalidUsername)}
	}
	return true, nil
}

// IsValid reports whether the ID has the reverse-DNS shape Flatpak requires.
func (a AppID) IsValid() (bool, []error) {
	if !appIDPattern.MatchString(string(a)) {
		return false, []error{newFieldError("app.id", string(a), "must be a reverse-DNS ID such as org.chromium.Chromium", ErrInvalidAppID)}
	}
	return true, nil
}

// IsValid reports whether the upgrade type is one dnf-automatic understands.
func (t UpgradeType) IsValid() (bool, []error) {
	switch t {
	case UpgradeTypeDefault, UpgradeTypeSecurity:
		return true, nil
	default:
		return false, []error{newFieldError("updates.os_upgrade_type", string(t), "must be default or security", ErrInvalidUpgradeType)}
	}
}

// IsValid only rejects an empty URL. Quotes and other shell metacharacters
// are accepted: operators own this value.
func (u KioskURL) IsValid() (bool, []error) {
	if strings.TrimSpace(string(u)) == "" {
		return false, []error{newFieldError("url", string(u), "must be non-empty", ErrInvalidKioskURL)}
	}
	return true, nil
}

// String returns the URL text.
func (u KioskURL) String() string { return string(u) }

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	check := func(valid bool, fieldErrs []error) {
		if !valid {
			errs = append(errs, fieldErrs...)
		}
	}

	check(c.User.IsValid())
	check(c.URL.IsValid())
	check(c.Console.IsValid())
	check(c.App.ID.IsValid())
	check(c.Updates.OSUpgradeType.IsValid())
	if valid, _ := c.Shell.IsValid(); !valid {
		errs = append(errs, newFieldError("shell", c.Shell.String(), "must be an absolute path", ErrInvalidShellPath))
	}
	if valid, _ := c.Updates.AutomaticConf.IsValid(); !valid {
		errs = append(errs, newFieldError("updates.automatic_conf", c.Updates.AutomaticConf.String(), "must be an absolute path", types.ErrInvalidFilesystemPath))
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func newFieldError(field, value, reason string, sentinel error) *FieldError {
	return &FieldError{Field: field, Value: value, Reason: reason, sentinel: sentinel}
}

// Error implements the error interface for FieldError.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q %s", e.Field, e.Value, e.Reason)
}

// Unwrap returns the field's sentinel error.
func (e *FieldError) Unwrap() error { return e.sentinel }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		msgs = append(msgs, fe.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and every field error, so errors.Is
// matches both the config-level and the field-level sentinels.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}
