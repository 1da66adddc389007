// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"io/fs"

	"github.com/kioskprov/kioskprov/internal/config"
)

// Artifact names accepted by Build's result.
const (
	NameAutologin     = "autologin"
	NameProfile       = "profile"
	NameUpdateService = "flatpak-update-service"
	NameUpdateTimer   = "flatpak-update-timer"
)

type (
	// File is a rendered artifact and where it lives on the host.
	File struct {
		// Path is the absolute destination. For the profile it is relative
		// to the account's home directory.
		Path    string
		Mode    fs.FileMode
		Content []byte
	}

	// Set maps artifact names to rendered files.
	Set map[string]File
)

// ProfileOptionsFor derives the autostart launch line from cfg.
func ProfileOptionsFor(cfg *config.Config) ProfileOptions {
	return ProfileOptions{
		Device:     cfg.Console.Device(),
		Compositor: cfg.Compositor,
		AppID:      string(cfg.App.ID),
		Args:       cfg.App.Args,
		URL:        cfg.URL.String(),
	}
}

// Build renders every file kioskprov owns for cfg.
func Build(cfg *config.Config) Set {
	return Set{
		NameAutologin: {
			Path:    AutologinDropInPath(cfg.Console.GettyUnit()),
			Mode:    0o644,
			Content: Autologin(cfg.User.String()),
		},
		NameProfile: {
			Path:    config.HomeProfile("~"),
			Mode:    0o644,
			Content: []byte(ProfileBlock(ProfileOptionsFor(cfg))),
		},
		NameUpdateService: {
			Path:    UnitPath(FlatpakUpdateService),
			Mode:    0o644,
			Content: FlatpakUpdateServiceUnit(),
		},
		NameUpdateTimer: {
			Path:    UnitPath(FlatpakUpdateTimer),
			Mode:    0o644,
			Content: FlatpakUpdateTimerUnit(cfg.Updates.AppSchedule),
		},
	}
}
