// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// Sandbox type constants.
const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxToolbox indicates a toolbox (or distrobox) container on a
	// Fedora host.
	SandboxToolbox SandboxType = "toolbox"

	flatpakInfoPath = "/.flatpak-info"
	toolboxEnvPath  = "/run/.toolboxenv"
	containerEnvVar = "container"
)

// detectOnce caches the sandbox detection result for the lifetime of the process.
//
// INVARIANT: detectSandboxFrom MUST NOT panic. sync.OnceValue propagates a
// panic on every call, turning a single failure into a persistent crash.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the type of confinement, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process is running in.
// The result is cached after the first call.
//
// Detection methods:
//   - Flatpak: /.flatpak-info exists
//   - Toolbox: /run/.toolboxenv exists, or $container is "toolbox"
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostSpawnPrefix returns the argv prefix that re-targets a command at the
// host system for the detected sandbox, or nil when none is needed.
func HostSpawnPrefix() []string {
	return SpawnPrefixFor(DetectSandbox())
}

// SpawnPrefixFor returns the host spawn prefix for a given sandbox type.
// Both Flatpak and toolbox expose the host through the flatpak-session-helper,
// so they share the same prefix.
func SpawnPrefixFor(st SandboxType) []string {
	switch st {
	case SandboxFlatpak, SandboxToolbox:
		return []string{"flatpak-spawn", "--host"}
	case SandboxNone:
		return nil
	default:
		return nil
	}
}

// detectSandboxFrom performs sandbox detection using the provided lookup functions.
// Accepting lookupEnv and statFile as parameters allows tests to inject custom
// behavior without mutating process-wide state.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// Flatpak takes precedence: a toolbox started from inside a Flatpak is
	// still confined by the Flatpak.
	if err := statFile(flatpakInfoPath); err == nil {
		return SandboxFlatpak
	}

	if err := statFile(toolboxEnvPath); err == nil {
		return SandboxToolbox
	}
	if lookupEnv(containerEnvVar) == "toolbox" {
		return SandboxToolbox
	}

	return SandboxNone
}

// statFile checks for the existence of a file at the given path.
func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
