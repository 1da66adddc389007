// SPDX-License-Identifier: MPL-2.0

// Package hostexec runs the host tools (dnf, flatpak, useradd, passwd,
// systemctl) that provisioning drives.
//
// ExecRunner executes commands with os/exec, re-targeting them through
// flatpak-spawn --host when kioskprov itself runs inside a Flatpak sandbox or
// a toolbox container. DryRunRunner only logs what would run.
package hostexec
