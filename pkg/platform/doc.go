// SPDX-License-Identifier: MPL-2.0

// Package platform probes the host the provisioner runs on.
//
// It answers three questions before any host mutation happens: whether the
// process holds root privileges, which distribution /etc/os-release
// describes, and whether the process is confined to a Flatpak sandbox or a
// toolbox container (in which case host commands must be re-targeted with
// flatpak-spawn).
package platform
