// SPDX-License-Identifier: MPL-2.0

// Package provision turns a Fedora host into a kiosk.
//
// A Provisioner runs a fixed, ordered list of steps. Each step checks whether
// its goal is already met before acting, so a second run converges to the
// same state as the first. Best-effort commands that fail are reported as
// warnings; any other failure aborts the run and carries the tool's exit
// status back to the caller.
package provision
