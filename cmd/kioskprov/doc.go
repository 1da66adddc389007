// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for kioskprov.
//
// The root command provisions the host. The render and config subcommands
// are read-only and exist so operators can review what a run will write.
package cmd
