// SPDX-License-Identifier: MPL-2.0

// Package config loads the provisioning configuration using Viper with CUE as
// the file format.
//
// Values are layered, lowest precedence first: built-in defaults, the CUE
// file (/etc/kioskprov/config.cue or --config), then KIOSK_* environment
// variables. Nested keys map to underscores, so app.remote.url is read from
// KIOSK_APP_REMOTE_URL; list values are comma-separated.
//
// The file is validated against the embedded config_schema.cue (#Config)
// before it is merged, and the merged result is validated again in Go so
// environment overrides get the same checks.
package config
