// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
// The provisioner's config file is CUE. Loading it is a three-step flow:
//
//  1. Compile the embedded schema
//  2. Compile the operator's file and unify it with the schema definition
//  3. Validate and decode into a plain map that Viper can merge
//
// Errors carry the file name and a JSON-style field path
// (e.g. "config.cue: app.remote.url: ...") so operators can find the
// offending value without knowing CUE.
package cueutil
