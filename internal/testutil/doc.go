// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Common helpers include environment variable management (MustSetenv),
// in-memory host filesystems (MustWriteFile, MustReadFile, AddPasswdEntry)
// and FakeRunner, a scripted hostexec.Runner.
package testutil
