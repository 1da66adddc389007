// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError wraps a cause with the operation that failed, the host
// resource involved and remediation hints. The issue catalog holds longer
// Markdown guidance for the failures an operator is most likely to hit
// (running without root, a host tool failing, a broken config file),
// rendered to the terminal with glamour.
package issue
