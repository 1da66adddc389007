// SPDX-License-Identifier: MPL-2.0

// Package artifact renders the files kioskprov writes to the host and the
// text transforms applied to files it does not own.
//
// Every function here is pure: identical inputs render identical bytes, which
// is what makes re-running the provisioner converge instead of drift.
package artifact
