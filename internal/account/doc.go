// SPDX-License-Identifier: MPL-2.0

// Package account looks up and creates the local kiosk account.
package account
