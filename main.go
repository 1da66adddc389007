// SPDX-License-Identifier: MPL-2.0

// Command kioskprov provisions a Fedora machine as a browser kiosk.
package main

import cmd "github.com/kioskprov/kioskprov/cmd/kioskprov"

func main() {
	cmd.Execute()
}
