// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// CheckShellSyntax parses script as bash and returns the first syntax error.
// A URL containing a double quote, for example, leaves the launch line
// unterminated.
func CheckShellSyntax(name, script string) error {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	if _, err := parser.Parse(strings.NewReader(script), name); err != nil {
		return fmt.Errorf("shell syntax: %w", err)
	}
	return nil
}
