// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"strings"
)

const (
	// BeginMarker opens the managed autostart block.
	BeginMarker = "# >>> kioskprov autostart >>>"
	// EndMarker closes the managed autostart block.
	EndMarker = "# <<< kioskprov autostart <<<"
	// URLPlaceholder is replaced with the kiosk URL when the block is rendered.
	URLPlaceholder = "__KIOSK_URL__"
)

// ProfileOptions describes the launch line of the autostart block.
type ProfileOptions struct {
	// Device is the console device the kiosk runs on, e.g. /dev/tty1.
	Device string
	// Compositor wraps the application, e.g. cage.
	Compositor string
	// AppID is the Flatpak application to run.
	AppID string
	// Args precede the URL on the application's command line.
	Args []string
	// URL is substituted verbatim for URLPlaceholder.
	URL string
}

// ProfileTemplate renders the block with URLPlaceholder still in place.
func ProfileTemplate(opts ProfileOptions) string {
	launch := []string{"exec", opts.Compositor, "--", "flatpak", "run", opts.AppID}
	launch = append(launch, opts.Args...)

	var sb strings.Builder
	sb.WriteString(BeginMarker + "\n")
	sb.WriteString(`if [ -z "$WAYLAND_DISPLAY" ] && [ "$(tty)" = "` + opts.Device + `" ]; then` + "\n")
	sb.WriteString("    " + strings.Join(launch, " ") + ` "` + URLPlaceholder + `"` + "\n")
	sb.WriteString("fi\n")
	sb.WriteString(EndMarker + "\n")
	return sb.String()
}

// ProfileBlock renders the managed block with the URL substituted as plain
// text. No shell escaping is applied.
func ProfileBlock(opts ProfileOptions) string {
	return strings.ReplaceAll(ProfileTemplate(opts), URLPlaceholder, opts.URL)
}

// ReplaceManagedBlock removes every managed region from content and appends
// block once. A region runs from a begin marker line through the next end
// marker line, or through the end of content when the end marker is missing.
// Stray end markers are dropped. Lines outside the regions are kept as is.
func ReplaceManagedBlock(content, block string) string {
	var kept []string
	inBlock := false
	for _, line := range splitLines(content) {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == BeginMarker:
			inBlock = true
		case trimmed == EndMarker:
			inBlock = false
		case !inBlock:
			kept = append(kept, line)
		}
	}

	var sb strings.Builder
	for _, line := range kept {
		sb.WriteString(line + "\n")
	}
	sb.WriteString(block)
	if !strings.HasSuffix(block, "\n") {
		sb.WriteString("\n")
	}
	return sb.String()
}

// splitLines splits on newlines without producing a trailing empty element.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}
