// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"io"
	"strings"

	"github.com/kioskprov/kioskprov/internal/config"

	"github.com/charmbracelet/lipgloss"
)

// Step outcomes.
const (
	StatusOK Status = iota
	StatusSkip
	StatusWarn
	StatusFail
)

type (
	// Status is the outcome of a step.
	Status int

	// Outcome is the reported result of one step.
	Outcome struct {
		Step   string
		Status Status
		Detail string
	}

	// Reporter prints step banners, outcome lines and the final summary.
	// Styles are bound to the writer, so redirected output is plain text.
	Reporter struct {
		w        io.Writer
		outcomes []Outcome

		banner  lipgloss.Style
		muted   lipgloss.Style
		ok      lipgloss.Style
		skip    lipgloss.Style
		warn    lipgloss.Style
		fail    lipgloss.Style
		summary lipgloss.Style
	}
)

// Tag returns the bracketed label printed before an outcome.
func (s Status) Tag() string {
	switch s {
	case StatusOK:
		return "[OK]"
	case StatusSkip:
		return "[SKIP]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return fmt.Sprintf("[%d]", int(s))
	}
}

// String returns the tag without brackets.
func (s Status) String() string {
	return strings.Trim(s.Tag(), "[]")
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	r := lipgloss.NewRenderer(w)
	return &Reporter{
		w:       w,
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		skip:    r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		fail:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444")),
		summary: r.NewStyle().Bold(true).MarginTop(1),
	}
}

// Banner announces step index (1-based) of total.
func (r *Reporter) Banner(index, total int, title string) {
	counter := r.muted.Render(fmt.Sprintf("[%d/%d]", index, total))
	fmt.Fprintf(r.w, "%s %s %s\n", r.banner.Render("==>"), counter, r.banner.Render(title))
}

// Report prints and records an outcome.
func (r *Reporter) Report(o Outcome) {
	r.outcomes = append(r.outcomes, o)

	line := "    " + r.style(o.Status).Render(o.Status.Tag()) + " " + o.Step
	if o.Detail != "" {
		line += ": " + o.Detail
	}
	fmt.Fprintln(r.w, line)
}

// Outcomes returns the recorded outcomes in order.
func (r *Reporter) Outcomes() []Outcome {
	return append([]Outcome(nil), r.outcomes...)
}

// Count returns how many recorded outcomes have status s.
func (r *Reporter) Count(s Status) int {
	n := 0
	for _, o := range r.outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Summary prints the closing block. failed is the step that aborted the run,
// if any; kiosk, when set, is the configuration that was applied.
func (r *Reporter) Summary(dryRun bool, failed *Outcome, kiosk *config.Config) {
	counts := fmt.Sprintf("%d ok, %d skipped, %d warnings",
		r.Count(StatusOK), r.Count(StatusSkip), r.Count(StatusWarn))

	var title string
	switch {
	case failed != nil:
		title = r.fail.Render("Provisioning failed at: " + failed.Step)
	case dryRun:
		title = r.warn.Render("Dry run complete; no changes were made to the host")
	default:
		title = r.ok.Render("Provisioning complete")
	}

	fmt.Fprintln(r.w, r.summary.Render(title))
	fmt.Fprintln(r.w, "    "+r.muted.Render(counts))
	if r.Count(StatusWarn) > 0 {
		fmt.Fprintln(r.w, "    "+r.warn.Render("Review the [WARN] lines above; re-running is safe."))
	}
	if failed != nil || kiosk == nil {
		return
	}

	fmt.Fprintf(r.w, "    Account: %s\n", kiosk.User)
	fmt.Fprintf(r.w, "    Console: %s\n", kiosk.Console)
	fmt.Fprintf(r.w, "    URL:     %s\n", kiosk.URL)
	if dryRun {
		fmt.Fprintln(r.w, "    Next:    run as root without --dry-run to apply these changes")
		return
	}
	fmt.Fprintf(r.w, "    Next:    reboot to start the kiosk on %s\n", kiosk.Console)
}

func (r *Reporter) style(s Status) lipgloss.Style {
	switch s {
	case StatusOK:
		return r.ok
	case StatusSkip:
		return r.skip
	case StatusWarn:
		return r.warn
	default:
		return r.fail
	}
}
