// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Issue identifiers.
const (
	NotRootId Id = iota + 1
	HostToolFailedId
	ConfigLoadFailedId
	UnsupportedHostId
	AccountUnavailableId
)

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation link rendered under "See also".
	HttpLink string

	// Issue is a catalog entry with operator guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

var (
	render = glamour.Render

	notRootIssue = &Issue{
		id: NotRootId,
		mdMsg: `
# Root privileges required

kioskprov installs packages, writes systemd units and creates accounts.
Every one of those steps needs root, so the run stopped before touching the host.

## Things you can try
- Re-run with sudo:
~~~
$ sudo kioskprov
~~~
- Preview the changes without root:
~~~
$ kioskprov --dry-run
~~~`,
	}

	hostToolFailedIssue = &Issue{
		id: HostToolFailedId,
		mdMsg: `
# A host tool failed

One of the provisioning steps ran an external tool (dnf, flatpak, useradd,
systemctl) that exited with an error. The run was aborted at that step;
everything before it is already applied and safe to re-run.

## Things you can try
- Read the tool's own error output above the failure line
- Check network access to the Fedora mirrors and to Flathub
- Re-run kioskprov; completed steps are skipped or rewritten identically`,
		docLinks: []HttpLink{"https://docs.flatpak.org/en/latest/using-flatpak.html"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

The configuration file could not be read or does not match the schema.

## Things you can try
- Show the effective configuration:
~~~
$ kioskprov config show
~~~
- Remove the file to fall back to defaults and KIOSK_* environment variables
- Check the field named in the error (for example console must look like tty1)`,
	}

	unsupportedHostIssue = &Issue{
		id: UnsupportedHostId,
		mdMsg: `
# Host is not Fedora

kioskprov drives dnf, dnf-automatic and Fedora's getty layout. Other
distributions may lack these tools or place them elsewhere.`,
		docLinks: []HttpLink{"https://docs.fedoraproject.org/en-US/quick-docs/"},
	}

	accountUnavailableIssue = &Issue{
		id: AccountUnavailableId,
		mdMsg: `
# Kiosk account unavailable

The kiosk account could not be found in /etc/passwd after useradd reported
success. Accounts served by LDAP or SSSD are not visible to kioskprov.

## Things you can try
- Pick a name that is not managed by a directory service (KIOSK_USER)
- Check /etc/passwd for the account`,
	}

	issues = map[Id]*Issue{
		notRootIssue.id:            notRootIssue,
		hostToolFailedIssue.id:     hostToolFailedIssue,
		configLoadFailedIssue.id:   configLoadFailedIssue,
		unsupportedHostIssue.id:    unsupportedHostIssue,
		accountUnavailableIssue.id: accountUnavailableIssue,
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the issue as styled terminal Markdown.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- " + string(link) + "\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns all catalog entries ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, is := range issues {
		out = append(out, is)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
