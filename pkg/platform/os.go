// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
	"gopkg.in/ini.v1"
)

const (
	// OSReleasePath is the primary os-release location.
	OSReleasePath = "/etc/os-release"
	// OSReleaseFallbackPath is consulted when OSReleasePath is missing.
	OSReleaseFallbackPath = "/usr/lib/os-release"

	// Fedora is the os-release ID of Fedora Linux.
	Fedora = "fedora"
)

// ErrOSReleaseNotFound is returned when neither os-release file exists.
var ErrOSReleaseNotFound = errors.New("os-release not found")

// OSRelease holds the os-release fields the provisioner cares about.
type OSRelease struct {
	ID         string
	IDLike     []string
	VersionID  string
	PrettyName string
}

// IsFedora reports whether the release is Fedora or declares itself Fedora-like.
func (r OSRelease) IsFedora() bool {
	if r.ID == Fedora {
		return true
	}
	for _, like := range r.IDLike {
		if like == Fedora {
			return true
		}
	}
	return false
}

// String returns the pretty name, falling back to ID and version.
func (r OSRelease) String() string {
	if r.PrettyName != "" {
		return r.PrettyName
	}
	return strings.TrimSpace(r.ID + " " + r.VersionID)
}

// EffectiveUID returns the effective user ID of the running process.
func EffectiveUID() int {
	return unix.Geteuid()
}

// ReadOSRelease reads and parses os-release from fsys, trying the
// /etc path first and the /usr/lib fallback second.
func ReadOSRelease(fsys afero.Fs) (OSRelease, error) {
	for _, path := range []string{OSReleasePath, OSReleaseFallbackPath} {
		data, err := afero.ReadFile(fsys, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return OSRelease{}, fmt.Errorf("read %s: %w", path, err)
		}
		return ParseOSRelease(data)
	}
	return OSRelease{}, ErrOSReleaseNotFound
}

// ParseOSRelease parses the KEY=value os-release format. Quoted values are
// unquoted; unknown keys are ignored.
func ParseOSRelease(data []byte) (OSRelease, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:       true,
		SkipUnrecognizableLines:   true,
		UnescapeValueDoubleQuotes: true,
		KeyValueDelimiters:        "=",
	}, data)
	if err != nil {
		return OSRelease{}, fmt.Errorf("parse os-release: %w", err)
	}

	sec := file.Section(ini.DefaultSection)
	rel := OSRelease{
		ID:         sec.Key("ID").String(),
		VersionID:  sec.Key("VERSION_ID").String(),
		PrettyName: sec.Key("PRETTY_NAME").String(),
	}
	if like := sec.Key("ID_LIKE").String(); like != "" {
		rel.IDLike = strings.Fields(like)
	}
	return rel, nil
}
