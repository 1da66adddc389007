// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"slices"
	"testing"

	"github.com/spf13/afero"
)

const fedoraWorkstation = `NAME="Fedora Linux"
VERSION="40 (Workstation Edition)"
ID=fedora
VERSION_ID=40
PRETTY_NAME="Fedora Linux 40 (Workstation Edition)"
ANSI_COLOR="0;38;2;60;110;180"
HOME_URL="https://fedoraproject.org/"
`

func TestParseOSRelease(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       string
		wantID     string
		wantLike   []string
		wantFedora bool
		wantString string
	}{
		{
			name:       "fedora workstation",
			data:       fedoraWorkstation,
			wantID:     "fedora",
			wantFedora: true,
			wantString: "Fedora Linux 40 (Workstation Edition)",
		},
		{
			name:       "fedora derivative",
			data:       "ID=ultramarine\nID_LIKE=\"fedora rhel\"\nVERSION_ID=40\n",
			wantID:     "ultramarine",
			wantLike:   []string{"fedora", "rhel"},
			wantFedora: true,
			wantString: "ultramarine 40",
		},
		{
			name:       "debian",
			data:       "ID=debian\nVERSION_ID=\"12\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n",
			wantID:     "debian",
			wantFedora: false,
			wantString: "Debian GNU/Linux 12 (bookworm)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rel, err := ParseOSRelease([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseOSRelease() error = %v", err)
			}
			if rel.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", rel.ID, tt.wantID)
			}
			if !slices.Equal(rel.IDLike, tt.wantLike) {
				t.Errorf("IDLike = %v, want %v", rel.IDLike, tt.wantLike)
			}
			if rel.IsFedora() != tt.wantFedora {
				t.Errorf("IsFedora() = %v, want %v", rel.IsFedora(), tt.wantFedora)
			}
			if rel.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", rel.String(), tt.wantString)
			}
		})
	}
}

func TestReadOSRelease(t *testing.T) {
	t.Parallel()

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := ReadOSRelease(afero.NewMemMapFs())
		if !errors.Is(err, ErrOSReleaseNotFound) {
			t.Errorf("ReadOSRelease() error = %v, want ErrOSReleaseNotFound", err)
		}
	})

	t.Run("fallback path", func(t *testing.T) {
		t.Parallel()

		fsys := afero.NewMemMapFs()
		if err := afero.WriteFile(fsys, OSReleaseFallbackPath, []byte(fedoraWorkstation), 0o644); err != nil {
			t.Fatal(err)
		}
		rel, err := ReadOSRelease(fsys)
		if err != nil {
			t.Fatalf("ReadOSRelease() error = %v", err)
		}
		if !rel.IsFedora() {
			t.Errorf("ReadOSRelease() = %+v, want fedora", rel)
		}
	})
}
