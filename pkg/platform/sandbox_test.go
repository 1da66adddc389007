// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"io/fs"
	"slices"
	"testing"
)

func statOnly(existing ...string) func(string) error {
	return func(path string) error {
		if slices.Contains(existing, path) {
			return nil
		}
		return fs.ErrNotExist
	}
}

func envOf(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		env   map[string]string
		files []string
		want  SandboxType
	}{
		{name: "bare host", want: SandboxNone},
		{name: "flatpak info file", files: []string{flatpakInfoPath}, want: SandboxFlatpak},
		{name: "toolbox marker file", files: []string{toolboxEnvPath}, want: SandboxToolbox},
		{name: "toolbox container env", env: map[string]string{"container": "toolbox"}, want: SandboxToolbox},
		{name: "podman container env is not toolbox", env: map[string]string{"container": "podman"}, want: SandboxNone},
		{
			name:  "flatpak wins over toolbox",
			files: []string{flatpakInfoPath, toolboxEnvPath},
			want:  SandboxFlatpak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := detectSandboxFrom(envOf(tt.env), statOnly(tt.files...))
			if got != tt.want {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpawnPrefixFor(t *testing.T) {
	t.Parallel()

	if got := SpawnPrefixFor(SandboxNone); got != nil {
		t.Errorf("SpawnPrefixFor(none) = %v, want nil", got)
	}
	for _, st := range []SandboxType{SandboxFlatpak, SandboxToolbox} {
		got := SpawnPrefixFor(st)
		if !slices.Equal(got, []string{"flatpak-spawn", "--host"}) {
			t.Errorf("SpawnPrefixFor(%q) = %v", st, got)
		}
	}
	if got := SpawnPrefixFor("unknown"); got != nil {
		t.Errorf("SpawnPrefixFor(unknown) = %v, want nil", got)
	}
}
