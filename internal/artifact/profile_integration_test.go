// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
)

const fedoraImage = "registry.fedoraproject.org/fedora:41"

// containersAvailable reports whether a container provider can be reached.
// Provider detection can panic when no engine is configured.
func containersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// TestProfileBlock_BashAcceptsRenderedProfile checks the rendered login hook
// with the bash that ships on Fedora, not only with the Go parser.
func TestProfileBlock_BashAcceptsRenderedProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if !containersAvailable() {
		t.Skip("skipping integration test: no container engine available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	profile := ReplaceManagedBlock("# ~/.bash_profile\n[ -f ~/.bashrc ] && . ~/.bashrc\n", ProfileBlock(ProfileOptions{
		Device:     "/dev/tty1",
		Compositor: "cage",
		AppID:      "org.chromium.Chromium",
		Args:       []string{"--kiosk", "--ozone-platform=wayland"},
		URL:        "https://example.com/board?view=full&refresh=60",
	}))

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: fedoraImage,
			Cmd:   []string{"sleep", "600"},
			Files: []testcontainers.ContainerFile{{
				Reader:            strings.NewReader(profile),
				ContainerFilePath: "/root/.bash_profile",
				FileMode:          0o644,
			}},
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, c)
	if err != nil {
		t.Fatalf("failed to start %s: %v", fedoraImage, err)
	}

	code, reader, err := c.Exec(ctx, []string{"bash", "-n", "/root/.bash_profile"}, tcexec.Multiplexed())
	if err != nil {
		t.Fatalf("exec bash -n: %v", err)
	}
	output, _ := io.ReadAll(reader)
	if code != 0 {
		t.Fatalf("bash -n exited %d:\n%s\nprofile:\n%s", code, output, profile)
	}
}
