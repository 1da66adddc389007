// SPDX-License-Identifier: MPL-2.0

package account

import (
	"context"
	"errors"
	"testing"

	"github.com/kioskprov/kioskprov/internal/hostexec"
	"github.com/kioskprov/kioskprov/internal/testutil"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func newHost(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.MustWriteFile(t, fs, PasswdPath, "root:x:0:0:root:/root:/bin/bash\n")
	return fs
}

func TestLookup(t *testing.T) {
	t.Parallel()

	fs := newHost(t)
	require.NoError(t, testutil.AddPasswdEntry(fs, "kiosk", 1001, "/bin/bash"))
	m := NewManager(fs, testutil.NewFakeRunner())

	got, err := m.Lookup("kiosk")
	require.NoError(t, err)
	require.Equal(t, Account{Name: "kiosk", Uid: 1001, Gid: 1001, Home: "/home/kiosk", Shell: "/bin/bash"}, got)

	_, err = m.Lookup("kios")
	require.ErrorIs(t, err, ErrNoSuchAccount)

	root, err := m.Lookup("root")
	require.NoError(t, err)
	require.Equal(t, 0, root.Uid)
}

func TestLookup_NoPasswd(t *testing.T) {
	t.Parallel()

	m := NewManager(afero.NewMemMapFs(), testutil.NewFakeRunner())
	_, err := m.Lookup("kiosk")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoSuchAccount)
}

func TestEnsure_Creates(t *testing.T) {
	t.Parallel()

	fs := newHost(t)
	runner := testutil.NewFakeRunner().
		Handle("useradd -m -s /bin/bash kiosk", func() error {
			return testutil.AddPasswdEntry(fs, "kiosk", 1000, "/bin/bash")
		})
	m := NewManager(fs, runner)

	acct, created, err := m.Ensure(context.Background(), "kiosk", "/bin/bash")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, 1000, acct.Uid)
	require.Equal(t, "/home/kiosk", acct.Home)
	require.Equal(t, []string{"useradd -m -s /bin/bash kiosk", "passwd -d kiosk"}, runner.Calls())
}

func TestEnsure_ExistingAccountUntouched(t *testing.T) {
	t.Parallel()

	fs := newHost(t)
	require.NoError(t, testutil.AddPasswdEntry(fs, "kiosk", 1000, "/bin/zsh"))
	runner := testutil.NewFakeRunner()
	m := NewManager(fs, runner)

	acct, created, err := m.Ensure(context.Background(), "kiosk", "/bin/bash")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "/bin/zsh", acct.Shell)
	require.Empty(t, runner.Calls())
}

func TestEnsure_UseraddFails(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner().Fail("useradd -m -s /bin/bash kiosk", 9)
	m := NewManager(newHost(t), runner)

	_, created, err := m.Ensure(context.Background(), "kiosk", "/bin/bash")
	require.False(t, created)
	require.Equal(t, 9, int(hostexec.ExitCodeOf(err)))
	require.False(t, runner.Called("passwd -d kiosk"))
}

func TestEnsure_PasswdFails(t *testing.T) {
	t.Parallel()

	runner := testutil.NewFakeRunner().Fail("passwd -d kiosk", 3)
	m := NewManager(newHost(t), runner)

	_, created, err := m.Ensure(context.Background(), "kiosk", "/bin/bash")
	require.True(t, created)
	var cmdErr *hostexec.CommandError
	require.True(t, errors.As(err, &cmdErr))
	require.Equal(t, "passwd -d kiosk", cmdErr.Command)
}

func TestEnsure_RecordNotReadBack(t *testing.T) {
	t.Parallel()

	// useradd "succeeds" without writing a record, as under a dry run.
	m := NewManager(newHost(t), testutil.NewFakeRunner())

	acct, created, err := m.Ensure(context.Background(), "kiosk", "/bin/bash")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, Account{Name: "kiosk", Uid: -1, Gid: -1, Home: "/home/kiosk", Shell: "/bin/bash"}, acct)
}
