// SPDX-License-Identifier: MPL-2.0

package account

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/kioskprov/kioskprov/internal/hostexec"

	"github.com/moby/sys/user"
	"github.com/spf13/afero"
)

const (
	// PasswdPath is the local account database.
	PasswdPath = "/etc/passwd"

	homeBase = "/home"
)

// ErrNoSuchAccount is returned by Lookup when no passwd record has the name.
var ErrNoSuchAccount = errors.New("no such account")

type (
	// Account is the subset of a passwd record provisioning needs.
	// Uid and Gid are -1 when the record could not be read back.
	Account struct {
		Name  string
		Uid   int
		Gid   int
		Home  string
		Shell string
	}

	// Manager reads the account database from fs and changes it through runner.
	Manager struct {
		fs     afero.Fs
		runner hostexec.Runner
	}
)

// NewManager creates a Manager.
func NewManager(fs afero.Fs, runner hostexec.Runner) *Manager {
	return &Manager{fs: fs, runner: runner}
}

// Lookup returns the passwd record for name.
func (m *Manager) Lookup(name string) (Account, error) {
	f, err := m.fs.Open(PasswdPath)
	if err != nil {
		return Account{}, fmt.Errorf("open %s: %w", PasswdPath, err)
	}
	defer f.Close()

	users, err := user.ParsePasswdFilter(f, func(u user.User) bool { return u.Name == name })
	if err != nil {
		return Account{}, fmt.Errorf("parse %s: %w", PasswdPath, err)
	}
	if len(users) == 0 {
		return Account{}, fmt.Errorf("%w: %s", ErrNoSuchAccount, name)
	}

	u := users[0]
	return Account{Name: u.Name, Uid: u.Uid, Gid: u.Gid, Home: u.Home, Shell: u.Shell}, nil
}

// Ensure creates name with a home directory and login shell, then clears its
// password, unless the account already exists. Existing accounts are left
// untouched. created reports whether useradd ran.
func (m *Manager) Ensure(ctx context.Context, name, shell string) (acct Account, created bool, err error) {
	acct, err = m.Lookup(name)
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, ErrNoSuchAccount) {
		return Account{}, false, err
	}

	if err := m.runner.Run(ctx, "useradd", "-m", "-s", shell, name); err != nil {
		return Account{}, false, err
	}
	if err := m.runner.Run(ctx, "passwd", "-d", name); err != nil {
		return Account{}, true, err
	}

	acct, err = m.Lookup(name)
	if err != nil {
		// Dry runs never create the record; fall back to useradd's default layout.
		return Account{Name: name, Uid: -1, Gid: -1, Home: path.Join(homeBase, name), Shell: shell}, true, nil
	}
	return acct, true, nil
}
