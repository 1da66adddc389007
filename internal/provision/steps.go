// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/kioskprov/kioskprov/internal/artifact"
	"github.com/kioskprov/kioskprov/internal/config"
	"github.com/kioskprov/kioskprov/pkg/platform"

	"github.com/spf13/afero"
)

func (p *Provisioner) checkHost(_ context.Context) (Status, string, error) {
	if p.dryRun {
		p.logger.Warn("dry run: privilege check skipped, nothing will be changed")
		return StatusSkip, "dry run, privileges not required", nil
	}
	if uid := p.euid(); uid != 0 {
		return StatusFail, "", fmt.Errorf("%w (effective uid %d)", ErrNotRoot, uid)
	}

	rel, err := platform.ReadOSRelease(p.fs)
	if err != nil {
		p.logger.Warn("cannot identify host distribution", "err", err)
		return StatusWarn, "running as root on an unidentified distribution", nil
	}
	if !rel.IsFedora() {
		p.logger.Warn("host is not Fedora; dnf and package names may not match", "os", rel.String())
		return StatusWarn, "running as root on " + rel.String() + ", which is not Fedora", nil
	}
	return StatusOK, "running as root on " + rel.String(), nil
}

func (p *Provisioner) disableRemoteLogin(ctx context.Context) (Status, string, error) {
	service := p.cfg.RemoteLogin.Service

	out, err := p.runner.Output(ctx, "systemctl", "list-unit-files", "--type=service", "--no-legend", "--no-pager")
	if err != nil {
		p.logger.Warn("cannot list unit files", "err", err)
		return StatusSkip, "unit files could not be listed; " + service + " left as is", nil
	}
	if !hasField(out, service) {
		return StatusSkip, service + " is not installed", nil
	}

	disabled := p.bestEffort(ctx, "systemctl", "disable", "--now", service)
	masked := p.bestEffort(ctx, "systemctl", "mask", service)
	if !disabled || !masked {
		return StatusWarn, service + " could not be fully disabled and masked", nil
	}
	return StatusOK, service + " disabled and masked", nil
}

func (p *Provisioner) installPackages(ctx context.Context) (Status, string, error) {
	pkgs := strings.Join(p.cfg.Packages, " ")
	if len(p.cfg.Packages) == 0 {
		return StatusSkip, "no packages configured", nil
	}

	args := append([]string{"install", "-y"}, p.cfg.Packages...)
	if !p.bestEffort(ctx, "dnf", args...) {
		return StatusWarn, "dnf install " + pkgs + " failed; continuing", nil
	}
	return StatusOK, pkgs + " installed", nil
}

func (p *Provisioner) addRemote(ctx context.Context) (Status, string, error) {
	remote := p.cfg.App.Remote

	out, err := p.runner.Output(ctx, "flatpak", "remotes", "--columns=name")
	if err != nil {
		p.logger.Warn("cannot list flatpak remotes", "err", err)
	}
	if hasLine(out, remote.Name) {
		return StatusSkip, remote.Name + " already configured", nil
	}

	if err := p.runner.Run(ctx, "flatpak", "remote-add", "--if-not-exists", remote.Name, remote.URL); err != nil {
		return StatusFail, "", hostToolError("add flatpak remote", remote.Name, err)
	}
	return StatusOK, remote.Name + " added from " + remote.URL, nil
}

func (p *Provisioner) installApp(ctx context.Context) (Status, string, error) {
	app := string(p.cfg.App.ID)

	out, err := p.runner.Output(ctx, "flatpak", "list", "--app", "--columns=application")
	if err != nil {
		p.logger.Warn("cannot list flatpak applications", "err", err)
	}
	if hasLine(out, app) {
		return StatusSkip, app + " already installed", nil
	}

	if err := p.runner.Run(ctx, "flatpak", "install", "-y", "--noninteractive", p.cfg.App.Remote.Name, app); err != nil {
		return StatusFail, "", hostToolError("install flatpak application", app, err)
	}
	return StatusOK, app + " installed from " + p.cfg.App.Remote.Name, nil
}

func (p *Provisioner) ensureAccount(ctx context.Context) (Status, string, error) {
	name := p.cfg.User.String()

	acct, created, err := p.accounts.Ensure(ctx, name, p.cfg.Shell.String())
	if err != nil {
		return StatusFail, "", hostToolError("create kiosk account", name, err)
	}
	p.account = acct
	if !created {
		return StatusSkip, name + " already exists", nil
	}
	if acct.Uid < 0 && !p.dryRun {
		p.logger.Warn("created account is not listed in /etc/passwd", "user", name)
		return StatusWarn, name + " created but not found in /etc/passwd; profile ownership unchanged", nil
	}
	return StatusOK, name + " created with an empty password", nil
}

func (p *Provisioner) configureAutologin(ctx context.Context) (Status, string, error) {
	f := p.artifacts[artifact.NameAutologin]
	if err := writeFile(p.fs, f); err != nil {
		return StatusFail, "", fileError("write autologin drop-in", f.Path, err)
	}

	unit := p.cfg.Console.GettyUnit()
	if err := p.runner.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		return StatusFail, "", hostToolError("reload systemd", f.Path, err)
	}
	if err := p.runner.Run(ctx, "systemctl", "enable", unit); err != nil {
		return StatusFail, "", hostToolError("enable getty", unit, err)
	}
	return StatusOK, p.cfg.User.String() + " logs in automatically on " + string(p.cfg.Console), nil
}

func (p *Provisioner) configureAutostart(_ context.Context) (Status, string, error) {
	home := p.account.Home
	if home == "" {
		home = path.Join("/home", p.cfg.User.String())
	}
	profile := config.HomeProfile(home)

	existing, err := afero.ReadFile(p.fs, profile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		if p.deniedInDryRun(err) {
			return p.unreadableProfile(profile, err)
		}
		return StatusFail, "", fileError("read login profile", profile, err)
	}

	block := p.artifacts[artifact.NameProfile]
	content := artifact.ReplaceManagedBlock(string(existing), string(block.Content))
	if err := writeFile(p.fs, artifact.File{Path: profile, Mode: block.Mode, Content: []byte(content)}); err != nil {
		if p.deniedInDryRun(err) {
			return p.unreadableProfile(profile, err)
		}
		return StatusFail, "", fileError("write login profile", profile, err)
	}

	if p.account.Uid >= 0 && p.account.Name != "" {
		if err := p.fs.Chown(profile, p.account.Uid, p.account.Gid); err != nil {
			return StatusFail, "", fileError("hand login profile to "+p.account.Name, profile, err)
		}
	}

	if err := artifact.CheckShellSyntax(profile, string(block.Content)); err != nil {
		p.logger.Warn("login profile does not parse; check the kiosk URL for quotes", "path", profile, "err", err)
		return StatusWarn, profile + " written but has a shell syntax error", nil
	}
	return StatusOK, profile + " launches " + p.cfg.Compositor + " on " + p.cfg.Console.Device(), nil
}

// deniedInDryRun reports whether err is a permission error that a dry run
// hits because it reads the host without root.
func (p *Provisioner) deniedInDryRun(err error) bool {
	return p.dryRun && errors.Is(err, fs.ErrPermission)
}

func (p *Provisioner) unreadableProfile(profile string, err error) (Status, string, error) {
	p.logger.Warn("login profile is not accessible without root; managed block not previewed", "path", profile, "err", err)
	return StatusWarn, profile + " not readable without root; the managed block would be replaced", nil
}

func (p *Provisioner) configureAppUpdates(ctx context.Context) (Status, string, error) {
	for _, name := range []string{artifact.NameUpdateService, artifact.NameUpdateTimer} {
		f := p.artifacts[name]
		if err := writeFile(p.fs, f); err != nil {
			return StatusFail, "", fileError("write unit file", f.Path, err)
		}
	}

	if err := p.runner.Run(ctx, "systemctl", "daemon-reload"); err != nil {
		return StatusFail, "", hostToolError("reload systemd", artifact.SystemdUnitDir, err)
	}
	if err := p.runner.Run(ctx, "systemctl", "enable", "--now", artifact.FlatpakUpdateTimer); err != nil {
		return StatusFail, "", hostToolError("enable timer", artifact.FlatpakUpdateTimer, err)
	}
	return StatusOK, artifact.FlatpakUpdateTimer + " enabled (" + p.cfg.Updates.AppSchedule + ")", nil
}

func (p *Provisioner) configureOSUpdates(ctx context.Context) (Status, string, error) {
	if err := p.runner.Run(ctx, "dnf", "install", "-y", "dnf-automatic"); err != nil {
		return StatusFail, "", hostToolError("install dnf-automatic", "dnf-automatic", err)
	}

	status, detail := StatusOK, "dnf-automatic applies "+string(p.cfg.Updates.OSUpgradeType)+" updates"
	if warning := p.rewriteAutomaticConf(); warning != "" {
		status, detail = StatusWarn, warning
	}

	if err := p.runner.Run(ctx, "systemctl", "enable", "--now", artifact.DNFAutomaticTimer); err != nil {
		return StatusFail, "", hostToolError("enable timer", artifact.DNFAutomaticTimer, err)
	}
	return status, detail, nil
}

// rewriteAutomaticConf forces the managed settings into dnf-automatic's
// config. Failures are returned as a warning detail, never as an error.
func (p *Provisioner) rewriteAutomaticConf() string {
	confPath := p.cfg.Updates.AutomaticConf.String()

	info, err := p.fs.Stat(confPath)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Warn("dnf-automatic config not found; timer runs with package defaults", "path", confPath)
		return confPath + " not found; package defaults apply"
	}
	if err != nil {
		p.logger.Warn("cannot stat dnf-automatic config", "path", confPath, "err", err)
		return confPath + " could not be read"
	}

	data, err := afero.ReadFile(p.fs, confPath)
	if err != nil {
		p.logger.Warn("cannot read dnf-automatic config", "path", confPath, "err", err)
		return confPath + " could not be read"
	}

	settings := artifact.AutomaticSettings(string(p.cfg.Updates.OSUpgradeType))
	rewritten, missing := artifact.RewriteAutomaticConf(string(data), settings)
	if rewritten != string(data) {
		if err := afero.WriteFile(p.fs, confPath, []byte(rewritten), info.Mode().Perm()); err != nil {
			p.logger.Warn("cannot write dnf-automatic config", "path", confPath, "err", err)
			return confPath + " could not be written"
		}
	}
	if len(missing) > 0 {
		p.logger.Warn("dnf-automatic config lacks settings", "path", confPath, "keys", missing)
		return confPath + " has no " + strings.Join(missing, ", ") + " setting"
	}

	if got, err := artifact.ReadAutomaticConf([]byte(rewritten)); err == nil {
		p.logger.Debug("dnf-automatic config", "apply_updates", got.ApplyUpdates, "upgrade_type", got.UpgradeType)
	}
	return ""
}

// hasLine reports whether out has a line equal to want after trimming.
func hasLine(out, want string) bool {
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == want {
			return true
		}
	}
	return false
}

// hasField reports whether any line of out starts with the field want.
func hasField(out, want string) bool {
	for _, line := range strings.Split(out, "\n") {
		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == want {
			return true
		}
	}
	return false
}
