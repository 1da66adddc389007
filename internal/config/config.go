// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/kioskprov/kioskprov/internal/issue"
	"github.com/kioskprov/kioskprov/pkg/cueutil"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "kioskprov"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "KIOSK"
	// DefaultConfigPath is read when present and no --config is given.
	DefaultConfigPath = "/etc/kioskprov/config.cue"
)

//go:embed config_schema.cue
var configSchema []byte

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// The file must exist.
	ConfigFilePath string
	// SearchPath overrides DefaultConfigPath. A missing file there is not an error.
	SearchPath string
	// Fs is where config files are read from; nil means the host filesystem.
	Fs afero.Fs
}

// Load resolves the configuration and returns it with the path of the file
// it was read from ("" when only defaults and environment were used).
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, required := opts.ConfigFilePath, true
	if path == "" {
		path, required = opts.SearchPath, false
		if path == "" {
			path = DefaultConfigPath
		}
	}

	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}

	resolvedPath, err := mergeFile(fsys, v, path, required)
	if err != nil {
		return nil, "", err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check the KIOSK_* environment variables and the config file").
			WithSuggestion("Run 'kioskprov config show' to see the effective values").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("user", d.User)
	v.SetDefault("url", d.URL)
	v.SetDefault("console", d.Console)
	v.SetDefault("shell", d.Shell)
	v.SetDefault("packages", d.Packages)
	v.SetDefault("compositor", d.Compositor)
	v.SetDefault("app.id", d.App.ID)
	v.SetDefault("app.args", d.App.Args)
	v.SetDefault("app.remote.name", d.App.Remote.Name)
	v.SetDefault("app.remote.url", d.App.Remote.URL)
	v.SetDefault("remote_login.service", d.RemoteLogin.Service)
	v.SetDefault("updates.app_schedule", d.Updates.AppSchedule)
	v.SetDefault("updates.os_upgrade_type", d.Updates.OSUpgradeType)
	v.SetDefault("updates.automatic_conf", d.Updates.AutomaticConf)
}

// mergeFile validates the CUE file at path against #Config and merges it into v.
// It returns "" without error when the file is absent and not required.
func mergeFile(fsys afero.Fs, v *viper.Viper, path string, required bool) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return "", nil
	}
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Check that the file exists and is readable").
			Wrap(err).
			BuildError()
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(path).
			WithSuggestion("Check that the file contains valid CUE syntax").
			WithSuggestion("Verify the configuration values match the expected schema").
			Wrap(err).
			BuildError()
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return "", fmt.Errorf("failed to merge config: %w", err)
	}
	return path, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// kioskprov configuration\n")
	sb.WriteString("// Place at " + DefaultConfigPath + " or pass with --config.\n\n")

	fmt.Fprintf(&sb, "user:       %q\n", cfg.User)
	fmt.Fprintf(&sb, "url:        %q\n", cfg.URL)
	fmt.Fprintf(&sb, "console:    %q\n", cfg.Console)
	fmt.Fprintf(&sb, "shell:      %q\n", cfg.Shell)
	fmt.Fprintf(&sb, "packages:   %s\n", cueList(cfg.Packages))
	fmt.Fprintf(&sb, "compositor: %q\n", cfg.Compositor)

	sb.WriteString("\napp: {\n")
	fmt.Fprintf(&sb, "\tid:   %q\n", cfg.App.ID)
	fmt.Fprintf(&sb, "\targs: %s\n", cueList(cfg.App.Args))
	sb.WriteString("\tremote: {\n")
	fmt.Fprintf(&sb, "\t\tname: %q\n", cfg.App.Remote.Name)
	fmt.Fprintf(&sb, "\t\turl:  %q\n", cfg.App.Remote.URL)
	sb.WriteString("\t}\n}\n")

	sb.WriteString("\nremote_login: {\n")
	fmt.Fprintf(&sb, "\tservice: %q\n", cfg.RemoteLogin.Service)
	sb.WriteString("}\n")

	sb.WriteString("\nupdates: {\n")
	fmt.Fprintf(&sb, "\tapp_schedule:    %q\n", cfg.Updates.AppSchedule)
	fmt.Fprintf(&sb, "\tos_upgrade_type: %q\n", cfg.Updates.OSUpgradeType)
	fmt.Fprintf(&sb, "\tautomatic_conf:  %q\n", cfg.Updates.AutomaticConf)
	sb.WriteString("}\n")

	return sb.String()
}

func cueList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, fmt.Sprintf("%q", item))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
