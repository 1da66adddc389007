// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kioskprov/kioskprov/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the `kioskprov config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect kioskprov configuration",
		Long: `Inspect kioskprov configuration.

Values come from built-in defaults, then ` + config.DefaultConfigPath + ` (or --config),
then KIOSK_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags, cmd.OutOrStdout())
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd.Context(), app, flags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, err := loadConfig(cmd.Context(), app, flags)
			if err != nil {
				return err
			}
			if path == "" {
				path = config.DefaultConfigPath + " (not present)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlags, w io.Writer) error {
	cfg, path, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}

	st := newStyles(lipgloss.NewRenderer(w))
	kv := func(key, value string) {
		fmt.Fprintf(w, "%s: %s\n", st.Cmd.Render(key), st.Success.Render(value))
	}

	fmt.Fprintln(w, st.Title.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", st.Cmd.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", st.Cmd.Render("Config file"), st.Subtitle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	kv("user", cfg.User.String())
	kv("url", cfg.URL.String())
	kv("console", string(cfg.Console))
	kv("shell", cfg.Shell.String())
	kv("packages", strings.Join(cfg.Packages, ", "))
	kv("compositor", cfg.Compositor)
	kv("app.id", string(cfg.App.ID))
	kv("app.args", strings.Join(cfg.App.Args, " "))
	kv("app.remote.name", cfg.App.Remote.Name)
	kv("app.remote.url", cfg.App.Remote.URL)
	kv("remote_login.service", cfg.RemoteLogin.Service)
	kv("updates.app_schedule", cfg.Updates.AppSchedule)
	kv("updates.os_upgrade_type", string(cfg.Updates.OSUpgradeType))
	kv("updates.automatic_conf", cfg.Updates.AutomaticConf.String())
	return nil
}
