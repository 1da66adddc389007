// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/kioskprov/kioskprov/internal/artifact"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
)

func newRenderCommand(app *App, flags *rootFlags) *cobra.Command {
	names := slices.Sorted(maps.Keys(artifact.Set{
		artifact.NameAutologin:     {},
		artifact.NameProfile:       {},
		artifact.NameUpdateService: {},
		artifact.NameUpdateTimer:   {},
	}))

	return &cobra.Command{
		Use:   "render [artifact...]",
		Short: "Print the files kioskprov writes",
		Long: `Print the files kioskprov writes, rendered from the effective configuration.

With no arguments every artifact is printed. The profile artifact is the
managed block inserted into the kiosk account's ~/.bash_profile.`,
		ValidArgs: names,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd.Context(), app, flags)
			if err != nil {
				return err
			}

			set := artifact.Build(cfg)
			selected := args
			if len(selected) == 0 {
				selected = slices.Sorted(maps.Keys(set))
			}

			out := cmd.OutOrStdout()
			st := newStyles(lipgloss.NewRenderer(out))
			for i, name := range selected {
				if i > 0 {
					fmt.Fprintln(out)
				}
				writeArtifact(out, st, name, set[name])
			}

			if err := artifact.CheckShellSyntax("profile", string(set[artifact.NameProfile].Content)); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), st.Warning.Render("warning: the profile block does not parse: "+err.Error()))
			}
			return nil
		},
	}
}

func writeArtifact(w io.Writer, st styles, name string, f artifact.File) {
	fmt.Fprintf(w, "%s %s\n", st.Title.Render("# "+name), st.Cmd.Render(f.Path))
	fmt.Fprint(w, string(f.Content))
}
