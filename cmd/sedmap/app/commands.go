package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap/cmd/sedmap/cmd/bibcode"
	"github.com/agentstation/sedmap/cmd/sedmap/cmd/inventory"
	"github.com/agentstation/sedmap/cmd/sedmap/cmd/load"
	"github.com/agentstation/sedmap/cmd/sedmap/cmd/search"
	"github.com/agentstation/sedmap/cmd/sedmap/cmd/serve"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(grouped("sed", load.NewCommand(a)))
	rootCmd.AddCommand(grouped("sed", serve.NewCommand(a)))
	rootCmd.AddCommand(grouped("catalog", search.NewCommand(a)))
	rootCmd.AddCommand(grouped("catalog", inventory.NewCommand(a)))
	rootCmd.AddCommand(grouped("catalog", bibcode.NewCommand(a)))

	rootCmd.AddCommand(a.versionCommand())
}

func grouped(id string, cmd *cobra.Command) *cobra.Command {
	cmd.GroupID = id
	return cmd
}

// versionCommand prints the version, and with -v the rest of BuildInfo.
func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := a.Build()
			lines := []string{"sedmap " + b.Version}
			if a.config.Verbose {
				lines = append(lines,
					"  commit:   "+b.Commit,
					"  built:    "+b.Date,
					"  built by: "+b.BuiltBy,
				)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return err
		},
	}
}
