// Package search implements the search command.
package search

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/cmd/output"
	"github.com/agentstation/sedmap/pkg/catalogs"
)

// NewCommand creates the search command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name>",
		Short: "Find catalog sources matching a name or alias",
		Long: `Search matches a name against the Sources table and the Names aliases,
case-insensitively, and prints one row per candidate source.`,
		Example: `  sedmap search TWA
  sedmap search 2M1207 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := app.Catalog(ctx)
			if err != nil {
				return err
			}
			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}

			rows, err := cat.SearchObject(ctx, args[0])
			if err != nil {
				return err
			}
			app.Logger().Debug().Str("name", args[0]).Int("matches", len(rows)).Msg("Search complete")

			if format != output.FormatTable {
				if rows == nil {
					rows = []catalogs.Row{}
				}
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				cmd.PrintErrf("No sources match %q\n", args[0])
				return nil
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), output.RowsToTableData("", rows))
		},
	}
}
