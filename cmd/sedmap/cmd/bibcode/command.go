// Package bibcode implements the bibcode command, which resolves
// publication keys through the Publications table.
package bibcode

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/cmd/output"
	"github.com/agentstation/sedmap/pkg/references"
)

// NewCommand creates the bibcode command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "bibcode <publication>...",
		Short: "Resolve publication keys to bibcodes",
		Long: `Bibcode looks up each publication key in the Publications table.
Keys with no row or an empty bibcode print as unresolved.`,
		Example: `  sedmap bibcode Gizi07
  sedmap bibcode Gaia18 Duch17 Reid08 -o json`,
		Args: cobra.MinimumNArgs(1),
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

			resolver := references.NewResolver(cat, references.WithLogger(app.Logger()))
			results := make([]references.Resolution, 0, len(args))
			for _, pub := range args {
				results = append(results, resolver.Resolve(ctx, pub))
			}

			formatter := output.NewFormatter(format)
			if format == output.FormatTable {
				return formatter.Format(cmd.OutOrStdout(), output.ResolutionsToTableData(results))
			}
			return formatter.Format(cmd.OutOrStdout(), results)
		},
	}
}
