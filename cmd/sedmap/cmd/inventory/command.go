// Package inventory implements the inventory command.
package inventory

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/cmd/output"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
)

// Result is the structured output of an inventory.
type Result struct {
	Object        string             `json:"object" yaml:"object"`
	RequestedName string             `json:"requested_name" yaml:"requested_name"`
	Tables        catalogs.Inventory `json:"tables" yaml:"tables"`
}

// NewCommand creates the inventory command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "inventory <name>",
		Short: "List every catalog row held for an object",
		Long: `Inventory resolves the name the same way load does and lists the
rows each table holds for the object, without building an SED.`,
		Example: `  sedmap inventory "TWA 27"
  sedmap inventory "TWA 27" --table Photometry
  sedmap inventory 2M1207 -o yaml`,
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

			opts := append(app.AdapterOptions(), sedmap.WithAutoLoad(false))
			adapter, err := sedmap.New(ctx, cat, args[0], opts...)
			if err != nil {
				return err
			}
			inv := adapter.Inventory()

			if table != "" {
				rows, ok := inv.Rows(table)
				if !ok {
					return errors.NewNotFoundError("table", table)
				}
				inv = catalogs.Inventory{table: rows}
			}

			w := cmd.OutOrStdout()
			if format != output.FormatTable {
				return output.NewFormatter(format).Format(w, Result{
					Object:        adapter.Name(),
					RequestedName: adapter.RequestedName(),
					Tables:        inv,
				})
			}

			formatter := output.NewFormatter(format)
			if table != "" {
				return formatter.Format(w, output.RowsToTableData(table, inv[table]))
			}
			if _, err := fmt.Fprintf(w, "%s\n", adapter.Name()); err != nil {
				return err
			}
			return formatter.Format(w, Counts(inv))
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "show the rows of one table")

	return cmd
}

// Counts renders the number of rows per table.
func Counts(inv catalogs.Inventory) output.Data {
	rows := make([][]string, 0, len(inv))
	for _, name := range inv.Tables() {
		rows = append(rows, []string{name, strconv.Itoa(len(inv[name]))})
	}
	return output.Data{
		Headers:         []string{"TABLE", "ROWS"},
		Rows:            rows,
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight},
	}
}
