// Package load implements the load command, which assembles and prints
// the SED of one object.
package load

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/internal/appcontext"
	"github.com/agentstation/sedmap/internal/cmd/alerts"
	"github.com/agentstation/sedmap/internal/cmd/output"
	"github.com/agentstation/sedmap/internal/metrics"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/sed"
)

// Flags holds load command flags.
type Flags struct {
	Only             []string
	UncertaintyScale float64
	MetricsOut       string
	Reports          bool
	Diagnostics      bool
}

// Result is the structured output of a load.
type Result struct {
	Object        string              `json:"object" yaml:"object"`
	RequestedName string              `json:"requested_name" yaml:"requested_name"`
	LoadID        string              `json:"load_id" yaml:"load_id"`
	SED           *sed.SED            `json:"sed" yaml:"sed"`
	Records       []Record            `json:"records,omitempty" yaml:"records,omitempty"`
	Diagnostics   []sedmap.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// Record is one record result flattened for output.
type Record struct {
	Loader    string         `json:"loader" yaml:"loader"`
	Table     string         `json:"table" yaml:"table"`
	Row       int            `json:"row" yaml:"row"`
	Outcome   sedmap.Outcome `json:"outcome" yaml:"outcome"`
	Reference string         `json:"reference,omitempty" yaml:"reference,omitempty"`
	Status    string         `json:"reference_status,omitempty" yaml:"reference_status,omitempty"`
	Error     string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCommand creates the load command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Assemble the SED of an object",
		Long: `Load resolves an object name against the catalog, fetches its inventory
and populates an SED from the Sources, Parallaxes, Photometry,
SpectralTypes and Spectra tables. Bad records are reported and skipped.`,
		Example: `  sedmap load "TWA 27"
  sedmap load 2M1207 --only coords,parallax
  sedmap load "TWA 27" --format json --reports
  sedmap load "TWA 27" --uncertainty-scale 0.1 --metrics-out sedmap.prom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args[0])
		},
	}

	cmd.Flags().StringSliceVar(&flags.Only, "only", nil,
		"loaders to run, in order: "+strings.Join(sedmap.LoadOrder, ", "))
	cmd.Flags().Float64Var(&flags.UncertaintyScale, "uncertainty-scale", 0,
		"flux multiplier for spectra without uncertainties (default NaN)")
	cmd.Flags().StringVar(&flags.MetricsOut, "metrics-out", "", "write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&flags.Reports, "reports", false, "print per-record outcomes")
	cmd.Flags().BoolVar(&flags.Diagnostics, "diagnostics", false, "print diagnostics")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags, name string) error {
	ctx := cmd.Context()
	cat, err := app.Catalog(ctx)
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	opts := app.AdapterOptions()
	if cmd.Flags().Changed("uncertainty-scale") {
		opts = append(opts, sedmap.WithUncertaintyScale(flags.UncertaintyScale))
	}

	var m *metrics.LoaderMetrics
	if flags.MetricsOut != "" {
		m, err = metrics.NewLoaderMetrics(prometheus.NewRegistry())
		if err != nil {
			return errors.WrapResource("create", "metrics", "", err)
		}
		opts = append(opts, sedmap.WithMetrics(m))
	}

	only := cleanList(flags.Only)
	opts = append(opts, sedmap.WithAutoLoad(len(only) == 0))

	adapter, err := sedmap.New(ctx, cat, name, opts...)
	if err != nil {
		return err
	}
	if len(only) > 0 {
		if _, err := adapter.Load(ctx, only...); err != nil {
			return err
		}
	}

	if m != nil {
		if err := m.WriteTextfile(flags.MetricsOut); err != nil {
			return err
		}
		app.Logger().Debug().Str("path", flags.MetricsOut).Msg("Wrote metrics")
	}

	if err := render(cmd.OutOrStdout(), format, flags, adapter); err != nil {
		return err
	}
	if format == output.FormatTable && !flags.Reports {
		if alert := FailureAlert(adapter.Reports()); alert != nil {
			return alerts.NewWriter(cmd.ErrOrStderr()).Write(alert)
		}
	}
	return nil
}

// FailureAlert summarizes malformed and unfetchable records, or returns
// nil when every record loaded, was skipped or was absent.
func FailureAlert(reports []sedmap.LoadReport) *alerts.Alert {
	var details []string
	for _, r := range reports {
		for _, res := range r.Failed() {
			details = append(details, fmt.Sprintf("%s row %d (%s): %s", res.Table, res.Row, res.Outcome, res.Error()))
		}
	}
	if len(details) == 0 {
		return nil
	}
	noun := "records"
	if len(details) == 1 {
		noun = "record"
	}
	return alerts.NewWarning(fmt.Sprintf("%d %s could not be loaded (use --reports for details)", len(details), noun)).
		WithDetails(details...)
}

func render(w io.Writer, format output.Format, flags *Flags, a *sedmap.Adapter) error {
	s := a.SED()
	if s == nil {
		return errors.NewConfigError("load", "model is not a *sed.SED", nil)
	}

	if format == output.FormatJSON || format == output.FormatYAML {
		result := Result{
			Object:        a.Name(),
			RequestedName: a.RequestedName(),
			LoadID:        a.LoadID(),
			SED:           s,
		}
		if flags.Reports {
			result.Records = Records(a.Reports())
		}
		if flags.Diagnostics {
			result.Diagnostics = a.Diagnostics()
		}
		return output.NewFormatter(format).Format(w, result)
	}

	if _, err := fmt.Fprint(w, s.Summary()); err != nil {
		return err
	}
	tables := []output.Data{}
	if len(s.Photometry) > 0 {
		tables = append(tables, output.PhotometryToTableData(s.Photometry))
	}
	if len(s.Spectra) > 0 {
		tables = append(tables, output.SpectraToTableData(s.Spectra))
	}
	if flags.Reports {
		tables = append(tables, output.ReportsToTableData(a.Reports()))
	}
	if flags.Diagnostics {
		tables = append(tables, output.DiagnosticsToTableData(a.Diagnostics()))
	}

	formatter := output.NewFormatter(output.FormatTable)
	for _, t := range tables {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if err := formatter.Format(w, t); err != nil {
			return err
		}
	}
	return nil
}

// Records flattens load reports for output.
func Records(reports []sedmap.LoadReport) []Record {
	var out []Record
	for _, r := range reports {
		for _, res := range r.Results {
			out = append(out, Record{
				Loader:    r.Loader,
				Table:     res.Table,
				Row:       res.Row,
				Outcome:   res.Outcome,
				Reference: res.Reference.Bibcode,
				Status:    string(res.Reference.Status),
				Error:     res.Error(),
			})
		}
	}
	return out
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
