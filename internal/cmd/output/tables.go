package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/agentstation/sedmap"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/references"
	"github.com/agentstation/sedmap/pkg/sed"
)

// RowsToTableData renders catalog rows with one column per field. Columns
// are the sorted union of every row's fields.
func RowsToTableData(title string, rows []catalogs.Row) Data {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for _, col := range row.Columns() {
			if !seen[col] {
				seen[col] = true
				headers = append(headers, col)
			}
		}
	}
	sort.Strings(headers)

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, col := range headers {
			cells[i] = row.String(col)
		}
		out = append(out, cells)
	}
	return Data{Title: title, Headers: headers, Rows: out}
}

// PhotometryToTableData renders an SED's photometry points.
func PhotometryToTableData(points []sed.Photometry) Data {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{p.Band, number(p.Magnitude, 3), number(p.MagnitudeError, 3), p.Reference})
	}
	return Data{
		Title:           "Photometry",
		Headers:         []string{"BAND", "MAG", "ERROR", "REFERENCE"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
}

// SpectraToTableData renders an SED's spectra.
func SpectraToTableData(specs []sed.Spectrum) Data {
	rows := make([][]string, 0, len(specs))
	for _, s := range specs {
		lo, hi := s.Range()
		rows = append(rows, []string{
			s.Regime,
			strconv.Itoa(s.Wavelength.Len()),
			fmt.Sprintf("%s - %s %s", number(lo, 4), number(hi, 4), s.Wavelength.Unit),
			s.Flux.Unit.String(),
			s.Reference,
		})
	}
	return Data{
		Title:           "Spectra",
		Headers:         []string{"REGIME", "POINTS", "RANGE", "FLUX UNIT", "REFERENCE"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft},
	}
}

// ReportsToTableData renders one line per record result.
func ReportsToTableData(reports []sedmap.LoadReport) Data {
	var rows [][]string
	for _, r := range reports {
		for _, res := range r.Results {
			row := "-"
			if res.Row != sedmap.NoRow {
				row = strconv.Itoa(res.Row)
			}
			rows = append(rows, []string{r.Loader, res.Table, row, string(res.Outcome), string(res.Reference.Status), res.Error()})
		}
	}
	return Data{
		Title:   "Records",
		Headers: []string{"LOADER", "TABLE", "ROW", "OUTCOME", "REFERENCE", "ERROR"},
		Rows:    rows,
	}
}

// DiagnosticsToTableData renders diagnostics in emission order.
func DiagnosticsToTableData(diags []sedmap.Diagnostic) Data {
	rows := make([][]string, 0, len(diags))
	for _, d := range diags {
		row := ""
		if d.Row != sedmap.NoRow {
			row = strconv.Itoa(d.Row)
		}
		msg := d.Message
		if d.Err != nil {
			msg += ": " + d.Err.Error()
		}
		rows = append(rows, []string{d.Level.String(), d.Table, row, msg})
	}
	return Data{
		Title:   "Diagnostics",
		Headers: []string{"LEVEL", "TABLE", "ROW", "MESSAGE"},
		Rows:    rows,
	}
}

// ResolutionsToTableData renders reference resolutions.
func ResolutionsToTableData(res []references.Resolution) Data {
	rows := make([][]string, 0, len(res))
	for _, r := range res {
		rows = append(rows, []string{r.Publication, r.Bibcode, string(r.Status)})
	}
	return Data{
		Headers: []string{"PUBLICATION", "BIBCODE", "STATUS"},
		Rows:    rows,
	}
}

func number(v float64, prec int) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
