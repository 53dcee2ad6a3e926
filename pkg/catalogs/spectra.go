package catalogs

import (
	"context"

	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/spectra"
)

// Location returns the payload location of a Spectra row: access_url, or
// the legacy spectrum column when access_url is empty.
func Location(row Row) string {
	if location := row.String(ColAccessURL); location != "" {
		return location
	}
	return row.String(ColSpectrum)
}

// ReadSpectra resolves the payload location of every row through reader,
// in row order. A row that cannot be read does not stop the others: the
// spectra that decoded are returned together with the joined errors of
// the rows that did not.
func ReadSpectra(ctx context.Context, reader *spectra.Reader, rows []Row) ([]*spectra.Spectrum, error) {
	out := make([]*spectra.Spectrum, 0, len(rows))
	var errs []error
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, errors.Join(append(errs, err)...)
		}
		location := Location(row)
		if location == "" {
			errs = append(errs, errors.NewValidationError(ColAccessURL, nil, "spectrum row has no payload location"))
			continue
		}
		spec, err := reader.Read(ctx, location)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		spec.Source = row.String(ColSource)
		out = append(out, spec)
	}
	return out, errors.Join(errs...)
}
