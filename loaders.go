package sedmap

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/references"
	"github.com/agentstation/sedmap/pkg/sed"
	"github.com/agentstation/sedmap/pkg/spectra"
	"github.com/agentstation/sedmap/pkg/units"
)

// Loader names, in the order LoadAll runs them.
const (
	LoaderCoords       = "coords"
	LoaderParallax     = "parallax"
	LoaderPhotometry   = "photometry"
	LoaderSpectralType = "spectral_type"
	LoaderSpectra      = "spectra"
)

// LoadOrder is the fixed loader sequence used by LoadAll.
var LoadOrder = []string{LoaderCoords, LoaderParallax, LoaderPhotometry, LoaderSpectralType, LoaderSpectra}

// LoadAll runs every loader in LoadOrder.
func (a *Adapter) LoadAll(ctx context.Context) []LoadReport {
	reports, _ := a.Load(ctx, LoadOrder...)
	return reports
}

// Load runs the named loaders in the order given. An unknown name is
// rejected before any loader runs.
func (a *Adapter) Load(ctx context.Context, loaders ...string) ([]LoadReport, error) {
	fns := make([]func(context.Context) LoadReport, 0, len(loaders))
	for _, name := range loaders {
		fn := a.loader(name)
		if fn == nil {
			return nil, errors.NewValidationError("loader", name, fmt.Sprintf("unknown loader %q", name))
		}
		fns = append(fns, fn)
	}
	reports := make([]LoadReport, 0, len(fns))
	for _, fn := range fns {
		reports = append(reports, fn(ctx))
	}
	stats := a.resolver.Stats()
	a.logger.Debug().Int("publications", stats.Items).Int64("hits", stats.Hits).
		Int64("misses", stats.Misses).Msg("Reference lookups")
	return reports, nil
}

func (a *Adapter) loader(name string) func(context.Context) LoadReport {
	switch name {
	case LoaderCoords:
		return a.LoadCoords
	case LoaderParallax:
		return a.LoadParallax
	case LoaderPhotometry:
		return a.LoadPhotometry
	case LoaderSpectralType:
		return a.LoadSpectralType
	case LoaderSpectra:
		return a.LoadSpectra
	default:
		return nil
	}
}

// run looks up table in the inventory and hands its rows to fn. A missing
// or empty table is diagnosed and recorded as absent.
func (a *Adapter) run(loader, table string, fn func(rows []catalogs.Row, rep *LoadReport)) LoadReport {
	start := time.Now()
	rep := LoadReport{Loader: loader, Table: table}

	rows, ok := a.inventory.Rows(table)
	if !ok || len(rows) == 0 {
		a.diagnose(zerolog.InfoLevel, table, NoRow, nil, "no %s rows, %s not loaded", table, loader)
		rep.add(RecordResult{Row: NoRow, Outcome: OutcomeAbsent})
	} else {
		rep.Rows = len(rows)
		fn(rows, &rep)
	}
	rep.Duration = time.Since(start)

	if r := a.config.recorder; r != nil {
		r.ObserveLoad(table, rep.Duration)
		for _, res := range rep.Results {
			r.RecordOutcome(table, string(res.Outcome))
		}
	}
	a.reports = append(a.reports, rep)
	a.config.hooks.triggerReport(rep)
	return rep
}

// resolve resolves a row's reference, diagnosing anything unresolved.
func (a *Adapter) resolve(ctx context.Context, table string, row int, publication string) references.Resolution {
	res := a.resolver.Resolve(ctx, publication)
	if !res.Resolved() {
		a.diagnose(zerolog.WarnLevel, table, row, res.Err, "reference %q unresolved (%s)", publication, res.Status)
	}
	return res
}

// LoadCoords sets the sky position from Sources when it holds exactly one
// row. Any other row count leaves the position unset.
func (a *Adapter) LoadCoords(ctx context.Context) LoadReport {
	return a.run(LoaderCoords, catalogs.TableSources, func(rows []catalogs.Row, rep *LoadReport) {
		if len(rows) != 1 {
			err := fmt.Errorf("expected exactly one row, found %d", len(rows))
			a.diagnose(zerolog.WarnLevel, catalogs.TableSources, NoRow, err, "coordinates not set")
			for i := range rows {
				rep.add(RecordResult{Row: i + 1, Outcome: OutcomeSkipped, Err: err})
			}
			return
		}

		row := rows[0]
		ra, okRA := row.Float(catalogs.ColRA)
		dec, okDec := row.Float(catalogs.ColDec)
		if !okRA || !okDec {
			err := errors.NewValidationError("ra/dec", nil, "ra and dec must be numeric")
			a.diagnose(zerolog.WarnLevel, catalogs.TableSources, 1, err, "coordinates not set")
			rep.add(RecordResult{Row: 1, Outcome: OutcomeMalformed, Err: err})
			return
		}
		coord, err := sed.NewSkyCoord(ra, dec)
		if err != nil {
			a.diagnose(zerolog.WarnLevel, catalogs.TableSources, 1, err, "coordinates not set")
			rep.add(RecordResult{Row: 1, Outcome: OutcomeMalformed, Err: err})
			return
		}
		a.model.SetSkyCoords(coord)
		rep.add(RecordResult{Row: 1, Outcome: OutcomeLoaded})
	})
}

// LoadParallax sets the parallax from every adopted Parallaxes row in
// turn, so the last adopted row wins.
func (a *Adapter) LoadParallax(ctx context.Context) LoadReport {
	return a.run(LoaderParallax, catalogs.TableParallaxes, func(rows []catalogs.Row, rep *LoadReport) {
		adopted := 0
		for i, row := range rows {
			n := i + 1
			if !row.Truthy(catalogs.ColAdopted) {
				rep.add(RecordResult{Row: n, Outcome: OutcomeSkipped})
				continue
			}
			value, ok := row.Float(catalogs.ColParallax)
			if !ok {
				err := errors.NewValidationError(catalogs.ColParallax, row.String(catalogs.ColParallax), "parallax must be numeric")
				a.diagnose(zerolog.WarnLevel, catalogs.TableParallaxes, n, err, "adopted parallax not loaded")
				rep.add(RecordResult{Row: n, Outcome: OutcomeMalformed, Err: err})
				continue
			}
			uncertainty := optionalFloat(row, catalogs.ColParallaxError)

			ref := a.resolve(ctx, catalogs.TableParallaxes, n, row.String(catalogs.ColReference))
			a.model.SetParallax(sed.Parallax{Value: value, Error: uncertainty, Reference: ref.Bibcode})
			rep.add(RecordResult{Row: n, Outcome: OutcomeLoaded, Reference: ref})
			adopted++
		}
		if adopted > 1 {
			a.logger.Debug().Str("table", catalogs.TableParallaxes).Int("adopted", adopted).Msg("Multiple adopted rows, last one kept")
		}
	})
}

// LoadPhotometry appends every Photometry row. An unresolved reference
// never drops the row; a row the model rejects is recorded as malformed.
func (a *Adapter) LoadPhotometry(ctx context.Context) LoadReport {
	return a.run(LoaderPhotometry, catalogs.TablePhotometry, func(rows []catalogs.Row, rep *LoadReport) {
		for i, row := range rows {
			n := i + 1
			ref := a.resolve(ctx, catalogs.TablePhotometry, n, row.String(catalogs.ColReference))
			point := sed.Photometry{
				Band:           a.config.normalizer.Normalize(row.String(catalogs.ColBand)),
				Magnitude:      optionalFloat(row, catalogs.ColMagnitude),
				MagnitudeError: optionalFloat(row, catalogs.ColMagnitudeError),
				Reference:      ref.Bibcode,
			}
			if err := a.model.AddPhotometry(point); err != nil {
				a.diagnose(zerolog.WarnLevel, catalogs.TablePhotometry, n, err, "photometry point rejected")
				rep.add(RecordResult{Row: n, Outcome: OutcomeMalformed, Reference: ref, Err: err})
				continue
			}
			rep.add(RecordResult{Row: n, Outcome: OutcomeLoaded, Reference: ref})
		}
	})
}

// LoadSpectralType sets the spectral type from every adopted
// SpectralTypes row in turn, so the last adopted row wins.
func (a *Adapter) LoadSpectralType(ctx context.Context) LoadReport {
	return a.run(LoaderSpectralType, catalogs.TableSpectralTypes, func(rows []catalogs.Row, rep *LoadReport) {
		adopted := 0
		for i, row := range rows {
			n := i + 1
			if !row.Truthy(catalogs.ColAdopted) {
				rep.add(RecordResult{Row: n, Outcome: OutcomeSkipped})
				continue
			}
			label := row.String(catalogs.ColSpectralType)
			if label == "" {
				err := errors.NewValidationError(catalogs.ColSpectralType, nil, "spectral type is empty")
				a.diagnose(zerolog.WarnLevel, catalogs.TableSpectralTypes, n, err, "adopted spectral type not loaded")
				rep.add(RecordResult{Row: n, Outcome: OutcomeMalformed, Err: err})
				continue
			}
			ref := a.resolve(ctx, catalogs.TableSpectralTypes, n, row.String(catalogs.ColReference))
			a.model.SetSpectralType(sed.SpectralType{Type: label, Reference: ref.Bibcode})
			rep.add(RecordResult{Row: n, Outcome: OutcomeLoaded, Reference: ref})
			adopted++
		}
		if adopted > 1 {
			a.logger.Debug().Str("table", catalogs.TableSpectralTypes).Int("adopted", adopted).Msg("Multiple adopted rows, last one kept")
		}
	})
}

// LoadSpectra fetches the payload of every Spectra row and appends it.
// A row that cannot be fetched or parsed is diagnosed and skipped; the
// remaining rows still load.
func (a *Adapter) LoadSpectra(ctx context.Context) LoadReport {
	return a.run(LoaderSpectra, catalogs.TableSpectra, func(rows []catalogs.Row, rep *LoadReport) {
		for i, row := range rows {
			res := a.loadSpectrum(ctx, i+1, row)
			if res.Err != nil {
				a.diagnose(zerolog.WarnLevel, catalogs.TableSpectra, res.Row, res.Err,
					"spectrum %s not loaded (%s)", describeSpectrum(row), res.Outcome)
			}
			rep.add(res)
		}
	})
}

func (a *Adapter) loadSpectrum(ctx context.Context, n int, row catalogs.Row) (res RecordResult) {
	res.Row = n
	defer func() {
		if p := recover(); p != nil {
			res.Outcome = OutcomeMalformed
			res.Err = fmt.Errorf("panic: %v", p)
		}
	}()

	specs, err := a.catalog.Spectra(ctx, a.spectrumQuery(row))
	spec := pickSpectrum(specs, catalogs.Location(row), err)
	if spec == nil {
		if err == nil {
			err = errors.NewNotFoundError("spectrum", describeSpectrum(row))
		}
		res.Outcome = classifySpectrumError(err)
		res.Err = err
		return res
	}
	if len(specs) > 1 || err != nil {
		a.logger.Debug().Int("row", n).Int("matches", len(specs)).AnErr("skipped", err).
			Str("url", spec.URL).Msg("Picked spectrum among key matches")
	}
	if err := spec.Validate(); err != nil {
		res.Outcome = OutcomeMalformed
		res.Err = err
		return res
	}

	res.Reference = a.resolve(ctx, catalogs.TableSpectra, n, row.String(catalogs.ColReference))

	flux := units.FixFluxUnits(spec.Flux)
	var uncertainty units.Quantity
	if spec.Uncertainty != nil {
		uncertainty = units.FixFluxUnits(*spec.Uncertainty)
	} else {
		uncertainty = flux.Scale(a.config.uncertaintyScale)
		a.diagnose(zerolog.WarnLevel, catalogs.TableSpectra, n, nil,
			"spectrum has no uncertainty, using flux x %g", a.config.uncertaintyScale)
	}

	err = a.model.AddSpectrum(sed.Spectrum{
		Wavelength:  spec.Wavelength,
		Flux:        flux,
		Uncertainty: uncertainty,
		Reference:   res.Reference.Bibcode,
		Regime:      row.String(catalogs.ColRegime),
		URL:         spec.URL,
	})
	if err != nil {
		res.Outcome = OutcomeMalformed
		res.Err = err
		return res
	}
	res.Outcome = OutcomeLoaded
	return res
}

// pickSpectrum chooses the spectrum for a row among the matches of its
// compound key. The match read from the row's own location wins. Without
// one, the first match is used only when every match decoded, so a row
// whose own payload failed is not credited with a sibling's spectrum.
func pickSpectrum(specs []*spectra.Spectrum, location string, readErr error) *spectra.Spectrum {
	for _, spec := range specs {
		if location != "" && spec.URL == location {
			return spec
		}
	}
	if len(specs) == 0 || readErr != nil {
		return nil
	}
	return specs[0]
}

// spectrumQuery filters Spectra by the row's compound key. Missing key
// columns match NULL.
func (a *Adapter) spectrumQuery(row catalogs.Row) catalogs.Query {
	source, _ := row.Value(catalogs.ColSource)
	if source == nil {
		source = a.name
	}
	regime, _ := row.Value(catalogs.ColRegime)
	reference, _ := row.Value(catalogs.ColReference)
	observed, _ := row.Value(catalogs.ColObservationDate)
	return catalogs.Query{
		Table: catalogs.TableSpectra,
		Filters: []catalogs.Filter{
			catalogs.Eq(catalogs.ColSource, source),
			catalogs.Eq(catalogs.ColRegime, regime),
			catalogs.Eq(catalogs.ColReference, reference),
			catalogs.Eq(catalogs.ColObservationDate, observed),
		},
	}
}

// classifySpectrumError separates unreadable payloads from payloads that
// could not be retrieved.
func classifySpectrumError(err error) Outcome {
	var perr *errors.ParseError
	if errors.As(err, &perr) || errors.IsUnsupported(err) || errors.IsValidationError(err) {
		return OutcomeMalformed
	}
	return OutcomeFetchFailed
}

func describeSpectrum(row catalogs.Row) string {
	return fmt.Sprintf("%s/%s/%s", row.String(catalogs.ColRegime), row.String(catalogs.ColReference), row.String(catalogs.ColObservationDate))
}

// optionalFloat returns column as a float64, or NaN when it is missing or
// not numeric.
func optionalFloat(row catalogs.Row, column string) float64 {
	if v, ok := row.Float(column); ok {
		return v
	}
	return math.NaN()
}
