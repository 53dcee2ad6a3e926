package spectra

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/astrogo/fitsio"

	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/units"
)

// Column names recognised in FITS spectrum tables, matched case-insensitively.
var (
	wavelengthColumns  = []string{"wavelength", "wave", "lambda", "wavelen"}
	fluxColumns        = []string{"flux", "flux_density", "fnu", "flam"}
	uncertaintyColumns = []string{"uncertainty", "flux_uncertainty", "flux_error", "error", "err", "sigma"}
)

// decodeFITS reads the first HDU that holds a spectrum: a binary or ASCII
// table with one sample per row, or a one-dimensional image whose
// wavelength axis follows the CRVAL1, CDELT1 and CRPIX1 keywords.
func decodeFITS(name string, data []byte) (*Spectrum, error) {
	f, err := fitsio.Open(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WrapParse(string(FormatFITS), name, err)
	}
	defer f.Close() //nolint:errcheck

	for _, hdu := range f.HDUs() {
		var (
			spec *Spectrum
			ok   bool
		)
		switch hdu := hdu.(type) {
		case *fitsio.Table:
			spec, ok, err = fitsTable(hdu)
		case fitsio.Image:
			spec, ok, err = fitsImage(hdu)
		}
		if err != nil {
			return nil, errors.WrapParse(string(FormatFITS), name, err)
		}
		if ok {
			return spec, nil
		}
	}
	return nil, errors.NewParseError(string(FormatFITS), name, "no spectrum table or 1-D image", errors.ErrInvalidInput)
}

// fitsTable reads a table HDU. ok is false when the table lacks wavelength
// or flux columns.
func fitsTable(t *fitsio.Table) (*Spectrum, bool, error) {
	cols := t.Cols()
	wi, fi, ui := findColumn(cols, wavelengthColumns), findColumn(cols, fluxColumns), findColumn(cols, uncertaintyColumns)
	if wi < 0 || fi < 0 {
		return nil, false, nil
	}

	targets := make([]any, len(cols))
	for i, col := range cols {
		if targets[i] = cell(col.Format); targets[i] == nil {
			return nil, false, fmt.Errorf("column %s: unsupported format %q", col.Name, col.Format)
		}
	}

	var p payload
	rows, err := t.Read(0, t.NumRows())
	if err != nil {
		return nil, false, err
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return nil, false, err
		}
		for _, c := range []struct {
			index int
			dst   *[]float64
		}{{wi, &p.Wavelength}, {fi, &p.Flux}, {ui, &p.Uncertainty}} {
			if c.index < 0 {
				continue
			}
			v, ok := number(targets[c.index])
			if !ok {
				return nil, false, fmt.Errorf("column %s is not numeric", cols[c.index].Name)
			}
			*c.dst = append(*c.dst, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	p.WavelengthUnit = strings.TrimSpace(cols[wi].Unit)
	p.FluxUnit = strings.TrimSpace(cols[fi].Unit)
	if ui >= 0 {
		p.UncertaintyUnit = strings.TrimSpace(cols[ui].Unit)
	}
	spec, err := p.spectrum()
	return spec, err == nil, err
}

// fitsImage reads a one-dimensional image HDU. ok is false for empty or
// multi-dimensional images.
func fitsImage(img fitsio.Image) (*Spectrum, bool, error) {
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) != 1 || axes[0] == 0 {
		return nil, false, nil
	}
	n := axes[0]

	flux, err := readPixels(img, hdr.Bitpix(), n)
	if err != nil {
		return nil, false, err
	}

	start, ok := headerFloat(hdr, "CRVAL1")
	if !ok {
		return nil, false, fmt.Errorf("1-D image has no CRVAL1")
	}
	step, ok := headerFloat(hdr, "CDELT1")
	if !ok {
		if step, ok = headerFloat(hdr, "CD1_1"); !ok {
			return nil, false, fmt.Errorf("1-D image has no CDELT1 or CD1_1")
		}
	}
	ref, ok := headerFloat(hdr, "CRPIX1")
	if !ok {
		ref = 1
	}
	wavelength := make([]float64, n)
	for i := range wavelength {
		wavelength[i] = start + (float64(i+1)-ref)*step
	}

	wu := headerString(hdr, "CUNIT1")
	if wu == "" {
		wu = units.Angstrom
	}
	p := payload{
		WavelengthUnit: wu,
		FluxUnit:       headerString(hdr, "BUNIT"),
		Wavelength:     wavelength,
		Flux:           flux,
	}
	spec, err := p.spectrum()
	return spec, err == nil, err
}

// readPixels reads n pixels stored with the given BITPIX as float64.
func readPixels(img fitsio.Image, bitpix, n int) ([]float64, error) {
	out := make([]float64, n)
	switch bitpix {
	case -64:
		if err := img.Read(&out); err != nil {
			return nil, err
		}
		return out, nil
	case -32:
		raw := make([]float32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case 32:
		raw := make([]int32, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	case 16:
		raw := make([]int16, n)
		if err := img.Read(&raw); err != nil {
			return nil, err
		}
		for i, v := range raw {
			out[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
	return out, nil
}

func findColumn(cols []fitsio.Column, names []string) int {
	for _, want := range names {
		for i, col := range cols {
			if strings.EqualFold(strings.TrimSpace(col.Name), want) {
				return i
			}
		}
	}
	return -1
}

// cell returns a scan target for a column of the given TFORM, or nil when
// the column does not hold one scalar per row.
func cell(format string) any {
	format = strings.TrimSpace(format)
	code := strings.TrimLeft(format, "0123456789")
	repeat := strings.TrimSuffix(format, code)
	if code == "A" {
		return new(string)
	}
	if repeat != "" && repeat != "1" {
		return nil
	}
	switch code {
	case "D":
		return new(float64)
	case "E":
		return new(float32)
	case "K":
		return new(int64)
	case "J":
		return new(int32)
	case "I":
		return new(int16)
	case "B":
		return new(uint8)
	case "L":
		return new(bool)
	}
	return nil
}

func number(target any) (float64, bool) {
	switch v := target.(type) {
	case *float64:
		return *v, true
	case *float32:
		return float64(*v), true
	case *int64:
		return float64(*v), true
	case *int32:
		return float64(*v), true
	case *int16:
		return float64(*v), true
	case *uint8:
		return float64(*v), true
	}
	return 0, false
}

func headerFloat(hdr *fitsio.Header, key string) (float64, bool) {
	card := hdr.Get(key)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func headerString(hdr *fitsio.Header, key string) string {
	card := hdr.Get(key)
	if card == nil {
		return ""
	}
	s, _ := card.Value.(string)
	return strings.TrimSpace(s)
}
