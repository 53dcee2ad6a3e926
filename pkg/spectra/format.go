package spectra

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/units"
)

// Format is a payload encoding.
type Format string

// Supported and recognised formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatFITS Format = "fits"
)

// Supported reports whether Decode can parse the format.
func (f Format) Supported() bool {
	return f == FormatText || f == FormatJSON || f == FormatYAML || f == FormatFITS
}

// DetectFormat maps a file name or URL path to a Format by extension.
func DetectFormat(name string) (Format, error) {
	lower := strings.ToLower(name)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	lower = strings.TrimSuffix(lower, ".gz")
	switch path.Ext(lower) {
	case ".txt", ".dat", ".csv", ".tsv", ".ascii":
		return FormatText, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".fits", ".fit", ".fts":
		return FormatFITS, nil
	}
	return "", errors.NewParseError("spectrum", name, "unrecognised extension", errors.ErrUnsupported)
}

// Decode parses data according to the extension of name.
func Decode(name string, data []byte) (*Spectrum, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var spec *Spectrum
	switch format {
	case FormatText:
		spec, err = decodeText(name, data)
	case FormatJSON:
		spec, err = decodeStructured(name, data, FormatJSON)
	case FormatYAML:
		spec, err = decodeStructured(name, data, FormatYAML)
	case FormatFITS:
		spec, err = decodeFITS(name, data)
	default:
		return nil, errors.NewParseError(string(format), name, "format not supported", errors.ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// payload is the structured (JSON/YAML) spectrum document.
type payload struct {
	WavelengthUnit  string    `json:"wavelength_unit" yaml:"wavelength_unit"`
	FluxUnit        string    `json:"flux_unit" yaml:"flux_unit"`
	UncertaintyUnit string    `json:"uncertainty_unit,omitempty" yaml:"uncertainty_unit,omitempty"`
	Wavelength      []float64 `json:"wavelength" yaml:"wavelength"`
	Flux            []float64 `json:"flux" yaml:"flux"`
	Uncertainty     []float64 `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
}

func decodeStructured(name string, data []byte, format Format) (*Spectrum, error) {
	var p payload
	var err error
	if format == FormatJSON {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, errors.WrapParse(string(format), name, err)
	}
	return p.spectrum()
}

func (p payload) spectrum() (*Spectrum, error) {
	wu, err := units.ParseUnit(p.WavelengthUnit)
	if err != nil {
		return nil, err
	}
	fu, err := units.ParseUnit(p.FluxUnit)
	if err != nil {
		return nil, err
	}
	spec := &Spectrum{
		Wavelength: units.NewQuantity(p.Wavelength, wu),
		Flux:       units.NewQuantity(p.Flux, fu),
	}
	if len(p.Uncertainty) > 0 {
		uu := fu
		if p.UncertaintyUnit != "" {
			if uu, err = units.ParseUnit(p.UncertaintyUnit); err != nil {
				return nil, err
			}
		}
		q := units.NewQuantity(p.Uncertainty, uu)
		spec.Uncertainty = &q
	}
	return spec, nil
}

// decodeText reads two or three numeric columns (wavelength, flux,
// uncertainty) separated by whitespace, commas or tabs. Units come from
// "# wavelength_unit: um" style comments. A single non-numeric header row
// before the first sample is skipped.
func decodeText(name string, data []byte) (*Spectrum, error) {
	var p payload
	sawData := false
	sawHeader := false
	columns := 0

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			p.applyComment(line[1:])
			continue
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == ';'
		})
		values, err := parseFloats(fields)
		if err != nil {
			if !sawData && !sawHeader {
				sawHeader = true
				continue
			}
			return nil, &errors.ParseError{Format: string(FormatText), File: name, Line: lineNo, Message: err.Error(), Err: errors.ErrInvalidInput}
		}
		if len(values) < 2 {
			return nil, &errors.ParseError{Format: string(FormatText), File: name, Line: lineNo,
				Message: fmt.Sprintf("expected at least 2 columns, got %d", len(values)), Err: errors.ErrInvalidInput}
		}
		if columns == 0 {
			columns = len(values)
		}
		if len(values) != columns {
			return nil, &errors.ParseError{Format: string(FormatText), File: name, Line: lineNo,
				Message: fmt.Sprintf("expected %d columns, got %d", columns, len(values)), Err: errors.ErrInvalidInput}
		}

		sawData = true
		p.Wavelength = append(p.Wavelength, values[0])
		p.Flux = append(p.Flux, values[1])
		if columns > 2 {
			p.Uncertainty = append(p.Uncertainty, values[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapParse(string(FormatText), name, err)
	}
	return p.spectrum()
}

// applyComment picks unit declarations out of a header comment.
func (p *payload) applyComment(comment string) {
	key, value, ok := strings.Cut(comment, ":")
	if !ok {
		key, value, ok = strings.Cut(comment, "=")
	}
	if !ok {
		return
	}
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "wavelength_unit", "wave_unit", "wavelength unit":
		p.WavelengthUnit = value
	case "flux_unit", "flux unit":
		p.FluxUnit = value
	case "uncertainty_unit", "flux_uncertainty_unit", "error_unit":
		p.UncertaintyUnit = value
	}
}

func parseFloats(fields []string) ([]float64, error) {
	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		values = append(values, v)
	}
	return values, nil
}
