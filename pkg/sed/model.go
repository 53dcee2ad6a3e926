// Package sed holds the composite Spectral Energy Distribution model that
// catalog loaders populate.
//
// Loaders write through the Model interface only: three scalar setters that
// overwrite and two append operations that may reject malformed input.
// SED is the concrete implementation.
package sed

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/units"
)

// Model is the write surface loaders use to populate an SED.
type Model interface {
	SetSkyCoords(c SkyCoord)
	SetParallax(p Parallax)
	SetSpectralType(s SpectralType)
	AddPhotometry(p Photometry) error
	AddSpectrum(s Spectrum) error
}

// Parallax is a trigonometric parallax in milliarcseconds.
type Parallax struct {
	Value     float64 `json:"value" yaml:"value"`
	Error     float64 `json:"error" yaml:"error"`
	Reference string  `json:"reference" yaml:"reference"`
}

// MarshalJSON encodes a missing error as null.
func (p Parallax) MarshalJSON() ([]byte, error) {
	type plain Parallax
	return json.Marshal(struct {
		plain
		Error *float64 `json:"error"`
	}{plain(p), finite(p.Error)})
}

// SpectralType is a spectral classification string such as "M8.0".
type SpectralType struct {
	Type      string `json:"type" yaml:"type"`
	Reference string `json:"reference" yaml:"reference"`
}

// Photometry is one magnitude measurement.
type Photometry struct {
	Band           string  `json:"band" yaml:"band"`
	Magnitude      float64 `json:"magnitude" yaml:"magnitude"`
	MagnitudeError float64 `json:"magnitude_error" yaml:"magnitude_error"`
	Reference      string  `json:"reference" yaml:"reference"`
}

// MarshalJSON encodes a missing magnitude error as null.
func (p Photometry) MarshalJSON() ([]byte, error) {
	type plain Photometry
	return json.Marshal(struct {
		plain
		MagnitudeError *float64 `json:"magnitude_error"`
	}{plain(p), finite(p.MagnitudeError)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Validate rejects entries that cannot be placed on an SED.
func (p Photometry) Validate() error {
	if strings.TrimSpace(p.Band) == "" {
		return errors.NewValidationError("band", p.Band, "band is required")
	}
	if math.IsNaN(p.Magnitude) || math.IsInf(p.Magnitude, 0) {
		return errors.NewValidationError("magnitude", p.Magnitude, fmt.Sprintf("magnitude must be finite, got %v", p.Magnitude))
	}
	if p.MagnitudeError < 0 || math.IsInf(p.MagnitudeError, 0) {
		return errors.NewValidationError("magnitude_error", p.MagnitudeError, fmt.Sprintf("invalid magnitude error %v", p.MagnitudeError))
	}
	return nil
}

// Spectrum is one spectrum placed on the SED.
type Spectrum struct {
	Wavelength  units.Quantity `json:"wavelength" yaml:"wavelength"`
	Flux        units.Quantity `json:"flux" yaml:"flux"`
	Uncertainty units.Quantity `json:"uncertainty" yaml:"uncertainty"`
	Reference   string         `json:"reference" yaml:"reference"`
	Regime      string         `json:"regime,omitempty" yaml:"regime,omitempty"`
	URL         string         `json:"url,omitempty" yaml:"url,omitempty"`
}

// Validate checks that every series is populated and equally long.
func (s Spectrum) Validate() error {
	n := s.Wavelength.Len()
	if n == 0 {
		return errors.NewValidationError("wavelength", nil, "no samples")
	}
	if s.Flux.Len() != n {
		return errors.NewValidationError("flux", s.Flux.Len(), fmt.Sprintf("expected %d samples, got %d", n, s.Flux.Len()))
	}
	if s.Uncertainty.Len() != n {
		return errors.NewValidationError("uncertainty", s.Uncertainty.Len(), fmt.Sprintf("expected %d samples, got %d", n, s.Uncertainty.Len()))
	}
	return nil
}

// Range returns the first and last wavelength.
func (s Spectrum) Range() (float64, float64) {
	if s.Wavelength.Len() == 0 {
		return math.NaN(), math.NaN()
	}
	return s.Wavelength.Values[0], s.Wavelength.Values[s.Wavelength.Len()-1]
}
