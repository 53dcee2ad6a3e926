// Package spectra fetches and decodes spectrum payloads referenced by
// catalog rows. A payload is located by URL (local path, file://, http(s)://
// or s3://) and decoded by extension into a Spectrum of unit-bearing arrays.
package spectra

import (
	"fmt"

	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/units"
)

// Spectrum is a wavelength/flux series with an optional uncertainty series.
type Spectrum struct {
	Wavelength  units.Quantity  `json:"wavelength" yaml:"wavelength"`
	Flux        units.Quantity  `json:"flux" yaml:"flux"`
	Uncertainty *units.Quantity `json:"uncertainty,omitempty" yaml:"uncertainty,omitempty"`
	Source      string          `json:"source,omitempty" yaml:"source,omitempty"`
	URL         string          `json:"url,omitempty" yaml:"url,omitempty"`
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return s.Wavelength.Len()
}

// Validate checks that the spectrum has samples and that every series has
// the same length.
func (s *Spectrum) Validate() error {
	if s == nil {
		return errors.NewValidationError("spectrum", nil, "nil spectrum")
	}
	n := s.Wavelength.Len()
	if n == 0 {
		return errors.NewValidationError("wavelength", nil, "no samples")
	}
	if s.Flux.Len() != n {
		return errors.NewValidationError("flux", s.Flux.Len(),
			fmt.Sprintf("length %d does not match wavelength length %d", s.Flux.Len(), n))
	}
	if s.Uncertainty != nil && s.Uncertainty.Len() != n {
		return errors.NewValidationError("uncertainty", s.Uncertainty.Len(),
			fmt.Sprintf("length %d does not match wavelength length %d", s.Uncertainty.Len(), n))
	}
	return nil
}
