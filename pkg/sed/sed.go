package sed

import (
	"fmt"
	"math"
	"strings"
)

// SED is the concrete composite model for one object.
type SED struct {
	Name         string        `json:"name" yaml:"name"`
	SkyCoords    *SkyCoord     `json:"sky_coords,omitempty" yaml:"sky_coords,omitempty"`
	Parallax     *Parallax     `json:"parallax,omitempty" yaml:"parallax,omitempty"`
	SpectralType *SpectralType `json:"spectral_type,omitempty" yaml:"spectral_type,omitempty"`
	Photometry   []Photometry  `json:"photometry" yaml:"photometry"`
	Spectra      []Spectrum    `json:"spectra" yaml:"spectra"`
}

var _ Model = (*SED)(nil)

// New returns an empty SED for name.
func New(name string) *SED {
	return &SED{Name: name, Photometry: []Photometry{}, Spectra: []Spectrum{}}
}

// SetSkyCoords implements Model.
func (s *SED) SetSkyCoords(c SkyCoord) {
	s.SkyCoords = &c
}

// SetParallax implements Model.
func (s *SED) SetParallax(p Parallax) {
	s.Parallax = &p
}

// SetSpectralType implements Model.
func (s *SED) SetSpectralType(t SpectralType) {
	s.SpectralType = &t
}

// AddPhotometry implements Model.
func (s *SED) AddPhotometry(p Photometry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.Photometry = append(s.Photometry, p)
	return nil
}

// AddSpectrum implements Model.
func (s *SED) AddSpectrum(sp Spectrum) error {
	if err := sp.Validate(); err != nil {
		return err
	}
	s.Spectra = append(s.Spectra, sp)
	return nil
}

// Distance returns the distance in parsecs implied by the parallax.
func (s *SED) Distance() (float64, bool) {
	if s.Parallax == nil || !(s.Parallax.Value > 0) {
		return math.NaN(), false
	}
	return 1000 / s.Parallax.Value, true
}

// Summary renders a short human-readable description.
func (s *SED) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Name)
	if s.SkyCoords != nil {
		fmt.Fprintf(&b, "  position:      %s (%.6f, %.6f deg)\n", s.SkyCoords, s.SkyCoords.RA, s.SkyCoords.Dec)
	}
	if s.Parallax != nil {
		fmt.Fprintf(&b, "  parallax:      %.3f +/- %.3f mas%s\n", s.Parallax.Value, s.Parallax.Error, cite(s.Parallax.Reference))
		if d, ok := s.Distance(); ok {
			fmt.Fprintf(&b, "  distance:      %.2f pc\n", d)
		}
	}
	if s.SpectralType != nil {
		fmt.Fprintf(&b, "  spectral type: %s%s\n", s.SpectralType.Type, cite(s.SpectralType.Reference))
	}
	fmt.Fprintf(&b, "  photometry:    %d points\n", len(s.Photometry))
	fmt.Fprintf(&b, "  spectra:       %d\n", len(s.Spectra))
	return b.String()
}

func cite(ref string) string {
	if ref == "" {
		return ""
	}
	return " [" + ref + "]"
}
