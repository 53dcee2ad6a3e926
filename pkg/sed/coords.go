package sed

import (
	"fmt"
	"math"

	"github.com/agentstation/sedmap/pkg/errors"
)

// FrameICRS is the default reference frame.
const FrameICRS = "icrs"

// SkyCoord is a sky position in degrees.
type SkyCoord struct {
	RA    float64 `json:"ra" yaml:"ra"`
	Dec   float64 `json:"dec" yaml:"dec"`
	Frame string  `json:"frame" yaml:"frame"`
}

// NewSkyCoord returns an ICRS position. RA wraps into [0, 360); dec must
// lie in [-90, 90].
func NewSkyCoord(ra, dec float64) (SkyCoord, error) {
	wrapped := WrapRA(ra)
	if math.IsNaN(wrapped) {
		return SkyCoord{}, errors.NewValidationError("ra", ra, fmt.Sprintf("ra %v is not finite", ra))
	}
	if math.IsNaN(dec) || dec < -90 || dec > 90 {
		return SkyCoord{}, errors.NewValidationError("dec", dec, fmt.Sprintf("dec %v out of range [-90, 90]", dec))
	}
	return SkyCoord{RA: wrapped, Dec: dec, Frame: FrameICRS}, nil
}

// WrapRA folds an angle in degrees into [0, 360). NaN and infinities
// yield NaN.
func WrapRA(ra float64) float64 {
	wrapped := math.Mod(ra, 360)
	if wrapped < 0 {
		wrapped += 360
	}
	if wrapped == 360 {
		// -1e-14 + 360 rounds up.
		wrapped = 0
	}
	return wrapped
}

// String renders the position sexagesimally, e.g. "00h41m35.39s -56d21m12.5s".
func (c SkyCoord) String() string {
	h, m, s := sexagesimal(c.RA/15, 100)
	sign := "+"
	if c.Dec < 0 {
		sign = "-"
	}
	d, dm, ds := sexagesimal(math.Abs(c.Dec), 10)
	return fmt.Sprintf("%02dh%02dm%05.2fs %s%02dd%02dm%04.1fs", h, m, s, sign, d, dm, ds)
}

// sexagesimal splits v into whole units, minutes and seconds. Seconds are
// rounded to 1/precision before splitting so they never print as 60.
func sexagesimal(v, precision float64) (int, int, float64) {
	total := math.Round(v*3600*precision) / precision
	whole := int(total / 3600)
	rem := total - float64(whole)*3600
	minutes := int(rem / 60)
	seconds := rem - float64(minutes)*60
	return whole, minutes, seconds
}
