// Package units implements the small unit model sedmap needs: parsing the
// unit strings found in catalog spectra, rendering them canonically and
// correcting the Ampere/Angstrom data-entry error in flux units.
package units

import (
	"math"
	"strconv"
	"strings"
)

// Base symbols with special handling.
const (
	// Ampere is the SI current base. In flux units it is almost always a
	// mistyped Angstrom.
	Ampere = "A"

	// Angstrom is the canonical wavelength symbol.
	Angstrom = "Angstrom"
)

// AngstromPerAmpere is the numeric factor applied when an Ampere base is
// relabelled as Angstrom. The relabel itself is the correction.
const AngstromPerAmpere = 1.0

// Term is one base symbol raised to an integer power.
type Term struct {
	Symbol string
	Power  int
}

// Unit is a product of terms with an optional numeric scale.
// The zero value is dimensionless.
type Unit struct {
	scale float64
	terms []Term
}

// Dimensionless is the unit of plain numbers.
var Dimensionless = Unit{}

// Scale returns the numeric scale of the unit (1 when unscaled).
func (u Unit) Scale() float64 {
	if u.scale == 0 {
		return 1
	}
	return u.scale
}

// IsDimensionless reports whether the unit has no terms and no scale.
func (u Unit) IsDimensionless() bool {
	return len(u.terms) == 0 && u.Scale() == 1
}

// HasBase reports whether symbol appears among the unit's terms.
func (u Unit) HasBase(symbol string) bool {
	for _, t := range u.terms {
		if t.Symbol == symbol {
			return true
		}
	}
	return false
}

// Power returns the power of symbol in the unit, 0 when absent.
func (u Unit) Power(symbol string) int {
	for _, t := range u.terms {
		if t.Symbol == symbol {
			return t.Power
		}
	}
	return 0
}

// Equal reports whether two units render identically.
func (u Unit) Equal(other Unit) bool {
	return u.String() == other.String()
}

// Replace returns a copy of u with every from term renamed to to.
// Powers of terms that collide after the rename are summed.
func (u Unit) Replace(from, to string) Unit {
	out := Unit{scale: u.scale}
	for _, t := range u.terms {
		if t.Symbol == from {
			t.Symbol = to
		}
		out = out.mul(t)
	}
	return out
}

// mul multiplies u by a single term, merging powers of the same symbol.
func (u Unit) mul(t Term) Unit {
	terms := make([]Term, 0, len(u.terms)+1)
	merged := false
	for _, existing := range u.terms {
		if existing.Symbol == t.Symbol {
			existing.Power += t.Power
			merged = true
		}
		if existing.Power != 0 {
			terms = append(terms, existing)
		}
	}
	if !merged && t.Power != 0 {
		terms = append(terms, t)
	}
	return Unit{scale: u.scale, terms: terms}
}

// times multiplies u by other raised to sign (+1 or -1).
func (u Unit) times(other Unit, sign int) Unit {
	out := u
	if other.scale != 0 {
		out.scale = u.Scale() * math.Pow(other.Scale(), float64(sign))
	}
	for _, t := range other.terms {
		out = out.mul(Term{Symbol: t.Symbol, Power: t.Power * sign})
	}
	return out
}

// String renders the unit as "num / (den ...)", e.g. "erg / (Angstrom cm2 s)".
func (u Unit) String() string {
	var num, den []string
	for _, t := range u.terms {
		switch {
		case t.Power > 0:
			num = append(num, termString(t.Symbol, t.Power))
		case t.Power < 0:
			den = append(den, termString(t.Symbol, -t.Power))
		}
	}

	var b strings.Builder
	if s := u.Scale(); s != 1 {
		b.WriteString(strconv.FormatFloat(s, 'g', -1, 64))
		if len(num) > 0 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Join(num, " "))

	if len(den) == 0 {
		return b.String()
	}
	if b.Len() == 0 {
		b.WriteString("1")
	}
	b.WriteString(" / ")
	if len(den) == 1 {
		b.WriteString(den[0])
	} else {
		b.WriteString("(" + strings.Join(den, " ") + ")")
	}
	return b.String()
}

func termString(symbol string, power int) string {
	if power == 1 {
		return symbol
	}
	return symbol + strconv.Itoa(power)
}

// MarshalText renders the unit for JSON and YAML encoders.
func (u Unit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText parses a unit string.
func (u *Unit) UnmarshalText(text []byte) error {
	parsed, err := ParseUnit(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// MustParse is like ParseUnit but panics on error. Intended for constants and tests.
func MustParse(s string) Unit {
	u, err := ParseUnit(s)
	if err != nil {
		panic(err)
	}
	return u
}
