package units

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/agentstation/sedmap/pkg/errors"
)

// symbols maps every accepted spelling to its canonical symbol.
var symbols = map[string]string{
	// wavelength
	"Angstrom": Angstrom, "angstrom": Angstrom, "AA": Angstrom, "Å": Angstrom,
	"nm": "nm", "um": "um", "micron": "um", "mm": "mm", "cm": "cm", "m": "m", "km": "km",
	// current (almost always a typo for Angstrom in flux units)
	"A": Ampere,
	// energy, power, time, frequency
	"erg": "erg", "J": "J", "W": "W", "mW": "mW",
	"s": "s", "yr": "yr", "Hz": "Hz", "GHz": "GHz",
	// flux density
	"Jy": "Jy", "mJy": "mJy", "uJy": "uJy",
	// angles and distances
	"deg": "deg", "rad": "rad", "arcsec": "arcsec", "mas": "mas", "sr": "sr", "pc": "pc",
	// counts and logarithmic units
	"mag": "mag", "dex": "dex", "ct": "ct", "count": "ct", "counts": "ct",
	"adu": "adu", "photon": "photon", "electron": "electron",
}

// ParseUnit parses an astropy-style unit string such as "erg / (A cm2 s)",
// "erg s-1 cm-2 A-1", "W m^-2 um^-1" or "erg/s/cm2/Angstrom".
// The empty string is dimensionless.
func ParseUnit(s string) (Unit, error) {
	p := &parser{src: []rune(strings.TrimSpace(s)), raw: s}
	if len(p.src) == 0 {
		return Dimensionless, nil
	}
	u, err := p.expr()
	if err != nil {
		return Unit{}, err
	}
	if p.pos < len(p.src) {
		return Unit{}, p.errorf("unexpected %q", string(p.src[p.pos]))
	}
	return u, nil
}

type parser struct {
	src []rune
	pos int
	raw string
}

func (p *parser) errorf(format string, args ...any) error {
	return &errors.ParseError{
		Format:  "unit",
		Message: fmt.Sprintf("%s in %q", fmt.Sprintf(format, args...), p.raw),
		Err:     errors.ErrInvalidInput,
	}
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// skip consumes whitespace and explicit multiplication separators.
func (p *parser) skip() {
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		switch {
		case unicode.IsSpace(r), r == '*' && !p.at("**"):
			p.pos++
		case r == '.' && !p.digitAt(p.pos+1):
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) at(prefix string) bool {
	return strings.HasPrefix(string(p.src[p.pos:]), prefix)
}

func (p *parser) digitAt(i int) bool {
	return i < len(p.src) && unicode.IsDigit(p.src[i])
}

// expr parses factors until a closing paren or end of input.
// A slash inverts only the factor that follows it.
func (p *parser) expr() (Unit, error) {
	var u Unit
	for {
		p.skip()
		r := p.peek()
		if r == 0 || r == ')' {
			return u, nil
		}
		sign := 1
		if r == '/' {
			p.pos++
			p.skip()
			sign = -1
		}
		f, err := p.factor()
		if err != nil {
			return Unit{}, err
		}
		u = u.times(f, sign)
	}
}

func (p *parser) factor() (Unit, error) {
	r := p.peek()
	switch {
	case r == 0:
		return Unit{}, p.errorf("unexpected end")
	case r == '(':
		p.pos++
		inner, err := p.expr()
		if err != nil {
			return Unit{}, err
		}
		if p.peek() != ')' {
			return Unit{}, p.errorf("missing )")
		}
		p.pos++
		power, err := p.power(true)
		if err != nil {
			return Unit{}, err
		}
		var u Unit
		for i := 0; i < abs(power); i++ {
			u = u.times(inner, sign(power))
		}
		return u, nil
	case unicode.IsDigit(r) || r == '.' || r == '-' || r == '+':
		return p.number()
	case unicode.IsLetter(r):
		return p.symbol()
	default:
		return Unit{}, p.errorf("unexpected %q", string(r))
	}
}

func (p *parser) number() (Unit, error) {
	start := p.pos
	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if unicode.IsDigit(r) || r == '.' || r == 'e' || r == 'E' ||
			((r == '-' || r == '+') && (p.pos == start || p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E')) {
			p.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(string(p.src[start:p.pos]), 64)
	if err != nil || v == 0 {
		return Unit{}, p.errorf("bad scale %q", string(p.src[start:p.pos]))
	}
	return Unit{scale: v}, nil
}

func (p *parser) symbol() (Unit, error) {
	start := p.pos
	for p.pos < len(p.src) && (unicode.IsLetter(p.src[p.pos]) || p.src[p.pos] == '_') {
		p.pos++
	}
	name := string(p.src[start:p.pos])
	canonical, ok := symbols[name]
	if !ok {
		return Unit{}, p.errorf("unknown unit %q", name)
	}
	power, err := p.power(false)
	if err != nil {
		return Unit{}, err
	}
	return Unit{}.mul(Term{Symbol: canonical, Power: power}), nil
}

// power parses an optional exponent: "2", "-1", "^-2", "**3".
// Bare digits after a closing paren are not accepted.
func (p *parser) power(afterParen bool) (int, error) {
	explicit := false
	switch {
	case p.at("**"):
		p.pos += 2
		explicit = true
	case p.peek() == '^':
		p.pos++
		explicit = true
	}
	if !explicit && afterParen {
		return 1, nil
	}

	start := p.pos
	if r := p.peek(); r == '-' || r == '+' {
		p.pos++
	}
	for p.digitAt(p.pos) {
		p.pos++
	}
	text := string(p.src[start:p.pos])
	if text == "" {
		if explicit {
			return 0, p.errorf("missing exponent")
		}
		return 1, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, p.errorf("bad exponent %q", text)
	}
	return n, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}
