// Package bands canonicalises photometric band names.
//
// Catalog rows spell the same Gaia filters several ways ("GAIA2.G",
// "GAIA3.Grp", "GaiaGbp"). A Normalizer rewrites them with an ordered list
// of substring replacements, applied in declaration order.
package bands

import "strings"

// Alias rewrites every occurrence of From with To.
type Alias struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// DefaultAliases is the built-in alias table. Order matters: release
// prefixes are folded first so the filter rules only need the "Gaia." form.
// The Gaia.Gbp and GaiaGrp rules extend the SIMPLE catalog's own fix list,
// which rewrites only the other half of each filter pair.
var DefaultAliases = []Alias{
	{From: "GAIA2", To: "Gaia"},
	{From: "GAIA3", To: "Gaia"},
	{From: "Gaia.Grp", To: "Gaia.rp"},
	{From: "Gaia.Gbp", To: "Gaia.bp"}, // extension
	{From: "GaiaGbp", To: "Gaia.bp"},
	{From: "GaiaGrp", To: "Gaia.rp"}, // extension
}

// Normalizer applies an ordered alias table.
type Normalizer struct {
	aliases []Alias
}

// NewNormalizer returns a normalizer with the default aliases followed by extra.
// Aliases with an empty From are ignored.
func NewNormalizer(extra ...Alias) *Normalizer {
	aliases := make([]Alias, 0, len(DefaultAliases)+len(extra))
	aliases = append(aliases, DefaultAliases...)
	for _, a := range extra {
		if a.From != "" {
			aliases = append(aliases, a)
		}
	}
	return &Normalizer{aliases: aliases}
}

// Normalize rewrites band through every alias in order.
func (n *Normalizer) Normalize(band string) string {
	for _, a := range n.aliases {
		band = strings.ReplaceAll(band, a.From, a.To)
	}
	return band
}

var defaultNormalizer = NewNormalizer()

// Normalize rewrites band with the default alias table.
func Normalize(band string) string {
	return defaultNormalizer.Normalize(band)
}
