package units

import (
	"encoding/json"
	"fmt"
	"math"
)

// Quantity is an array of values sharing one unit.
type Quantity struct {
	Values []float64 `json:"values" yaml:"values"`
	Unit   Unit      `json:"unit" yaml:"unit"`
}

// NewQuantity returns a quantity over a copy of values.
func NewQuantity(values []float64, unit Unit) Quantity {
	v := make([]float64, len(values))
	copy(v, values)
	return Quantity{Values: v, Unit: unit}
}

// Len returns the number of values.
func (q Quantity) Len() int {
	return len(q.Values)
}

// Scale returns a new quantity with every value multiplied by factor.
// A NaN factor yields all-NaN values.
func (q Quantity) Scale(factor float64) Quantity {
	out := make([]float64, len(q.Values))
	for i, v := range q.Values {
		out[i] = v * factor
	}
	return Quantity{Values: out, Unit: q.Unit}
}

// String summarises the quantity without printing every value.
func (q Quantity) String() string {
	if len(q.Values) == 0 {
		return fmt.Sprintf("[] %s", q.Unit)
	}
	return fmt.Sprintf("[%d values %g..%g] %s", len(q.Values), q.Values[0], q.Values[len(q.Values)-1], q.Unit)
}

type quantityJSON struct {
	Values []*float64 `json:"values"`
	Unit   Unit       `json:"unit"`
}

// MarshalJSON encodes NaN and infinite values as null, which JSON cannot
// otherwise represent.
func (q Quantity) MarshalJSON() ([]byte, error) {
	out := quantityJSON{Values: make([]*float64, len(q.Values)), Unit: q.Unit}
	for i := range q.Values {
		if v := q.Values[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			out.Values[i] = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null values as NaN.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var in quantityJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	q.Unit = in.Unit
	q.Values = make([]float64, len(in.Values))
	for i, v := range in.Values {
		if v == nil {
			q.Values[i] = math.NaN()
		} else {
			q.Values[i] = *v
		}
	}
	return nil
}

// FixFluxUnits corrects the catalog data-entry error where Ampere ("A") was
// recorded instead of Angstrom. When the unit contains an Ampere base it is
// replaced by Angstrom and values are rescaled by AngstromPerAmpere raised to
// the Ampere power. Any other quantity is returned unchanged.
func FixFluxUnits(q Quantity) Quantity {
	power := q.Unit.Power(Ampere)
	if !q.Unit.HasBase(Ampere) {
		return q
	}
	fixed := q.Scale(math.Pow(AngstromPerAmpere, float64(power)))
	fixed.Unit = q.Unit.Replace(Ampere, Angstrom)
	return fixed
}
