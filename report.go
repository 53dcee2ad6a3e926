package sedmap

import (
	"time"

	"github.com/agentstation/sedmap/pkg/references"
)

// Outcome classifies what happened to one catalog record.
type Outcome string

// Record outcomes.
const (
	OutcomeLoaded      Outcome = "loaded"       // written to the model
	OutcomeSkipped     Outcome = "skipped"      // not adopted, or rejected by the row-count rule
	OutcomeAbsent      Outcome = "absent"       // table missing or empty
	OutcomeMalformed   Outcome = "malformed"    // values unusable or rejected by the model
	OutcomeFetchFailed Outcome = "fetch_failed" // spectrum payload could not be retrieved
)

// Outcomes lists every outcome in a stable order.
var Outcomes = []Outcome{OutcomeLoaded, OutcomeSkipped, OutcomeAbsent, OutcomeMalformed, OutcomeFetchFailed}

// RecordResult is the result of loading one row. Row is 1-based; NoRow
// means the result concerns the whole table.
type RecordResult struct {
	Table     string                `json:"table" yaml:"table"`
	Row       int                   `json:"row" yaml:"row"`
	Outcome   Outcome               `json:"outcome" yaml:"outcome"`
	Reference references.Resolution `json:"reference" yaml:"reference"`
	Err       error                 `json:"-" yaml:"-"`
}

// Error returns the error text, or "".
func (r RecordResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// LoadReport summarizes one loader run.
type LoadReport struct {
	Loader   string         `json:"loader" yaml:"loader"`
	Table    string         `json:"table" yaml:"table"`
	Rows     int            `json:"rows" yaml:"rows"`
	Results  []RecordResult `json:"results" yaml:"results"`
	Duration time.Duration  `json:"duration" yaml:"duration"`
}

func (r *LoadReport) add(res RecordResult) {
	res.Table = r.Table
	r.Results = append(r.Results, res)
}

// Count returns how many results have outcome o.
func (r LoadReport) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Loaded returns the number of records written to the model.
func (r LoadReport) Loaded() int {
	return r.Count(OutcomeLoaded)
}

// Absent reports whether the table was missing or empty.
func (r LoadReport) Absent() bool {
	return r.Count(OutcomeAbsent) > 0
}

// Failed returns the results that were malformed or could not be fetched.
func (r LoadReport) Failed() []RecordResult {
	var out []RecordResult
	for _, res := range r.Results {
		if res.Outcome == OutcomeMalformed || res.Outcome == OutcomeFetchFailed {
			out = append(out, res)
		}
	}
	return out
}
