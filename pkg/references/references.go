// Package references resolves short publication keys (e.g. "Gaia18") to
// bibcodes through the catalog's Publications table.
//
// Resolution never fails loudly: every unresolved outcome yields the empty
// bibcode and a Status saying why, so a bad reference never blocks the
// record that cites it.
package references

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/internal/cache"
	"github.com/agentstation/sedmap/pkg/catalogs"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/logging"
)

// Unresolved is the bibcode recorded when a reference cannot be resolved.
const Unresolved = ""

// Status classifies a resolution outcome.
type Status string

// Resolution statuses.
const (
	StatusResolved    Status = "resolved"
	StatusMissing     Status = "missing"      // empty key, no query made
	StatusNotFound    Status = "not_found"    // no Publications row
	StatusNullBibcode Status = "null_bibcode" // row found, bibcode NULL or empty
	StatusFailed      Status = "failed"       // query error
)

// Statuses lists every status in a stable order.
var Statuses = []Status{StatusResolved, StatusMissing, StatusNotFound, StatusNullBibcode, StatusFailed}

// Resolution is the outcome of resolving one publication key.
type Resolution struct {
	Publication string `json:"publication" yaml:"publication"`
	Bibcode     string `json:"bibcode" yaml:"bibcode"`
	Status      Status `json:"status" yaml:"status"`
	Err         error  `json:"-" yaml:"-"`
}

// Resolved reports whether a bibcode was found.
func (r Resolution) Resolved() bool {
	return r.Status == StatusResolved
}

// Querier is the slice of catalogs.Catalog the resolver needs.
type Querier interface {
	Query(ctx context.Context, q catalogs.Query) ([]catalogs.Row, error)
}

// Resolver resolves publication keys, memoising answers for its lifetime.
type Resolver struct {
	querier  Querier
	memo     *cache.Memo[Resolution]
	logger   *zerolog.Logger
	observer func(Resolution)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver calls fn with every resolution, memoised or not.
func WithObserver(fn func(Resolution)) Option {
	return func(r *Resolver) {
		r.observer = fn
	}
}

// NewResolver returns a Resolver querying q.
func NewResolver(q Querier, opts ...Option) *Resolver {
	r := &Resolver{
		querier: q,
		memo:    cache.New[Resolution](),
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the bibcode for publication. It never returns an error
// and never panics; failures are reported in the Resolution.
func (r *Resolver) Resolve(ctx context.Context, publication string) (res Resolution) {
	defer func() {
		if r.observer != nil {
			r.observer(res)
		}
	}()

	if publication == "" {
		return Resolution{Status: StatusMissing, Err: errors.ErrUnresolved}
	}
	// Backend failures are retried on the next call; every other status
	// is an answer about the catalog and is kept.
	return r.memo.Load(publication, func() (Resolution, bool) {
		looked := r.lookup(ctx, publication)
		r.logger.Debug().
			Str("publication", publication).
			Str("status", string(looked.Status)).
			Str("bibcode", looked.Bibcode).
			Msg("Resolved reference")
		return looked, looked.Status != StatusFailed
	})
}

func (r *Resolver) lookup(ctx context.Context, publication string) (res Resolution) {
	res = Resolution{Publication: publication, Bibcode: Unresolved}

	defer func() {
		if p := recover(); p != nil {
			res = Resolution{
				Publication: publication,
				Bibcode:     Unresolved,
				Status:      StatusFailed,
				Err:         fmt.Errorf("resolving %s: panic: %v", publication, p),
			}
		}
	}()

	if r.querier == nil {
		res.Status = StatusFailed
		res.Err = errors.NewConfigError("references", "no catalog to query", nil)
		return res
	}

	q := catalogs.Query{
		Table:   catalogs.TablePublications,
		Columns: []string{catalogs.ColBibcode},
		Filters: []catalogs.Filter{catalogs.Eq(catalogs.ColPublication, publication)},
		Limit:   1,
	}
	rows, err := r.querier.Query(ctx, q)
	if err != nil {
		res.Status = StatusFailed
		res.Err = errors.WrapQuery(catalogs.TablePublications, q.String(), err)
		return res
	}
	if len(rows) == 0 {
		res.Status = StatusNotFound
		res.Err = errors.Join(errors.ErrUnresolved, errors.NewNotFoundError("publication", publication))
		return res
	}
	bibcode := rows[0].String(catalogs.ColBibcode)
	if bibcode == "" {
		res.Status = StatusNullBibcode
		res.Err = fmt.Errorf("publication %s has no bibcode: %w", publication, errors.ErrUnresolved)
		return res
	}
	res.Bibcode = bibcode
	res.Status = StatusResolved
	return res
}

// Stats returns memo statistics.
func (r *Resolver) Stats() cache.Stats {
	return r.memo.Stats()
}
