package references_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sedmap/pkg/catalogs"
	sederrors "github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/references"
)

// fakeQuerier answers Publications lookups from a map and counts calls.
type fakeQuerier struct {
	bibcodes map[string]any
	err      error
	panics   bool
	calls    int
	last     catalogs.Query
}

func (f *fakeQuerier) Query(_ context.Context, q catalogs.Query) ([]catalogs.Row, error) {
	f.calls++
	f.last = q
	if f.panics {
		panic("driver exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	pub := q.Filters[0].Value.(string)
	bib, ok := f.bibcodes[pub]
	if !ok {
		return nil, nil
	}
	return []catalogs.Row{{"bibcode": bib}}, nil
}

func newQuerier() *fakeQuerier {
	return &fakeQuerier{bibcodes: map[string]any{
		"Gaia18": "2018A&A...616A...1G",
		"Dupu12": []byte("2012ApJS..201...19D"),
		"NoBib":  nil,
		"Empty":  "",
	}}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		pub     string
		bibcode string
		status  references.Status
	}{
		{"Gaia18", "2018A&A...616A...1G", references.StatusResolved},
		{"Dupu12", "2012ApJS..201...19D", references.StatusResolved},
		{"Unknown", "", references.StatusNotFound},
		{"NoBib", "", references.StatusNullBibcode},
		{"Empty", "", references.StatusNullBibcode},
		{"", "", references.StatusMissing},
	}

	for _, tt := range tests {
		t.Run(tt.pub, func(t *testing.T) {
			r := references.NewResolver(newQuerier())
			res := r.Resolve(context.Background(), tt.pub)

			assert.Equal(t, tt.bibcode, res.Bibcode)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.status == references.StatusResolved, res.Resolved())
			if tt.status != references.StatusResolved {
				assert.True(t, errors.Is(res.Err, sederrors.ErrUnresolved), "err: %v", res.Err)
			}
		})
	}
}

func TestResolveQueryShape(t *testing.T) {
	q := newQuerier()
	references.NewResolver(q).Resolve(context.Background(), "Gaia18")

	assert.Equal(t, catalogs.TablePublications, q.last.Table)
	assert.Equal(t, []string{"bibcode"}, q.last.Columns)
	assert.Equal(t, []catalogs.Filter{{Column: "publication", Value: "Gaia18"}}, q.last.Filters)
	assert.Equal(t, 1, q.last.Limit)
}

func TestResolveMissingMakesNoQuery(t *testing.T) {
	q := newQuerier()
	res := references.NewResolver(q).Resolve(context.Background(), "")

	assert.Equal(t, references.StatusMissing, res.Status)
	assert.Zero(t, q.calls)
}

func TestResolveMemoises(t *testing.T) {
	q := newQuerier()
	r := references.NewResolver(q)

	for i := 0; i < 3; i++ {
		assert.Equal(t, "2018A&A...616A...1G", r.Resolve(context.Background(), "Gaia18").Bibcode)
		assert.Equal(t, references.StatusNotFound, r.Resolve(context.Background(), "Unknown").Status)
	}
	assert.Equal(t, 2, q.calls)
	assert.Equal(t, int64(4), r.Stats().Hits)
}

func TestResolveFailuresAreNotMemoised(t *testing.T) {
	q := newQuerier()
	q.err = errors.New("database is locked")
	r := references.NewResolver(q)

	res := r.Resolve(context.Background(), "Gaia18")
	assert.Equal(t, references.StatusFailed, res.Status)
	assert.Equal(t, "", res.Bibcode)
	assert.ErrorContains(t, res.Err, "database is locked")

	var qerr *sederrors.QueryError
	assert.True(t, errors.As(res.Err, &qerr))

	q.err = nil
	res = r.Resolve(context.Background(), "Gaia18")
	assert.Equal(t, references.StatusResolved, res.Status)
	assert.Equal(t, 2, q.calls)
}

func TestResolveRecoversPanics(t *testing.T) {
	q := newQuerier()
	q.panics = true

	var res references.Resolution
	require.NotPanics(t, func() {
		res = references.NewResolver(q).Resolve(context.Background(), "Gaia18")
	})
	assert.Equal(t, references.StatusFailed, res.Status)
	assert.Equal(t, "", res.Bibcode)
	assert.ErrorContains(t, res.Err, "driver exploded")
}

func TestResolveNilQuerier(t *testing.T) {
	res := references.NewResolver(nil).Resolve(context.Background(), "Gaia18")
	assert.Equal(t, references.StatusFailed, res.Status)
}

func TestResolveObserver(t *testing.T) {
	var seen []references.Status
	r := references.NewResolver(newQuerier(), references.WithObserver(func(res references.Resolution) {
		seen = append(seen, res.Status)
	}))

	r.Resolve(context.Background(), "Gaia18")
	r.Resolve(context.Background(), "Gaia18")
	r.Resolve(context.Background(), "")

	assert.Equal(t, []references.Status{
		references.StatusResolved,
		references.StatusResolved,
		references.StatusMissing,
	}, seen)
}
