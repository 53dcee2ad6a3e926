package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/sedmap/pkg/logging"
)

func TestFromContext(t *testing.T) {
	t.Run("returns the stored logger", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)

		logging.FromContext(ctx).Info().Str("table", "Spectra").Msg("loaded")
		tl.AssertContains(t, `"table":"Spectra"`)
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Same(t, logging.Default(), logging.FromContext(context.Background()))
		//nolint:staticcheck // nil context is the case under test
		assert.Same(t, logging.Default(), logging.FromContext(nil))
	})

	t.Run("nil logger falls back to default", func(t *testing.T) {
		ctx := logging.WithLogger(context.Background(), nil)
		assert.Same(t, logging.Default(), logging.FromContext(ctx))
	})
}

func TestTestLogger(t *testing.T) {
	tl := logging.NewTestLogger(t)
	tl.Logger.Trace().Msg("first")
	tl.Logger.Warn().Str("object", "Vega").Msg("second")

	entries := tl.Entries()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "trace", entries[0]["level"])
		assert.Equal(t, "Vega", entries[1]["object"])
	}
	assert.True(t, tl.Contains("second"))
	assert.False(t, tl.Contains("third"))
}
