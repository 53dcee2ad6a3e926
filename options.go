package sedmap

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/sedmap/pkg/bands"
	"github.com/agentstation/sedmap/pkg/constants"
	"github.com/agentstation/sedmap/pkg/errors"
	"github.com/agentstation/sedmap/pkg/logging"
	"github.com/agentstation/sedmap/pkg/sed"
)

// Recorder receives load metrics. *metrics.LoaderMetrics implements it.
type Recorder interface {
	RecordOutcome(table, outcome string)
	RecordResolution(status string)
	ObserveLoad(table string, d time.Duration)
}

// Option is a function that configures an Adapter.
type Option func(*config) error

// config holds Adapter settings.
type config struct {
	autoLoad         bool
	model            sed.Model
	logger           *zerolog.Logger
	uncertaintyScale float64
	normalizer       *bands.Normalizer
	recorder         Recorder
	tag              string
	hooks            *hooks
}

func defaultConfig() *config {
	return &config{
		logger:           logging.Default(),
		uncertaintyScale: math.NaN(),
		normalizer:       bands.NewNormalizer(),
		tag:              constants.DiagnosticTag,
		hooks:            newHooks(),
	}
}

func (c *config) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithAutoLoad runs every loader, in order, as part of New.
func WithAutoLoad(enabled bool) Option {
	return func(c *config) error {
		c.autoLoad = enabled
		return nil
	}
}

// WithModel populates an externally owned model instead of a new *sed.SED.
func WithModel(model sed.Model) Option {
	return func(c *config) error {
		if model == nil {
			return errors.NewValidationError("model", nil, "model cannot be nil")
		}
		c.model = model
		return nil
	}
}

// WithLogger sets the logger diagnostics are written to.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithUncertaintyScale sets the factor applied to flux to synthesize an
// uncertainty for spectra that carry none. The default is NaN.
func WithUncertaintyScale(scale float64) Option {
	return func(c *config) error {
		c.uncertaintyScale = scale
		return nil
	}
}

// WithBandNormalizer replaces the default band alias table.
func WithBandNormalizer(n *bands.Normalizer) Option {
	return func(c *config) error {
		if n == nil {
			return errors.NewValidationError("normalizer", nil, "normalizer cannot be nil")
		}
		c.normalizer = n
		return nil
	}
}

// WithMetrics records per-record outcomes and resolution statuses.
func WithMetrics(r Recorder) Option {
	return func(c *config) error {
		c.recorder = r
		return nil
	}
}

// WithTag sets the tag carried by every diagnostic.
func WithTag(tag string) Option {
	return func(c *config) error {
		if tag == "" {
			return errors.NewValidationError("tag", tag, "tag cannot be empty")
		}
		c.tag = tag
		return nil
	}
}

// WithDiagnosticHook registers fn to be called for every diagnostic.
func WithDiagnosticHook(fn DiagnosticHook) Option {
	return func(c *config) error {
		c.hooks.OnDiagnostic(fn)
		return nil
	}
}

// WithReportHook registers fn to be called after every loader finishes.
func WithReportHook(fn ReportHook) Option {
	return func(c *config) error {
		c.hooks.OnReport(fn)
		return nil
	}
}
