package simplex

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"q.log/tableau/metrics"
)

const (
	defaultEpsilon       = 1e-9
	defaultMaxIterations = 10000
)

// Option configures a single solve.
type Option func(*config) error

type config struct {
	logger          logrus.FieldLogger
	epsilon         float64
	maxIterations   int
	history         bool
	strictAlternate bool
	metrics         *metrics.Recorder
}

func newConfig(opts []Option) (*config, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	cfg := &config{
		logger:        discard,
		epsilon:       defaultEpsilon,
		maxIterations: defaultMaxIterations,
		history:       true,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.Wrap(err, "applying solver option")
		}
	}
	return cfg, nil
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithEpsilon sets the tolerance used for every sign, ratio and zero test.
func WithEpsilon(eps float64) Option {
	return func(c *config) error {
		if eps <= 0 || eps >= 1 {
			return errors.Errorf("epsilon must be in (0, 1), got %g", eps)
		}
		c.epsilon = eps
		return nil
	}
}

// WithMaxIterations caps the number of pivots of one solve. Exceeding it
// yields MaxIterExceeded.
func WithMaxIterations(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.Errorf("iteration cap must be positive, got %d", n)
		}
		c.maxIterations = n
		return nil
	}
}

// WithHistory turns tableau snapshots on or off.
func WithHistory(enabled bool) Option {
	return func(c *config) error {
		c.history = enabled
		return nil
	}
}

// WithStrictAlternate reports an alternate optimum only when some non-basic
// column has a zero reduced cost, dropping the coarse size/sign heuristic.
func WithStrictAlternate() Option {
	return func(c *config) error {
		c.strictAlternate = true
		return nil
	}
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) error {
		c.metrics = r
		return nil
	}
}
