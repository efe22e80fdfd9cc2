package mip

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"q.log/tableau/metrics"
	"q.log/tableau/simplex"
)

const (
	defaultEpsilon  = 1e-9
	defaultMaxDepth = 64
	defaultMaxNodes = 10000
	defaultMaxCuts  = 100
)

// Search is the order in which branch-and-bound takes open nodes.
type Search int

const (
	// DepthFirst explores the floor branch of a node before its ceil branch.
	DepthFirst Search = iota
	// BestBound takes the open node whose parent relaxation was best.
	BestBound
)

func (s Search) String() string {
	switch s {
	case DepthFirst:
		return "dfs"
	case BestBound:
		return "best"
	default:
		return "unknown"
	}
}

func ParseSearch(s string) (Search, error) {
	switch strings.ToLower(s) {
	case "dfs", "depth", "depth-first":
		return DepthFirst, nil
	case "best", "best-bound":
		return BestBound, nil
	}
	return 0, errors.Errorf("unknown search order %q", s)
}

// Method selects the algorithm used by Solve.
type Method int

const (
	Primal Method = iota
	Dual
	BranchAndBound
	Gomory
)

func (m Method) String() string {
	switch m {
	case Primal:
		return "primal"
	case Dual:
		return "dual"
	case BranchAndBound:
		return "bnb"
	case Gomory:
		return "gomory"
	default:
		return "unknown"
	}
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "primal", "simplex":
		return Primal, nil
	case "dual":
		return Dual, nil
	case "bnb", "branch-and-bound":
		return BranchAndBound, nil
	case "gomory", "cuts":
		return Gomory, nil
	}
	return 0, errors.Errorf("unknown method %q", s)
}

type Option func(*config) error

type config struct {
	logger   logrus.FieldLogger
	metrics  *metrics.Recorder
	epsilon  float64
	maxDepth int
	maxNodes int
	maxCuts  int
	search   Search
	integer  []int
	lp       []simplex.Option
}

func newConfig(opts []Option) (*config, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	cfg := &config{
		logger:   discard,
		epsilon:  defaultEpsilon,
		maxDepth: defaultMaxDepth,
		maxNodes: defaultMaxNodes,
		maxCuts:  defaultMaxCuts,
		search:   DepthFirst,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errors.Wrap(err, "applying mip option")
		}
	}
	return cfg, nil
}

// lpOptions returns the options every relaxation is solved with. Options
// given through WithSimplexOptions come last and win.
func (c *config) lpOptions() []simplex.Option {
	opts := []simplex.Option{
		simplex.WithLogger(c.logger),
		simplex.WithEpsilon(c.epsilon),
		simplex.WithMetrics(c.metrics),
	}
	return append(opts, c.lp...)
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

func WithMetrics(r *metrics.Recorder) Option {
	return func(c *config) error {
		c.metrics = r
		return nil
	}
}

// WithEpsilon sets the tolerance of the relaxations and of the integrality
// test.
func WithEpsilon(eps float64) Option {
	return func(c *config) error {
		if eps <= 0 || eps >= 1 {
			return errors.Errorf("epsilon must be in (0, 1), got %g", eps)
		}
		c.epsilon = eps
		return nil
	}
}

// WithMaxDepth limits how deep branch-and-bound may branch. Nodes at the
// limit are not expanded and the search reports MaxIterExceeded unless the
// incumbent dominates them.
func WithMaxDepth(depth int) Option {
	return func(c *config) error {
		if depth < 0 {
			return errors.Errorf("depth limit must not be negative, got %d", depth)
		}
		c.maxDepth = depth
		return nil
	}
}

// WithMaxNodes limits the number of relaxations branch-and-bound solves.
func WithMaxNodes(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return errors.Errorf("node limit must be positive, got %d", n)
		}
		c.maxNodes = n
		return nil
	}
}

// WithMaxCuts limits the number of Gomory cuts.
func WithMaxCuts(n int) Option {
	return func(c *config) error {
		if n < 0 {
			return errors.Errorf("cut limit must not be negative, got %d", n)
		}
		c.maxCuts = n
		return nil
	}
}

func WithSearch(s Search) Option {
	return func(c *config) error {
		if s != DepthFirst && s != BestBound {
			return errors.Errorf("unknown search order %d", int(s))
		}
		c.search = s
		return nil
	}
}

// WithInteger designates the integer-restricted variables. Without it the
// variables marked in the model are used, and all of them when none is.
func WithInteger(idx ...int) Option {
	return func(c *config) error {
		c.integer = append([]int(nil), idx...)
		return nil
	}
}

// WithSimplexOptions passes extra options to every relaxation solve.
func WithSimplexOptions(opts ...simplex.Option) Option {
	return func(c *config) error {
		c.lp = append(c.lp, opts...)
		return nil
	}
}
