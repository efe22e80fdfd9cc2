package metrics

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const (
	EngineLabel  = "engine"
	MethodLabel  = "method"
	StatusLabel  = "status"
	OutcomeLabel = "outcome"
)

// Recorder counts solver work. A nil *Recorder is valid and records nothing,
// so engines can call it unconditionally.
type Recorder struct {
	pivots *prometheus.CounterVec
	solves *prometheus.CounterVec
	nodes  *prometheus.CounterVec
	cuts   prometheus.Counter
}

// NewRecorder creates the solver counters and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		pivots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tableau_pivots_total",
				Help: "Number of pivots performed, by engine",
			},
			[]string{EngineLabel},
		),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tableau_solves_total",
				Help: "Number of completed solves, by method and final status",
			},
			[]string{MethodLabel, StatusLabel},
		),
		nodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tableau_branch_nodes_total",
				Help: "Number of branch-and-bound nodes evaluated, by outcome",
			},
			[]string{OutcomeLabel},
		),
		cuts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tableau_gomory_cuts_total",
				Help: "Number of Gomory cuts added",
			},
		),
	}

	for _, c := range []prometheus.Collector{r.pivots, r.solves, r.nodes, r.cuts} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "registering solver metrics")
		}
	}

	return r, nil
}

func (r *Recorder) Pivot(engine string) {
	if r == nil {
		return
	}
	r.pivots.WithLabelValues(engine).Inc()
}

func (r *Recorder) Solve(method, status string) {
	if r == nil {
		return
	}
	r.solves.WithLabelValues(method, status).Inc()
}

func (r *Recorder) Node(outcome string) {
	if r == nil {
		return
	}
	r.nodes.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Cut() {
	if r == nil {
		return
	}
	r.cuts.Inc()
}

// Pivots returns the current pivot count of an engine.
func (r *Recorder) Pivots(engine string) float64 {
	if r == nil {
		return 0
	}
	return value(r.pivots.WithLabelValues(engine))
}

// Nodes returns the current node count for an outcome.
func (r *Recorder) Nodes(outcome string) float64 {
	if r == nil {
		return 0
	}
	return value(r.nodes.WithLabelValues(outcome))
}

// Cuts returns the number of Gomory cuts recorded so far.
func (r *Recorder) Cuts() float64 {
	if r == nil {
		return 0
	}
	return value(r.cuts)
}

func value(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// WriteText dumps every metric family of g in the text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "writing %s", mf.GetName())
		}
	}
	return nil
}
