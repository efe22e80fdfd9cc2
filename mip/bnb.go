package mip

import (
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"q.log/tableau/model"
	"q.log/tableau/simplex"
)

var negInf = math.Inf(-1)

// Outcome is what branch-and-bound decided for a node.
type Outcome string

const (
	OutcomeInfeasible Outcome = "infeasible"
	OutcomeUnbounded  Outcome = "unbounded"
	OutcomePruned     Outcome = "pruned"
	OutcomeIncumbent  Outcome = "incumbent"
	OutcomeBranched   Outcome = "branched"
	OutcomeDepthLimit Outcome = "depth_limit"
	OutcomeIterLimit  Outcome = "iteration_limit"
)

// NodeRecord is one solved node of the search tree.
type NodeRecord struct {
	ID     int
	Parent int // -1 for the root
	Depth  int

	// Var is the variable bounded when the node was created, -1 for the root.
	Var int

	// Bound is the relaxed objective in the model's direction; NaN when the
	// relaxation has no optimum.
	Bound float64

	Outcome Outcome
}

type branchAndBound struct {
	cfg     *config
	log     logrus.FieldLogger
	root    *model.Model
	integer []bool

	list   worklist
	nextID int
	nodes  []NodeRecord

	incumbent *simplex.Result
	best      float64

	// open is the best bound among nodes the search gave up on.
	open       float64
	iterations int
}

// SolveBranchAndBound maximizes (or minimizes) the model with the
// designated variables restricted to integers. Every node solves its LP
// relaxation with the two-phase primal simplex engine on an independent
// copy of the constraints.
//
// The status is Optimal when the incumbent is proven optimal, Infeasible
// when no integer point exists, Unbounded when the root relaxation is
// unbounded and MaxIterExceeded when a depth, node or iteration limit
// stopped the proof. In the last case the incumbent, if any, is reported.
func SolveBranchAndBound(m *model.Model, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	integer, err := integerSet(m, cfg)
	if err != nil {
		return nil, err
	}

	b := &branchAndBound{
		cfg:     cfg,
		log:     cfg.logger.WithField("engine", "bnb"),
		root:    m,
		integer: integer,
		list:    newWorklist(cfg.search),
		best:    negInf,
		open:    negInf,
	}
	res, err := b.run()
	if err != nil {
		return nil, err
	}
	cfg.metrics.Solve("bnb", res.Status.String())
	return res, nil
}

func (b *branchAndBound) run() (*Result, error) {
	b.list.push(&node{id: 0, parent: -1, branchVar: -1, bound: math.Inf(1), model: b.root.Clone()})
	b.nextID = 1

	for b.list.len() > 0 {
		if len(b.nodes) >= b.cfg.maxNodes {
			b.open = max(b.open, b.list.best())
			b.log.WithField("open", b.list.len()).Debug("node limit reached")
			break
		}

		n := b.list.pop()
		res, err := simplex.Solve(n.model, b.cfg.lpOptions()...)
		if err != nil {
			return nil, err
		}
		b.iterations += res.Iterations

		if res.Status == simplex.Unbounded && n.id == 0 {
			b.record(n, OutcomeUnbounded, math.NaN())
			return b.result(simplex.Unbounded, res), nil
		}
		if err := b.visit(n, res); err != nil {
			return nil, err
		}
	}

	switch {
	case b.incumbent == nil && b.open == negInf:
		return b.result(simplex.Infeasible, nil), nil
	case b.incumbent == nil || b.open > b.best+b.cfg.epsilon:
		return b.result(simplex.MaxIterExceeded, b.incumbent), nil
	}
	return b.result(simplex.Optimal, b.incumbent), nil
}

// visit classifies a solved node and branches on it when needed.
func (b *branchAndBound) visit(n *node, res *simplex.Result) error {
	switch res.Status {
	case simplex.Infeasible:
		b.record(n, OutcomeInfeasible, math.NaN())
		return nil
	case simplex.Unbounded:
		// a child of a bounded node cannot be unbounded; treat it as lost
		b.record(n, OutcomeUnbounded, math.NaN())
		return nil
	case simplex.MaxIterExceeded:
		b.open = math.Inf(1)
		b.record(n, OutcomeIterLimit, math.NaN())
		return nil
	}

	s := score(b.root, res.Objective)
	if b.incumbent != nil && s <= b.best+b.cfg.epsilon {
		b.record(n, OutcomePruned, res.Objective)
		return nil
	}

	j := firstFractional(res.Solution, b.integer, b.cfg.epsilon)
	switch {
	case j < 0:
		inc := *res
		inc.Solution = roundIntegers(res.Solution, b.integer)
		inc.Objective = b.root.Objective(inc.Solution)
		b.incumbent, b.best = &inc, s
		b.record(n, OutcomeIncumbent, res.Objective)
	case n.depth >= b.cfg.maxDepth:
		b.open = max(b.open, s)
		b.record(n, OutcomeDepthLimit, res.Objective)
	default:
		if err := b.branch(n, j, res.Solution[j], s); err != nil {
			return err
		}
		b.record(n, OutcomeBranched, res.Objective)
	}
	return nil
}

// branch pushes x_j <= floor(v) and x_j >= floor(v)+1. The floor child is
// pushed last so that depth-first search takes it first.
func (b *branchAndBound) branch(n *node, j int, v, bound float64) error {
	lo := math.Floor(v)
	row := make([]float64, b.root.NumCols)
	row[j] = 1

	floor := &node{id: b.nextID, parent: n.id, depth: n.depth + 1, branchVar: j, bound: bound, model: n.model.Clone()}
	ceil := &node{id: b.nextID + 1, parent: n.id, depth: n.depth + 1, branchVar: j, bound: bound, model: n.model}
	b.nextID += 2

	if err := floor.model.AddRow(row, model.LE, lo); err != nil {
		return errors.Wrapf(err, "branching on %s <= %g", b.root.V[j].Name, lo)
	}
	if err := ceil.model.AddRow(row, model.GE, lo+1); err != nil {
		return errors.Wrapf(err, "branching on %s >= %g", b.root.V[j].Name, lo+1)
	}

	b.list.push(ceil)
	b.list.push(floor)
	return nil
}

func (b *branchAndBound) record(n *node, outcome Outcome, bound float64) {
	b.nodes = append(b.nodes, NodeRecord{
		ID:      n.id,
		Parent:  n.parent,
		Depth:   n.depth,
		Var:     n.branchVar,
		Bound:   bound,
		Outcome: outcome,
	})
	b.cfg.metrics.Node(string(outcome))
	b.log.WithFields(logrus.Fields{
		"node":    n.id,
		"depth":   n.depth,
		"bound":   bound,
		"outcome": outcome,
	}).Debug("node")
}

func (b *branchAndBound) result(st simplex.Status, lp *simplex.Result) *Result {
	res := &Result{Nodes: b.nodes}
	if lp != nil {
		res.Result = *lp
	}
	res.Status = st
	res.Iterations = b.iterations
	if st == simplex.Infeasible || st == simplex.Unbounded {
		res.Solution = nil
		res.Objective = 0
		res.Alternate = false
	}

	b.log.WithFields(logrus.Fields{
		"status":    st,
		"nodes":     len(b.nodes),
		"objective": res.Objective,
	}).Debug("search finished")
	return res
}
