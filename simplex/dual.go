package simplex

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"q.log/tableau/model"
)

// ErrNoFeasibleStart is returned by Reoptimize for a tableau that is neither
// primal nor dual feasible.
var ErrNoFeasibleStart = errors.New("simplex: tableau is neither primal nor dual feasible")

// dualLeaving picks the row with the most negative RHS, smallest index on
// ties, or -1 when the tableau is primal feasible.
func (e *engine) dualLeaving() int {
	row := -1
	var worst float64
	for i, iN := 0, e.t.NumRows(); i < iN; i++ {
		b := e.t.RHS(i)
		if b < -e.t.eps && (row == -1 || b < worst) {
			row, worst = i, b
		}
	}
	return row
}

// dualEntering runs the dual ratio test on row: among negative entries it
// minimizes reduced cost / |entry|, which keeps every reduced cost
// non-negative. Ties go to the smallest column. -1 means the row proves
// infeasibility.
func (e *engine) dualEntering(row int) int {
	obj := e.t.ObjectiveRow()
	r := e.t.T.RawRowView(row)
	col := -1
	var best float64
	for j, jN := 0, e.t.NumCols(); j < jN; j++ {
		if e.t.IsArtificial(j) || r[j] >= -e.t.eps {
			continue
		}
		ratio := obj[j] / -r[j]
		if col == -1 || ratio < best-e.t.eps {
			col, best = j, ratio
		}
	}
	return col
}

func (e *engine) dualPhase() (Status, error) {
	for {
		row := e.dualLeaving()
		if row < 0 {
			return Optimal, nil
		}
		col := e.dualEntering(row)
		if col < 0 {
			e.log.WithFields(logrus.Fields{"phase": phaseDual, "row": row}).Debug("no negative entry in leaving row")
			return Infeasible, nil
		}
		if e.iterations >= e.cfg.maxIterations {
			return MaxIterExceeded, nil
		}
		if err := e.pivot(row, col, phaseDual); err != nil {
			return 0, err
		}
	}
}

// reoptimize restores primal feasibility with dual pivots when needed and
// finishes with the Phase II loop.
func (e *engine) reoptimize(m *model.Model) (*Result, error) {
	if !e.t.primalFeasible() {
		if !e.t.dualFeasible() {
			return nil, ErrNoFeasibleStart
		}
		st, err := e.dualPhase()
		if err != nil {
			return nil, err
		}
		if st != Optimal {
			return e.result(st, m), nil
		}
	}

	st, err := e.iterate(phaseTwo)
	if err != nil {
		return nil, err
	}
	return e.result(st, m), nil
}

// SolveDual solves the model with the dual simplex method, starting from an
// all-slack basis. When that start is primal feasible it goes straight to
// Phase II; when it is neither primal nor dual feasible the two-phase primal
// method is used instead.
func SolveDual(m *model.Model, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	t, err := BuildDual(m)
	if err != nil {
		return nil, err
	}
	t.eps = cfg.epsilon

	if !t.primalFeasible() && !t.dualFeasible() {
		cfg.logger.WithField("engine", "dual").Debug("no dual feasible start, falling back to two-phase primal")
		return Solve(m, opts...)
	}

	res, err := newEngine(t, cfg, "dual").reoptimize(m)
	if err != nil {
		return nil, err
	}
	cfg.metrics.Solve("dual", res.Status.String())
	return res, nil
}

// Reoptimize continues from an existing tableau, typically an optimal one
// that received a new row through AddSlackRow. The tableau is modified in
// place and returned in the result.
func Reoptimize(m *model.Model, t *Tableau, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if t.NumArtificial != 0 {
		return nil, errors.New("simplex: cannot reoptimize a Phase I tableau")
	}
	return newEngine(t, cfg, "dual").reoptimize(m)
}
