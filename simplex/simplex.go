package simplex

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"q.log/tableau/model"
)

const (
	phaseOne  = "phase1"
	phaseTwo  = "phase2"
	phaseDual = "dual"
)

// engine drives one tableau through its phases. It owns the tableau for the
// duration of the solve.
type engine struct {
	cfg        *config
	t          *Tableau
	log        logrus.FieldLogger
	name       string
	history    []*mat.Dense
	iterations int
}

func newEngine(t *Tableau, cfg *config, name string) *engine {
	t.eps = cfg.epsilon
	e := &engine{
		cfg:  cfg,
		t:    t,
		log:  cfg.logger.WithField("engine", name),
		name: name,
	}
	e.record()
	return e
}

func (e *engine) record() {
	if e.cfg.history {
		e.history = append(e.history, e.t.Snapshot())
	}
}

func (e *engine) pivot(row, col int, phase string) error {
	e.log.WithFields(logrus.Fields{
		"phase":     phase,
		"iteration": e.iterations,
		"row":       row,
		"col":       col,
		"leaving":   e.t.Basis[row],
	}).Debug("pivot")

	if err := e.t.Pivot(row, col); err != nil {
		return err
	}
	e.iterations++
	e.cfg.metrics.Pivot(e.name)
	e.record()
	return nil
}

// entering applies Bland's rule: the first column with a negative reduced
// cost, or -1 when the tableau is optimal. Artificial columns never re-enter.
func (e *engine) entering() int {
	obj := e.t.ObjectiveRow()
	for j, jN := 0, e.t.NumCols(); j < jN; j++ {
		if e.t.IsArtificial(j) {
			continue
		}
		if obj[j] < -e.t.eps {
			return j
		}
	}
	return -1
}

// leaving runs the minimum-ratio test over rows with a positive entry in
// col. Ties go to the row whose basic variable has the largest index. It
// returns -1 when no row qualifies, i.e. the column is unbounded.
func (e *engine) leaving(col int) int {
	row := -1
	var best float64
	for i, iN := 0, e.t.NumRows(); i < iN; i++ {
		a := e.t.T.At(i, col)
		if a <= e.t.eps {
			continue
		}
		ratio := e.t.RHS(i) / a
		switch {
		case row == -1 || ratio < best-e.t.eps:
			row, best = i, ratio
		case math.Abs(ratio-best) <= e.t.eps && e.t.Basis[i] > e.t.Basis[row]:
			row = i
		}
	}
	return row
}

// iterate pivots until no entering column is left.
func (e *engine) iterate(phase string) (Status, error) {
	for {
		col := e.entering()
		if col < 0 {
			return Optimal, nil
		}
		row := e.leaving(col)
		if row < 0 {
			e.log.WithFields(logrus.Fields{"phase": phase, "col": col}).Debug("no positive entry in entering column")
			return Unbounded, nil
		}
		if e.iterations >= e.cfg.maxIterations {
			return MaxIterExceeded, nil
		}
		if err := e.pivot(row, col, phase); err != nil {
			return 0, err
		}
	}
}

// toPhaseTwo drives basic artificial variables out of the basis, drops the
// artificial columns together with redundant rows and installs the true cost
// row in canonical form.
func (e *engine) toPhaseTwo() error {
	redundant := map[int]bool{}
	for i, iN := 0, e.t.NumRows(); i < iN; i++ {
		if !e.t.IsArtificial(e.t.Basis[i]) {
			continue
		}
		row := e.t.T.RawRowView(i)
		col := -1
		for j := 0; j < e.t.NumVars+e.t.NumSlack; j++ {
			if math.Abs(row[j]) > e.t.eps {
				col = j
				break
			}
		}
		if col < 0 {
			e.log.WithField("row", i).Debug("dropping redundant row")
			redundant[i] = true
			continue
		}
		if err := e.pivot(i, col, phaseOne); err != nil {
			return err
		}
	}

	e.t.dropArtificial(redundant)
	e.t.installCost()
	e.record()
	return nil
}

// primal runs Phase I when artificial columns exist, then Phase II.
func (e *engine) primal(m *model.Model) (*Result, error) {
	if e.t.NumArtificial > 0 {
		st, err := e.iterate(phaseOne)
		if err != nil {
			return nil, err
		}
		if st == MaxIterExceeded {
			return e.result(st, m), nil
		}
		if w := e.t.ObjectiveRow()[e.t.NumCols()]; math.Abs(w) > e.t.eps {
			e.log.WithField("artificial", -w).Debug("phase 1 ended with positive artificial sum")
			return e.result(Infeasible, m), nil
		}
		if err := e.toPhaseTwo(); err != nil {
			return nil, err
		}
	}

	st, err := e.iterate(phaseTwo)
	if err != nil {
		return nil, err
	}
	return e.result(st, m), nil
}

func (e *engine) result(st Status, m *model.Model) *Result {
	res := &Result{
		Status:     st,
		History:    e.history,
		Tableau:    e.t,
		Iterations: e.iterations,
	}
	if st == Optimal {
		res.Solution = e.t.solution()
		res.Objective = e.t.objective()
		res.Alternate = e.t.alternate(m, e.cfg.strictAlternate)
	}

	e.log.WithFields(logrus.Fields{
		"status":     st,
		"iterations": e.iterations,
		"objective":  res.Objective,
	}).Debug("solve finished")
	return res
}

// Solve maximizes (or minimizes) the model with the two-phase primal simplex
// method using Bland's rule. Solver outcomes are reported through
// Result.Status; an error means the model is malformed or an option is invalid.
func Solve(m *model.Model, opts ...Option) (*Result, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	t, err := Build(m)
	if err != nil {
		return nil, err
	}

	res, err := newEngine(t, cfg, "primal").primal(m)
	if err != nil {
		return nil, err
	}
	cfg.metrics.Solve("primal", res.Status.String())
	return res, nil
}
