package mip

import (
	"math"

	"github.com/sirupsen/logrus"

	"q.log/tableau/model"
	"q.log/tableau/simplex"
)

// frac returns v - floor(v), with values within eps of an integer snapped
// to 0.
func frac(v, eps float64) float64 {
	f := v - math.Floor(v)
	if f <= eps || f >= 1-eps {
		return 0
	}
	return f
}

// fractionalRow picks the row of a basic integer variable whose value has
// the largest fractional part, smallest row on ties, or -1.
func fractionalRow(t *simplex.Tableau, integer []bool, eps float64) int {
	row := -1
	best := 0.0
	for i, j := range t.Basis {
		if j >= t.NumVars || !integer[j] {
			continue
		}
		if f := frac(t.RHS(i), eps); f > best+eps {
			row, best = i, f
		}
	}
	return row
}

// integralRows reports for each model row whether its slack is integer at
// every integer point: integer coefficients on integer variables only and an
// integer right-hand side.
func integralRows(m *model.Model, integer []bool, eps float64) []bool {
	rows := make([]bool, m.NumRows)
	for i, iN := 0, m.NumRows; i < iN; i++ {
		rows[i] = isIntegral(m.B.At(i, 0), eps)
		for j, a := range m.A.RawRowView(i) {
			if a != 0 && (!integer[j] || !isIntegral(a, eps)) {
				rows[i] = false
				break
			}
		}
	}
	return rows
}

// integerColumns marks the tableau columns that take integer values at every
// integer point. Slacks of cuts are treated as continuous.
func integerColumns(t *simplex.Tableau, integer, rows []bool) []bool {
	cols := make([]bool, t.NumCols())
	for j := range cols {
		if j < t.NumVars {
			cols[j] = integer[j]
			continue
		}
		if i := t.SlackSource(j); i >= 0 {
			cols[j] = rows[i]
		}
	}
	return cols
}

// gomoryCut derives the Gomory mixed-integer cut of row
//
//	-sum g_j x_j <= -f0,  f0 = frac(b)
//
// where g_j is frac(a_j) or f0(1-frac(a_j))/(1-f0) for integer columns and
// a_j or -f0 a_j/(1-f0) for continuous ones. With integer columns only and
// frac(a_j) <= f0 it is the plain fractional cut. Basic columns drop out.
func gomoryCut(t *simplex.Tableau, row int, cols []bool, eps float64) ([]float64, float64) {
	r := t.T.RawRowView(row)
	f0 := frac(t.RHS(row), eps)
	coef := make([]float64, t.NumCols())
	for j, a := range r[:t.NumCols()] {
		var g float64
		switch {
		case cols[j]:
			if f := frac(a, eps); f <= f0 {
				g = f
			} else {
				g = f0 * (1 - f) / (1 - f0)
			}
		case a > eps:
			g = a
		case a < -eps:
			g = -f0 * a / (1 - f0)
		}
		coef[j] = -g
	}
	return coef, -f0
}

// SolveGomory solves the LP relaxation and then adds Gomory fractional cuts
// until every designated integer variable is integral (OptimalInteger) or
// the cut limit is reached (MaxIterExceeded, with the last relaxation).
// After each cut the tableau is repaired by the dual simplex method and
// finished with Phase II. Continuous variables, and slacks of rows with
// fractional data or continuous variables, get continuous cut coefficients,
// so mixed programs and fractional data keep every integer point.
func SolveGomory(m *model.Model, opts ...Option) (*Result, error) {
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

	res, err := gomory(m, cfg, integer)
	if err != nil {
		return nil, err
	}
	cfg.metrics.Solve("gomory", res.Status.String())
	return res, nil
}

func gomory(m *model.Model, cfg *config, integer []bool) (*Result, error) {
	log := cfg.logger.WithField("engine", "gomory")

	lp, err := simplex.Solve(m, cfg.lpOptions()...)
	if err != nil {
		return nil, err
	}
	if lp.Status != simplex.Optimal {
		return &Result{Result: *lp}, nil
	}

	res := &Result{Result: *lp}
	t := lp.Tableau
	rows := integralRows(m, integer, cfg.epsilon)
	for {
		row := fractionalRow(t, integer, cfg.epsilon)
		if row < 0 {
			res.Status = simplex.OptimalInteger
			res.Solution = roundIntegers(res.Solution, integer)
			res.Objective = m.Objective(res.Solution)
			return res, nil
		}
		if res.Cuts >= cfg.maxCuts {
			log.WithField("cuts", res.Cuts).Debug("cut limit reached")
			res.Status = simplex.MaxIterExceeded
			return res, nil
		}

		coef, rhs := gomoryCut(t, row, integerColumns(t, integer, rows), cfg.epsilon)
		if err := t.AddSlackRow(coef, rhs); err != nil {
			return nil, err
		}
		res.Cuts++
		cfg.metrics.Cut()
		log.WithFields(logrus.Fields{
			"cut":      res.Cuts,
			"row":      row,
			"variable": t.Basis[row],
			"rhs":      rhs,
		}).Debug("added cut")

		next, err := simplex.Reoptimize(m, t, cfg.lpOptions()...)
		if err != nil {
			return nil, err
		}

		res.History = append(res.History, next.History...)
		res.Iterations += next.Iterations
		res.Status = next.Status
		res.Tableau = next.Tableau
		if next.Status != simplex.Optimal {
			res.Solution, res.Objective, res.Alternate = nil, 0, false
			return res, nil
		}
		res.Solution = next.Solution
		res.Objective = next.Objective
		res.Alternate = next.Alternate
	}
}
