package simplex

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"q.log/tableau/model"
)

type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
	OptimalInteger
	MaxIterExceeded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case Unbounded:
		return "unbounded"
	case OptimalInteger:
		return "optimal_integer"
	case MaxIterExceeded:
		return "max_iter_exceeded"
	default:
		return "unknown"
	}
}

// Result is the outcome of a solve. Solution and Objective are only
// meaningful for Optimal and OptimalInteger, and for MaxIterExceeded when a
// search had an incumbent.
type Result struct {
	Status    Status
	Solution  []float64
	Objective float64
	Alternate bool

	// History holds one snapshot per tableau state, starting with the
	// initial tableau of each phase.
	History []*mat.Dense

	// Tableau is the final tableau. It is owned by the result and may be
	// extended by cutting-plane methods.
	Tableau *Tableau

	Iterations int
}

// solution places each basic structural value in its slot; non-basic
// variables stay 0.
func (t *Tableau) solution() []float64 {
	x := make([]float64, t.NumVars)
	for i, j := range t.Basis {
		if j < t.NumVars {
			v := t.RHS(i)
			if math.Abs(v) <= t.eps {
				v = 0
			}
			x[j] = v
		}
	}
	return x
}

// objective reads the objective row RHS in the model's direction.
func (t *Tableau) objective() float64 {
	z := t.T.At(t.NumRows(), t.NumCols())
	if t.direction == model.Minimize {
		return -z
	}
	return z
}

// alternate reports whether the optimal tableau admits another optimum.
//
// The default criterion keeps the legacy rules: a zero reduced cost on a
// non-basic structural column, an all-zero objective, or more constraints
// than variables with strictly positive costs. The last one is only a
// heuristic and can report false positives. Strict mode uses the zero
// reduced cost test on every non-basic column.
func (t *Tableau) alternate(m *model.Model, strict bool) bool {
	obj := t.ObjectiveRow()
	basic := make(map[int]bool, len(t.Basis))
	for _, j := range t.Basis {
		basic[j] = true
	}

	last := t.NumVars
	if strict {
		last = t.NumCols()
	}
	for j := 0; j < last; j++ {
		if t.IsArtificial(j) || basic[j] {
			continue
		}
		if math.Abs(obj[j]) <= t.eps {
			return true
		}
	}
	if strict {
		return false
	}

	cost := m.Cost()
	allZero, allPositive := true, true
	for _, c := range cost {
		if c != 0 {
			allZero = false
		}
		if c <= 0 {
			allPositive = false
		}
	}
	return allZero || (m.NumRows > m.NumCols && allPositive)
}
