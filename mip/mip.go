// Package mip solves integer programs on top of the simplex engines, either
// by branch-and-bound over LP relaxations or with Gomory fractional cuts.
package mip

import (
	"math"

	"github.com/pkg/errors"

	"q.log/tableau/model"
	"q.log/tableau/simplex"
)

// Result extends the LP result with the search trace. Solution, Objective,
// History and Tableau belong to the relaxation that produced the incumbent.
type Result struct {
	simplex.Result

	// Nodes lists the branch-and-bound nodes in the order they were solved.
	Nodes []NodeRecord

	// Cuts is the number of Gomory cuts added.
	Cuts int
}

// Solve runs the given method. Primal and Dual ignore the integer options.
func Solve(m *model.Model, method Method, opts ...Option) (*Result, error) {
	switch method {
	case Primal, Dual:
		cfg, err := newConfig(opts)
		if err != nil {
			return nil, err
		}
		solve := simplex.Solve
		if method == Dual {
			solve = simplex.SolveDual
		}
		res, err := solve(m, cfg.lpOptions()...)
		if err != nil {
			return nil, err
		}
		return &Result{Result: *res}, nil
	case BranchAndBound:
		return SolveBranchAndBound(m, opts...)
	case Gomory:
		return SolveGomory(m, opts...)
	}
	return nil, errors.Errorf("unknown method %d", int(method))
}

// integerSet resolves the designated integer variables into a mask.
func integerSet(m *model.Model, cfg *config) ([]bool, error) {
	idx := cfg.integer
	if idx == nil {
		idx = m.IntegerIndices()
	}
	mask := make([]bool, m.NumCols)
	if len(idx) == 0 {
		for j := range mask {
			mask[j] = true
		}
		return mask, nil
	}
	for _, j := range idx {
		if j < 0 || j >= m.NumCols {
			return nil, errors.Wrapf(model.ErrIndexOutOfRange, "integer variable %d", j)
		}
		mask[j] = true
	}
	return mask, nil
}

func isIntegral(v, eps float64) bool {
	return math.Abs(v-math.Round(v)) <= eps
}

// firstFractional returns the first integer variable whose value is not
// integral, or -1.
func firstFractional(x []float64, integer []bool, eps float64) int {
	for j, v := range x {
		if integer[j] && !isIntegral(v, eps) {
			return j
		}
	}
	return -1
}

// roundIntegers snaps the integer variables of x to exact integers.
func roundIntegers(x []float64, integer []bool) []float64 {
	out := append([]float64(nil), x...)
	for j := range out {
		if integer[j] {
			out[j] = math.Round(out[j])
			if out[j] == 0 {
				out[j] = 0 // no negative zero
			}
		}
	}
	return out
}

// score maps an objective in the model's direction to the maximization
// convention used for pruning.
func score(m *model.Model, objective float64) float64 {
	if m.Direction == model.Minimize {
		return -objective
	}
	return objective
}
