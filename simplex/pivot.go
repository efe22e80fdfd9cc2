package simplex

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrZeroPivot is returned by Pivot when the pivot element is (numerically) zero.
var ErrZeroPivot = errors.New("simplex: zero pivot element")

// Pivot makes column col basic in row row: the pivot row is divided by the
// pivot element and col is eliminated from every other row, the objective
// row included. It is the only operation that changes the basis.
func (t *Tableau) Pivot(row, col int) error {
	if row < 0 || row >= t.NumRows() || col < 0 || col >= t.NumCols() {
		return errors.Errorf("pivot (%d, %d) outside a %dx%d tableau", row, col, t.NumRows(), t.NumCols())
	}

	p := t.T.At(row, col)
	if math.Abs(p) <= t.eps {
		return errors.Wrapf(ErrZeroPivot, "at (%d, %d)", row, col)
	}

	pr := t.T.RawRowView(row)
	floats.Scale(1/p, pr)
	pr[col] = 1

	for i := 0; i <= t.NumRows(); i++ {
		if i == row {
			continue
		}
		r := t.T.RawRowView(i)
		f := r[col]
		if f == 0 {
			continue
		}
		floats.AddScaled(r, -f, pr)
		r[col] = 0
		t.clean(r)
	}
	t.clean(pr)

	t.Basis[row] = col
	return nil
}

// clean flushes round-off below eps to exact zero so sign tests stay stable.
func (t *Tableau) clean(r []float64) {
	for j, v := range r {
		if v != 0 && math.Abs(v) <= t.eps {
			r[j] = 0
		}
	}
}
