package instance

import (
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"

	"q.log/tableau/model"
)

// Reader reads a free MPS file into a model.
type Reader struct {
	filename string
}

func NewReader(filename string) *Reader {
	return &Reader{
		filename: filename,
	}
}

// Read parses the file with GLPK. Ranged rows become a <= and a >= row,
// finite column bounds other than x >= 0 become extra rows, and integer or
// binary columns are marked as integer variables. Columns with a negative
// or missing lower bound are rejected: every variable must be non-negative.
func (r *Reader) Read() (*model.Model, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, r.filename); err != nil {
		return nil, errors.Wrapf(err, "reading MPS file %s", r.filename)
	}

	numCols := lp.NumCols()
	if numCols == 0 {
		return nil, errors.Wrapf(model.ErrEmptyModel, "%s has no columns", r.filename)
	}

	//populate obj function
	cVec := make([]float64, numCols)
	for c, cN := 0, numCols; c < cN; c++ {
		cVec[c] = lp.ObjCoef(c + 1)
	}

	//populate constraints
	var rows [][]float64
	var rhs []float64
	var senses []model.Sense
	add := func(row []float64, s model.Sense, b float64) {
		rows = append(rows, row)
		senses = append(senses, s)
		rhs = append(rhs, b)
	}

	for r := 1; r <= lp.NumRows(); r++ {
		rowVec := make([]float64, numCols)
		idxs, vals := lp.MatRow(r)
		for i, v := range idxs {
			if v == 0 {
				continue
			}
			rowVec[v-1] = vals[i]
		}

		lb, ub := lp.RowLB(r), lp.RowUB(r)
		switch {
		case lb == -math.MaxFloat64 && ub == math.MaxFloat64:
			// free row, e.g. a second objective
			continue
		case lb == -math.MaxFloat64:
			add(rowVec, model.LE, ub)
		case ub == math.MaxFloat64:
			add(rowVec, model.GE, lb)
		case lb == ub:
			add(rowVec, model.EQ, lb)
		default:
			add(rowVec, model.GE, lb)
			add(append([]float64(nil), rowVec...), model.LE, ub)
		}
	}

	var integer []int
	for c, cN := 0, numCols; c < cN; c++ {
		lb, ub := lp.ColLB(c+1), lp.ColUB(c+1)
		if lb < 0 {
			return nil, errors.Errorf("%s: column %s has a negative lower bound, only x >= 0 is supported", r.filename, lp.ColName(c+1))
		}

		unit := func() []float64 {
			rowVec := make([]float64, numCols)
			rowVec[c] = 1
			return rowVec
		}
		if lb > 0 {
			add(unit(), model.GE, lb)
		}
		if ub != math.MaxFloat64 {
			add(unit(), model.LE, ub)
		}

		switch lp.ColKind(c + 1) {
		case glpk.IV, glpk.BV:
			integer = append(integer, c)
		}
	}

	if len(rows) == 0 {
		return nil, errors.Wrapf(model.ErrEmptyModel, "%s has no constraints", r.filename)
	}

	m, err := model.New(cVec, rows, rhs, senses)
	if err != nil {
		return nil, errors.Wrapf(err, "building model from %s", r.filename)
	}
	for c, cN := 0, numCols; c < cN; c++ {
		if name := lp.ColName(c + 1); name != "" {
			m.V[c].Name = name
		}
	}
	if err := m.SetInteger(integer...); err != nil {
		return nil, err
	}
	if lp.ObjDir() == glpk.MIN {
		m.Direction = model.Minimize
	}

	return m, nil
}
