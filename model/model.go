package model

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Direction is the optimization direction of a model.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func (d Direction) String() string {
	if d == Minimize {
		return "min"
	}
	return "max"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max", "maximize", "maximise":
		return Maximize, nil
	case "min", "minimize", "minimise":
		return Minimize, nil
	}
	return Maximize, errors.Errorf("model: unknown direction %q", s)
}

type Variable struct {
	Name    string
	Integer bool
}

// Model holds a linear program
//
//	max (or min) c'x  s.t.  Ax {<=,>=,=} b, x >= 0
//
// Rows of A are constraints, columns are variables.
type Model struct {
	//V variables
	V []*Variable

	//C objective function coefficients
	C *mat.Dense

	//A constraints matrix
	A *mat.Dense

	//B constraints rhs
	B *mat.Dense

	//S constraints senses
	S []Sense

	Direction Direction

	NumRows int
	NumCols int
}

// NewModel returns a zero model of the given size with every constraint set to <=.
// Both sizes must be positive.
func NewModel(numRows, numCols int) *Model {
	m := &Model{
		C:       mat.NewDense(1, numCols, nil),
		A:       mat.NewDense(numRows, numCols, nil),
		B:       mat.NewDense(numRows, 1, nil),
		S:       make([]Sense, numRows),
		NumRows: numRows,
		NumCols: numCols,
	}
	m.CreateVariables()

	return m
}

// New builds a model from plain slices. A nil senses slice means all <=.
func New(c []float64, a [][]float64, b []float64, senses []Sense) (*Model, error) {
	if len(c) == 0 || len(a) == 0 {
		return nil, ErrEmptyModel
	}
	if len(b) != len(a) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d rhs values for %d constraints", len(b), len(a))
	}
	if senses != nil && len(senses) != len(a) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d senses for %d constraints", len(senses), len(a))
	}

	m := NewModel(len(a), len(c))
	if err := m.SetC(c); err != nil {
		return nil, err
	}

	aVec := make([]float64, 0, len(a)*len(c))
	for i, row := range a {
		if len(row) != len(c) {
			return nil, errors.Wrapf(ErrDimensionMismatch, "constraint %d has %d coefficients, want %d", i, len(row), len(c))
		}
		aVec = append(aVec, row...)
	}
	if err := m.SetA(aVec); err != nil {
		return nil, err
	}
	if err := m.SetB(b); err != nil {
		return nil, err
	}
	if senses != nil {
		if err := m.SetSenses(senses); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Model) SetC(cVec []float64) error {
	if len(cVec) != m.NumCols {
		return errors.Wrap(ErrDimensionMismatch, "mismatch number of variables")
	}

	m.C = mat.NewDense(1, m.NumCols, append([]float64(nil), cVec...))

	return nil
}

// SetA takes the constraint matrix in row-major order.
func (m *Model) SetA(aVec []float64) error {
	if len(aVec) != m.NumCols*m.NumRows {
		return errors.Wrap(ErrDimensionMismatch, "mismatch number of variables and/or constraints")
	}

	m.A = mat.NewDense(m.NumRows, m.NumCols, append([]float64(nil), aVec...))

	return nil
}

func (m *Model) SetB(bVec []float64) error {
	if len(bVec) != m.NumRows {
		return errors.Wrap(ErrDimensionMismatch, "mismatch number of constraints")
	}

	m.B = mat.NewDense(m.NumRows, 1, append([]float64(nil), bVec...))

	return nil
}

func (m *Model) SetSenses(senses []Sense) error {
	if len(senses) != m.NumRows {
		return errors.Wrap(ErrDimensionMismatch, "mismatch number of constraints")
	}
	for i, s := range senses {
		if !s.Valid() {
			return errors.Wrapf(ErrUnknownSense, "constraint %d", i)
		}
	}

	m.S = append([]Sense(nil), senses...)

	return nil
}

// SetInteger marks the given variables as integer-restricted.
func (m *Model) SetInteger(idx ...int) error {
	for _, j := range idx {
		if j < 0 || j >= m.NumCols {
			return errors.Wrapf(ErrIndexOutOfRange, "variable %d", j)
		}
		m.V[j].Integer = true
	}

	return nil
}

// IntegerIndices returns the indices of integer-restricted variables in order.
func (m *Model) IntegerIndices() []int {
	var idx []int
	for j, v := range m.V {
		if v.Integer {
			idx = append(idx, j)
		}
	}
	return idx
}

// AddRow appends the constraint rVec·x (sense) rhs.
func (m *Model) AddRow(rVec []float64, sense Sense, rhs float64) error {
	if len(rVec) != m.NumCols {
		return errors.Wrap(ErrDimensionMismatch, "mismatch number of columns, i.e. wrong len of rVec")
	}
	if !sense.Valid() {
		return errors.Wrapf(ErrUnknownSense, "%d", int(sense))
	}

	m.A = mat.DenseCopyOf(m.A.Grow(1, 0))
	m.A.SetRow(m.NumRows, rVec)

	m.B = mat.DenseCopyOf(m.B.Grow(1, 0))
	m.B.Set(m.NumRows, 0, rhs)

	m.S = append(m.S, sense)

	m.NumRows++
	return nil
}

// MultiplyConstraint scales a row and its rhs; a negative factor flips the sense.
func (m *Model) MultiplyConstraint(row int, mul float64) error {
	if row < 0 || row >= m.NumRows {
		return errors.Wrapf(ErrIndexOutOfRange, "row %d does not exist", row)
	}

	floats.Scale(mul, m.A.RawRowView(row))
	m.B.Set(row, 0, m.B.At(row, 0)*mul)
	if mul < 0 {
		m.S[row] = m.S[row].Flip()
	}
	return nil
}

// CreateVariables resets the variable metadata to x1..xn, all continuous.
func (m *Model) CreateVariables() {
	m.V = make([]*Variable, m.NumCols)
	for c, cN := 0, m.NumCols; c < cN; c++ {
		m.V[c] = &Variable{Name: fmt.Sprintf("x%d", c+1)}
	}
}

// Clone returns a deep copy; constraints added to the copy do not affect m.
func (m *Model) Clone() *Model {
	v := make([]*Variable, len(m.V))
	for i, x := range m.V {
		cp := *x
		v[i] = &cp
	}

	return &Model{
		V:         v,
		C:         mat.DenseCopyOf(m.C),
		A:         mat.DenseCopyOf(m.A),
		B:         mat.DenseCopyOf(m.B),
		S:         append([]Sense(nil), m.S...),
		Direction: m.Direction,
		NumRows:   m.NumRows,
		NumCols:   m.NumCols,
	}
}

// Validate checks that the model is well formed. Solvers call it before
// building any tableau.
func (m *Model) Validate() error {
	if m == nil || m.NumRows < 1 || m.NumCols < 1 || m.A == nil || m.B == nil || m.C == nil {
		return ErrEmptyModel
	}
	if r, c := m.A.Dims(); r != m.NumRows || c != m.NumCols {
		return errors.Wrapf(ErrDimensionMismatch, "A is %dx%d, want %dx%d", r, c, m.NumRows, m.NumCols)
	}
	if r, c := m.B.Dims(); r != m.NumRows || c != 1 {
		return errors.Wrapf(ErrDimensionMismatch, "b is %dx%d, want %dx1", r, c, m.NumRows)
	}
	if r, c := m.C.Dims(); r != 1 || c != m.NumCols {
		return errors.Wrapf(ErrDimensionMismatch, "c is %dx%d, want 1x%d", r, c, m.NumCols)
	}
	if len(m.S) != m.NumRows {
		return errors.Wrapf(ErrDimensionMismatch, "%d senses for %d constraints", len(m.S), m.NumRows)
	}
	if len(m.V) != m.NumCols {
		return errors.Wrapf(ErrDimensionMismatch, "%d variables for %d columns", len(m.V), m.NumCols)
	}
	for i, s := range m.S {
		if !s.Valid() {
			return errors.Wrapf(ErrUnknownSense, "constraint %d", i)
		}
	}
	if m.Direction != Maximize && m.Direction != Minimize {
		return errors.Errorf("model: unknown direction %d", int(m.Direction))
	}
	return nil
}

// Cost returns c as a slice in the maximization convention, i.e. negated for
// minimization models.
func (m *Model) Cost() []float64 {
	c := append([]float64(nil), m.C.RawRowView(0)...)
	if m.Direction == Minimize {
		floats.Scale(-1, c)
	}
	return c
}

// Objective evaluates c'x in the model's own direction.
func (m *Model) Objective(x []float64) float64 {
	return floats.Dot(m.C.RawRowView(0), x)
}

// Check verifies x >= 0 and every constraint within tol.
func (m *Model) Check(x []float64, tol float64) error {
	if len(x) != m.NumCols {
		return errors.Wrapf(ErrDimensionMismatch, "point has %d values, want %d", len(x), m.NumCols)
	}
	for j, v := range x {
		if v < -tol {
			return errors.Wrapf(ErrInfeasiblePoint, "%s = %g is negative", m.V[j].Name, v)
		}
	}
	for i, iN := 0, m.NumRows; i < iN; i++ {
		lhs := floats.Dot(m.A.RawRowView(i), x)
		rhs := m.B.At(i, 0)
		var ok bool
		switch m.S[i] {
		case LE:
			ok = lhs <= rhs+tol
		case GE:
			ok = lhs >= rhs-tol
		case EQ:
			ok = math.Abs(lhs-rhs) <= tol
		}
		if !ok {
			return errors.Wrapf(ErrInfeasiblePoint, "constraint %d: %g %s %g", i, lhs, m.S[i], rhs)
		}
	}
	return nil
}

// Fprint writes c, A, b and the senses in a readable layout.
func (m *Model) Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s c = %v\n", m.Direction, mat.Formatted(m.C, mat.Prefix("        "), mat.Squeeze()))
	fmt.Fprintf(w, "A = %v\n", mat.Formatted(m.A, mat.Prefix("    "), mat.Squeeze()))
	fmt.Fprintf(w, "b = %v\n", mat.Formatted(m.B.T(), mat.Prefix("    "), mat.Squeeze()))
	fmt.Fprintf(w, "s = %v\n", m.S)
}
