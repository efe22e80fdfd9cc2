package simplex

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"q.log/tableau/model"
)

// Tableau is a dense simplex tableau.
//
// Rows are the constraints followed by the objective row. Columns are the
// structural variables, the slack/surplus variables, the artificial
// variables (Phase I only) and finally the right-hand side.
type Tableau struct {
	T *mat.Dense

	// Basis[i] is the column basic in row i.
	Basis []int

	NumVars       int
	NumSlack      int
	NumArtificial int

	// slackRow[k] is the model row of slack column NumVars+k, -1 for rows
	// added by AddSlackRow.
	slackRow []int

	// cost is c in the maximization convention, one entry per structural
	// variable. It becomes the objective row in Phase II.
	cost      []float64
	direction model.Direction
	eps       float64
}

// NumRows returns the number of constraint rows; the objective row is at
// index NumRows().
func (t *Tableau) NumRows() int {
	return len(t.Basis)
}

// NumCols returns the number of variable columns; the RHS is at index NumCols().
func (t *Tableau) NumCols() int {
	return t.NumVars + t.NumSlack + t.NumArtificial
}

func (t *Tableau) RHS(row int) float64 {
	return t.T.At(row, t.NumCols())
}

// ObjectiveRow returns the objective row, RHS included. It aliases the tableau.
func (t *Tableau) ObjectiveRow() []float64 {
	return t.T.RawRowView(t.NumRows())
}

func (t *Tableau) IsArtificial(col int) bool {
	return col >= t.NumVars+t.NumSlack && col < t.NumCols()
}

// SlackSource returns the model row that slack column col was created for,
// or -1 when col is not a slack column or was added by AddSlackRow.
func (t *Tableau) SlackSource(col int) int {
	k := col - t.NumVars
	if k < 0 || k >= len(t.slackRow) {
		return -1
	}
	return t.slackRow[k]
}

// Snapshot returns an independent copy of the matrix.
func (t *Tableau) Snapshot() *mat.Dense {
	return mat.DenseCopyOf(t.T)
}

func (t *Tableau) Fprint(w io.Writer) {
	fmt.Fprintf(w, "basis = %v\n", t.Basis)
	fmt.Fprintf(w, "T = %v\n", mat.Formatted(t.T, mat.Prefix("    "), mat.Squeeze()))
}

// Build converts a model into a standard-form tableau with an initial basis.
//
// Rows with a negative right-hand side are multiplied by -1 first. A <= row
// gets a slack column, a >= row a surplus and an artificial column, an = row
// an artificial column only. If any artificial column exists the objective
// row is the Phase I row (negative sum of the artificial rows), otherwise it
// is the Phase II row -c.
func Build(m *model.Model) (*Tableau, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	work := m.Clone()
	for r, rN := 0, work.NumRows; r < rN; r++ {
		if work.B.At(r, 0) < 0 {
			if err := work.MultiplyConstraint(r, -1); err != nil {
				return nil, err
			}
		}
	}

	var numSlack, numArtificial int
	for _, s := range work.S {
		switch s {
		case model.LE:
			numSlack++
		case model.GE:
			numSlack++
			numArtificial++
		case model.EQ:
			numArtificial++
		}
	}

	rows, n := work.NumRows, work.NumCols
	t := &Tableau{
		T:             mat.NewDense(rows+1, n+numSlack+numArtificial+1, nil),
		Basis:         make([]int, rows),
		NumVars:       n,
		NumSlack:      numSlack,
		NumArtificial: numArtificial,
		cost:          m.Cost(),
		direction:     m.Direction,
		eps:           defaultEpsilon,
	}
	rhs := t.NumCols()

	slack, artificial := n, n+numSlack
	for r, rN := 0, rows; r < rN; r++ {
		row := t.T.RawRowView(r)
		copy(row, work.A.RawRowView(r))
		row[rhs] = work.B.At(r, 0)

		switch work.S[r] {
		case model.LE:
			row[slack] = 1
			t.Basis[r] = slack
			t.slackRow = append(t.slackRow, r)
			slack++
		case model.GE:
			row[slack] = -1
			t.slackRow = append(t.slackRow, r)
			slack++
			row[artificial] = 1
			t.Basis[r] = artificial
			artificial++
		case model.EQ:
			row[artificial] = 1
			t.Basis[r] = artificial
			artificial++
		}
	}

	obj := t.ObjectiveRow()
	if numArtificial > 0 {
		for r, rN := 0, rows; r < rN; r++ {
			if t.IsArtificial(t.Basis[r]) {
				floats.Sub(obj, t.T.RawRowView(r))
			}
		}
		// artificial columns cancel out: each has 1 in its own row only
		for j := n + numSlack; j < rhs; j++ {
			obj[j] = 0
		}
	} else {
		t.installCost()
	}

	return t, nil
}

// BuildDual converts a model into an all-slack tableau suitable for the dual
// simplex method. Every row is put in <= form: >= rows are negated and =
// rows become a <= and a negated >= pair. Right-hand sides may be negative.
func BuildDual(m *model.Model) (*Tableau, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	type leRow struct {
		coef   []float64
		rhs    float64
		source int
	}
	var rows []leRow
	for r, rN := 0, m.NumRows; r < rN; r++ {
		coef := m.A.RawRowView(r)
		rhs := m.B.At(r, 0)
		neg := append([]float64(nil), coef...)
		floats.Scale(-1, neg)

		switch m.S[r] {
		case model.LE:
			rows = append(rows, leRow{coef, rhs, r})
		case model.GE:
			rows = append(rows, leRow{neg, -rhs, r})
		case model.EQ:
			rows = append(rows, leRow{coef, rhs, r}, leRow{neg, -rhs, r})
		}
	}

	n := m.NumCols
	t := &Tableau{
		T:         mat.NewDense(len(rows)+1, n+len(rows)+1, nil),
		Basis:     make([]int, len(rows)),
		NumVars:   n,
		NumSlack:  len(rows),
		cost:      m.Cost(),
		direction: m.Direction,
		eps:       defaultEpsilon,
	}
	for r, lr := range rows {
		row := t.T.RawRowView(r)
		copy(row, lr.coef)
		row[n+r] = 1
		row[t.NumCols()] = lr.rhs
		t.Basis[r] = n + r
		t.slackRow = append(t.slackRow, lr.source)
	}
	t.installCost()

	return t, nil
}

// installCost writes -c into the objective row and restores canonical form
// by eliminating the cost of every basic column.
func (t *Tableau) installCost() {
	obj := t.ObjectiveRow()
	for j := range obj {
		obj[j] = 0
	}
	for j, c := range t.cost {
		obj[j] = -c
	}
	for i, b := range t.Basis {
		if f := obj[b]; f != 0 {
			floats.AddScaled(obj, -f, t.T.RawRowView(i))
			obj[b] = 0
		}
	}
}

// dropArtificial removes the artificial columns and the given rows, which
// must hold no basic artificial variable except redundant ones.
func (t *Tableau) dropArtificial(redundant map[int]bool) {
	keepCols := t.NumVars + t.NumSlack
	keepRows := t.NumRows() - len(redundant)

	next := mat.NewDense(keepRows+1, keepCols+1, nil)
	basis := make([]int, 0, keepRows)
	dst := 0
	for i := 0; i <= t.NumRows(); i++ {
		if redundant[i] {
			continue
		}
		src := t.T.RawRowView(i)
		row := next.RawRowView(dst)
		copy(row, src[:keepCols])
		row[keepCols] = src[t.NumCols()]
		if i < t.NumRows() {
			basis = append(basis, t.Basis[i])
		}
		dst++
	}

	t.T = next
	t.Basis = basis
	t.NumArtificial = 0
}

// AddSlackRow appends the constraint coef·x + s = rhs where s is a new slack
// column that becomes basic in the new row. coef must have NumCols()
// entries; basic columns are eliminated from the new row so the tableau stays
// canonical. Artificial columns must already be gone.
func (t *Tableau) AddSlackRow(coef []float64, rhs float64) error {
	if t.NumArtificial != 0 {
		return errors.New("cannot add rows while artificial columns are present")
	}
	if len(coef) != t.NumCols() {
		return errors.Errorf("mismatch number of columns: %d != %d", len(coef), t.NumCols())
	}

	cols := t.NumCols()
	next := mat.NewDense(t.NumRows()+2, cols+2, nil)
	for i := 0; i <= t.NumRows(); i++ {
		src := t.T.RawRowView(i)
		dstRow := i
		if i == t.NumRows() {
			dstRow = t.NumRows() + 1
		}
		row := next.RawRowView(dstRow)
		copy(row, src[:cols])
		row[cols+1] = src[cols]
	}
	row := next.RawRowView(t.NumRows())
	copy(row, coef)
	row[cols] = 1
	row[cols+1] = rhs
	for i, b := range t.Basis {
		if f := row[b]; f != 0 {
			floats.AddScaled(row, -f, next.RawRowView(i))
			row[b] = 0
		}
	}

	t.T = next
	t.Basis = append(t.Basis, cols)
	t.NumSlack++
	t.slackRow = append(t.slackRow, -1)

	return nil
}

// primalFeasible reports whether every RHS is non-negative.
func (t *Tableau) primalFeasible() bool {
	for i, iN := 0, t.NumRows(); i < iN; i++ {
		if t.RHS(i) < -t.eps {
			return false
		}
	}
	return true
}

// dualFeasible reports whether every reduced cost is non-negative.
func (t *Tableau) dualFeasible() bool {
	obj := t.ObjectiveRow()
	for j, jN := 0, t.NumCols(); j < jN; j++ {
		if obj[j] < -t.eps {
			return false
		}
	}
	return true
}
