package simplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/tableau/model"
)

const delta = 0.0000001 // acceptable numerical deviation for test results

func mustModel(t *testing.T, c []float64, a [][]float64, b []float64, senses []model.Sense) *model.Model {
	t.Helper()

	m, err := model.New(c, a, b, senses)
	require.NoError(t, err)
	return m
}

// assertCanonical checks the unit-column form of every basic column and a
// zero reduced cost for it.
func assertCanonical(t *testing.T, tab *Tableau) {
	t.Helper()

	obj := tab.ObjectiveRow()
	for i, b := range tab.Basis {
		for r := 0; r < tab.NumRows(); r++ {
			want := 0.0
			if r == i {
				want = 1
			}
			assert.InDelta(t, want, tab.T.At(r, b), delta, "basis column %d row %d", b, r)
		}
		assert.InDelta(t, 0, obj[b], delta, "reduced cost of basic column %d", b)
	}
}

func TestBuildAllLessEqual(t *testing.T) {
	m := mustModel(t, []float64{3, 2, 4}, [][]float64{{1, 1, 1}, {2, 0, 1}, {0, 1, 2}}, []float64{5, 6, 5}, nil)

	tab, err := Build(m)
	require.NoError(t, err)

	assert.Equal(t, 3, tab.NumVars)
	assert.Equal(t, 3, tab.NumSlack)
	assert.Equal(t, 0, tab.NumArtificial)
	assert.Equal(t, []int{3, 4, 5}, tab.Basis)

	r, c := tab.T.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 7, c)
	assert.Equal(t, []float64{-3, -2, -4, 0, 0, 0, 0}, tab.ObjectiveRow())
	assertCanonical(t, tab)
}

func TestBuildMixedSenses(t *testing.T) {
	m := mustModel(t,
		[]float64{1, 2},
		[][]float64{{1, 1}, {1, -1}, {0, 1}},
		[]float64{4, 1, 1},
		[]model.Sense{model.LE, model.GE, model.EQ},
	)

	tab, err := Build(m)
	require.NoError(t, err)

	// slack for row 0, surplus for row 1; artificial for rows 1 and 2
	assert.Equal(t, 2, tab.NumSlack)
	assert.Equal(t, 2, tab.NumArtificial)
	assert.Equal(t, []int{2, 4, 5}, tab.Basis)
	assert.Equal(t, []float64{1, -1, 0, -1, 1, 0, 1}, tab.T.RawRowView(1))

	// Phase I row: minus the sum of the artificial rows
	assert.Equal(t, []float64{-1, 0, 0, 1, 0, 0, -2}, tab.ObjectiveRow())
	assertCanonical(t, tab)
}

func TestBuildNegativeRHS(t *testing.T) {
	m := mustModel(t, []float64{1, 1}, [][]float64{{1, 0}, {0, 1}}, []float64{-1, 2}, nil)

	tab, err := Build(m)
	require.NoError(t, err)

	// x1 <= -1 becomes -x1 >= 1
	assert.Equal(t, 1, tab.NumArtificial)
	assert.Equal(t, []float64{-1, 0, -1, 0, 1, 1}, tab.T.RawRowView(0))
	// the caller's model is untouched
	assert.Equal(t, -1.0, m.B.At(0, 0))
	assert.Equal(t, model.LE, m.S[0])
}

func TestBuildRejectsMalformedModel(t *testing.T) {
	m := model.NewModel(2, 2)
	m.S[1] = model.Sense(7)

	_, err := Build(m)
	assert.ErrorIs(t, err, model.ErrUnknownSense)

	_, err = BuildDual(m)
	assert.ErrorIs(t, err, model.ErrUnknownSense)
}

func TestBuildDual(t *testing.T) {
	m := mustModel(t,
		[]float64{-1, -1},
		[][]float64{{1, 2}, {3, 1}, {1, 1}},
		[]float64{4, 6, 5},
		[]model.Sense{model.GE, model.GE, model.EQ},
	)

	tab, err := BuildDual(m)
	require.NoError(t, err)

	assert.Equal(t, 4, tab.NumRows())
	assert.Equal(t, 0, tab.NumArtificial)
	assert.Equal(t, []int{2, 3, 4, 5}, tab.Basis)
	assert.Equal(t, []float64{-1, -2, 1, 0, 0, 0, -4}, tab.T.RawRowView(0))
	assert.Equal(t, []float64{1, 1, 0, 0, 1, 0, 5}, tab.T.RawRowView(2))
	assert.Equal(t, []float64{-1, -1, 0, 0, 0, 1, -5}, tab.T.RawRowView(3))
	assert.True(t, tab.dualFeasible())
	assert.False(t, tab.primalFeasible())
}

func TestPivot(t *testing.T) {
	m := mustModel(t, []float64{3, 2}, [][]float64{{1, 2}, {4, 0}}, []float64{4, 12}, nil)
	tab, err := Build(m)
	require.NoError(t, err)

	require.NoError(t, tab.Pivot(1, 0))

	assert.Equal(t, []int{2, 0}, tab.Basis)
	assert.Equal(t, []float64{1, 0, 0, 0.25, 3}, tab.T.RawRowView(1))
	assert.Equal(t, []float64{0, 2, 1, -0.25, 1}, tab.T.RawRowView(0))
	assert.Equal(t, []float64{0, -2, 0, 0.75, 9}, tab.ObjectiveRow())
	assertCanonical(t, tab)
}

func TestPivotErrors(t *testing.T) {
	m := mustModel(t, []float64{1, 1}, [][]float64{{1, 0}, {0, 1}}, []float64{1, 1}, nil)
	tab, err := Build(m)
	require.NoError(t, err)

	assert.ErrorIs(t, tab.Pivot(0, 1), ErrZeroPivot)
	assert.Error(t, tab.Pivot(5, 0))
	assert.Error(t, tab.Pivot(0, -1))
	// a failed pivot leaves the basis alone
	assert.Equal(t, []int{2, 3}, tab.Basis)
}

func TestAddSlackRowKeepsCanonicalForm(t *testing.T) {
	m := mustModel(t, []float64{3, 2}, [][]float64{{1, 2}, {4, 0}}, []float64{4, 12}, nil)
	res, err := Solve(m)
	require.NoError(t, err)
	require.Equal(t, Optimal, res.Status)

	tab := res.Tableau
	// x2 <= 0 expressed on the tableau columns; x2 is basic and gets eliminated
	coef := make([]float64, tab.NumCols())
	coef[1] = 1
	require.NoError(t, tab.AddSlackRow(coef, 0))

	assert.Equal(t, 3, tab.NumRows())
	assert.Equal(t, 5, tab.NumCols())
	assert.Equal(t, 4, tab.Basis[2])
	assert.Less(t, tab.RHS(2), 0.0)
	assertCanonical(t, tab)

	err = tab.AddSlackRow([]float64{1}, 0)
	assert.Error(t, err)
}

func TestAddSlackRowRejectsPhaseOne(t *testing.T) {
	m := mustModel(t, []float64{1}, [][]float64{{1}}, []float64{1}, []model.Sense{model.EQ})
	tab, err := Build(m)
	require.NoError(t, err)

	assert.Error(t, tab.AddSlackRow(make([]float64, tab.NumCols()), 0))
}

func TestSlackSource(t *testing.T) {
	m := mustModel(t, []float64{1, 1}, [][]float64{{1, 1}, {1, 0}, {0, 1}}, []float64{4, 1, 2}, []model.Sense{model.LE, model.EQ, model.GE})
	tab, err := Build(m)
	require.NoError(t, err)

	// x1 x2 | s(row 0) s(row 2) | two artificials
	assert.Equal(t, -1, tab.SlackSource(0))
	assert.Equal(t, 0, tab.SlackSource(2))
	assert.Equal(t, 2, tab.SlackSource(3))
	assert.Equal(t, -1, tab.SlackSource(4))

	dual, err := BuildDual(m)
	require.NoError(t, err)
	// the equality row becomes two slack rows
	for k, want := range []int{0, 1, 1, 2} {
		assert.Equal(t, want, dual.SlackSource(2+k))
	}

	require.NoError(t, dual.AddSlackRow(make([]float64, dual.NumCols()), 1))
	assert.Equal(t, -1, dual.SlackSource(dual.NumCols()-1))
}
