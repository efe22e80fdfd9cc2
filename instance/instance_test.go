package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/tableau/model"
)

func TestReadMPS(t *testing.T) {
	m, err := NewReader("testdata/classic.mps").Read()
	require.NoError(t, err)

	assert.Equal(t, 2, m.NumCols)
	assert.Equal(t, 4, m.NumRows)
	assert.Equal(t, model.Minimize, m.Direction)
	assert.Equal(t, []float64{-5, -4}, m.C.RawRowView(0))
	assert.Equal(t, []float64{6, 4}, m.A.RawRowView(0))
	assert.Equal(t, []float64{1, 0}, m.A.RawRowView(2))
	assert.Equal(t, []model.Sense{model.LE, model.LE, model.LE, model.LE}, m.S)
	assert.Equal(t, []int{0, 1}, m.IntegerIndices())
	assert.Equal(t, "X1", m.V[0].Name)
	assert.Equal(t, "X2", m.V[1].Name)
}

func TestReadMPSRangesAndBounds(t *testing.T) {
	m, err := Load("testdata/ranged.mps")
	require.NoError(t, err)

	assert.Equal(t, []model.Sense{model.GE, model.EQ, model.GE, model.LE, model.GE}, m.S)
	assert.Equal(t, []float64{2, 1, 5, 8, 1}, m.B.RawMatrix().Data)
	assert.Equal(t, []float64{0, 1}, m.A.RawRowView(4))
	assert.Empty(t, m.IntegerIndices())
	assert.NoError(t, m.Check([]float64{3, 2}, 1e-9))
}

func TestReadMPSMissingFile(t *testing.T) {
	_, err := NewReader("testdata/missing.mps").Read()
	assert.Error(t, err)
}

func TestLoadDocuments(t *testing.T) {
	m, err := Load("testdata/classic.yaml")
	require.NoError(t, err)

	assert.Equal(t, model.Maximize, m.Direction)
	assert.Equal(t, []float64{5, 4}, m.C.RawRowView(0))
	assert.Equal(t, []float64{24, 6}, m.B.RawMatrix().Data)
	assert.Equal(t, []model.Sense{model.LE, model.LE}, m.S)
	assert.Equal(t, []int{0, 1}, m.IntegerIndices())
	assert.Equal(t, "y", m.V[1].Name)

	m, err = Load("testdata/covering.json")
	require.NoError(t, err)
	assert.Equal(t, model.Minimize, m.Direction)
	assert.Equal(t, []model.Sense{model.GE, model.GE}, m.S)
	assert.Equal(t, 3.0, m.A.At(1, 0))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("testdata/bad_sense.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown constraint sense")

	_, err = Load("testdata/missing.yaml")
	assert.Error(t, err)

	_, err = Load("testdata/problem.lp")
	assert.Error(t, err)
}

func TestParseDocumentValidation(t *testing.T) {
	for name, doc := range map[string]string{
		"ragged row":     "objective: [1, 2]\nconstraints:\n- {coefficients: [1], sense: le, rhs: 1}\n",
		"no constraints": "objective: [1, 2]\n",
		"bad direction":  "direction: sideways\nobjective: [1]\nconstraints:\n- {coefficients: [1], sense: le, rhs: 1}\n",
		"bad integer":    "objective: [1]\nconstraints:\n- {coefficients: [1], sense: le, rhs: 1}\ninteger: [3]\n",
		"names":          "objective: [1]\nvariables: [a, b]\nconstraints:\n- {coefficients: [1], sense: le, rhs: 1}\n",
		"not a document": "objective: {a: 1}\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDocument([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestDocumentYAML(t *testing.T) {
	m, err := model.New([]float64{1, 2}, [][]float64{{1, 1}, {1, -1}}, []float64{4, 1}, []model.Sense{model.LE, model.GE})
	require.NoError(t, err)
	m.Direction = model.Minimize
	require.NoError(t, m.SetInteger(1))

	out, err := NewDocument(m).YAML()
	require.NoError(t, err)
	assert.Contains(t, string(out), "direction: min")

	back, err := ParseDocument(out)
	require.NoError(t, err)
	assert.Equal(t, m.S, back.S)
	assert.Equal(t, m.Direction, back.Direction)
	assert.Equal(t, []int{1}, back.IntegerIndices())
	assert.Equal(t, m.A.RawMatrix().Data, back.A.RawMatrix().Data)
}
