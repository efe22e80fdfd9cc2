package instance

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"q.log/tableau/model"
)

// Document is the YAML/JSON form of a problem:
//
//	direction: max
//	objective: [3, 2]
//	constraints:
//	- {coefficients: [1, 2], sense: "<=", rhs: 4}
//	integer: [0]
//
// Senses must be quoted in YAML; "le", "ge" and "eq" work as well.
type Document struct {
	Name        string       `json:"name,omitempty"`
	Direction   string       `json:"direction,omitempty"`
	Variables   []string     `json:"variables,omitempty"`
	Objective   []float64    `json:"objective"`
	Constraints []Constraint `json:"constraints"`
	Integer     []int        `json:"integer,omitempty"`
}

type Constraint struct {
	Name         string      `json:"name,omitempty"`
	Coefficients []float64   `json:"coefficients"`
	Sense        model.Sense `json:"sense"`
	RHS          float64     `json:"rhs"`
}

// ParseDocument decodes a YAML or JSON document into a model.
func ParseDocument(data []byte) (*model.Model, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding problem document")
	}
	return doc.Model()
}

// Model validates the document and builds the model it describes.
func (d *Document) Model() (*model.Model, error) {
	dir, err := model.ParseDirection(d.Direction)
	if err != nil {
		return nil, err
	}

	a := make([][]float64, len(d.Constraints))
	b := make([]float64, len(d.Constraints))
	senses := make([]model.Sense, len(d.Constraints))
	for i, c := range d.Constraints {
		a[i], b[i], senses[i] = c.Coefficients, c.RHS, c.Sense
	}

	m, err := model.New(d.Objective, a, b, senses)
	if err != nil {
		return nil, err
	}
	m.Direction = dir

	if len(d.Variables) > 0 {
		if len(d.Variables) != m.NumCols {
			return nil, errors.Wrapf(model.ErrDimensionMismatch, "%d variable names for %d variables", len(d.Variables), m.NumCols)
		}
		for j, name := range d.Variables {
			m.V[j].Name = name
		}
	}
	if err := m.SetInteger(d.Integer...); err != nil {
		return nil, err
	}

	return m, nil
}

// NewDocument is the inverse of Document.Model.
func NewDocument(m *model.Model) *Document {
	d := &Document{
		Direction: m.Direction.String(),
		Objective: append([]float64(nil), m.C.RawRowView(0)...),
		Integer:   m.IntegerIndices(),
	}
	for _, v := range m.V {
		d.Variables = append(d.Variables, v.Name)
	}
	for i, iN := 0, m.NumRows; i < iN; i++ {
		d.Constraints = append(d.Constraints, Constraint{
			Coefficients: append([]float64(nil), m.A.RawRowView(i)...),
			Sense:        m.S[i],
			RHS:          m.B.At(i, 0),
		})
	}
	return d
}

// YAML renders the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	out, err := yaml.Marshal(d)
	return out, errors.Wrap(err, "encoding problem document")
}

// Load reads a problem file, choosing the format by extension: .mps for
// free MPS, .yaml, .yml or .json for documents.
func Load(path string) (*model.Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mps":
		return NewReader(path).Read()
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading problem file")
		}
		m, err := ParseDocument(data)
		return m, errors.Wrapf(err, "loading %s", path)
	}
	return nil, errors.Errorf("unsupported problem file %q: want .mps, .yaml, .yml or .json", path)
}
