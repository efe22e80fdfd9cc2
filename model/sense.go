package model

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Sense is the relation operator of a constraint row.
type Sense int

const (
	LE Sense = iota // <=
	GE              // >=
	EQ              // =
)

func (s Sense) String() string {
	switch s {
	case LE:
		return "<="
	case GE:
		return ">="
	case EQ:
		return "="
	default:
		return "?"
	}
}

// Valid reports whether s is one of LE, GE or EQ.
func (s Sense) Valid() bool {
	return s == LE || s == GE || s == EQ
}

// Flip returns the relation obtained by multiplying the row by a negative number.
func (s Sense) Flip() Sense {
	switch s {
	case LE:
		return GE
	case GE:
		return LE
	default:
		return s
	}
}

// ParseSense accepts the usual spellings of the three relations.
func ParseSense(str string) (Sense, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "<=", "≤", "le", "leq":
		return LE, nil
	case ">=", "≥", "ge", "geq":
		return GE, nil
	case "=", "==", "eq":
		return EQ, nil
	}

	return LE, errors.Wrapf(ErrUnknownSense, "%q", str)
}

func (s Sense) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Wrapf(ErrUnknownSense, "%d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Sense) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.Wrap(err, "constraint sense must be a string")
	}

	parsed, err := ParseSense(str)
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}
