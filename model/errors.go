package model

import "github.com/pkg/errors"

var (
	// ErrEmptyModel is returned for models without variables or constraints.
	ErrEmptyModel = errors.New("model: no variables or no constraints")

	// ErrDimensionMismatch is returned when c, A, b or the senses disagree in size.
	ErrDimensionMismatch = errors.New("model: dimension mismatch")

	// ErrUnknownSense is returned for relation operators other than <=, >= and =.
	ErrUnknownSense = errors.New("model: unknown constraint sense")

	// ErrIndexOutOfRange is returned for row or variable indices outside the model.
	ErrIndexOutOfRange = errors.New("model: index out of range")

	// ErrInfeasiblePoint is returned by Check when a point violates the model.
	ErrInfeasiblePoint = errors.New("model: point violates constraints")
)
