package jolt

import "errors"

var (
	// ErrInvalidIndex is returned when a constraint entry references a row or
	// column outside the shape's declared bounds.
	ErrInvalidIndex = errors.New("jolt: constraint index out of bounds")
	// ErrInvalidSumcheckProof is returned by Verify when a sum-check final
	// claim does not match the openings it is checked against.
	ErrInvalidSumcheckProof = errors.New("jolt: invalid sumcheck proof")
	// ErrInvalidWitnessLength is returned when the witness segments handed to
	// the prover do not match the key's step count.
	ErrInvalidWitnessLength = errors.New("jolt: invalid witness length")
)
