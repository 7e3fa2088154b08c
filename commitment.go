package jolt

import (
	poly "github.com/detrina/jolt/polynomial"
	"github.com/detrina/jolt/transcript"
)

// OpeningProof is an opaque proof that a committed multilinear polynomial
// takes a claimed value at a point. Its concrete type belongs to the
// commitment scheme that produced it.
type OpeningProof interface{}

// CommitmentScheme is the boundary between the SNARK and the polynomial
// commitment layer. Schemes bind multilinear polynomials given by their
// hypercube evaluation tables and later prove evaluations at arbitrary
// field points, with Fiat-Shamir challenges drawn from the shared
// transcript.
type CommitmentScheme interface {
	Commit(p poly.MultiLin) (Commitment, error)
	Open(p poly.MultiLin, point []Element, value Element, tr *transcript.Transcript) (OpeningProof, error)
	Verify(proof OpeningProof, point []Element, value Element, c Commitment, tr *transcript.Transcript) error
}
