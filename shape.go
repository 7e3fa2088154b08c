package jolt

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/detrina/jolt/parallel"
	poly "github.com/detrina/jolt/polynomial"
)

// Entry is a non-zero coefficient of one of the uniform constraint
// matrices. Row is the uniform constraint index, Col the uniform variable
// index. Const entries multiply the constant-one column instead of a
// witness variable.
type Entry struct {
	Row   int
	Col   int
	Const bool
	Val   Element
}

// R1CSShape holds the three sparse matrices of a single constraint step.
// The full constraint system over a trace is this shape repeated once per
// step, acting on each variable's per-step trace independently.
type R1CSShape struct {
	A, B, C []Entry

	NumCons int
	NumVars int
}

// ShapeBuilder produces the single-step constraint shape of a computation.
// The SNARK key derives everything else from that one shape and the step
// count; the full repeated shape exists only through FullShape's tensor
// rule.
type ShapeBuilder interface {
	SingleStepShape() (*R1CSShape, error)
}

// NewR1CSShape validates entry bounds and returns the shape. Every entry of
// every matrix must reference a row below numCons and, unless it is a
// constant entry, a column below numVars.
func NewR1CSShape(numCons, numVars int, a, b, c []Entry) (*R1CSShape, error) {
	for name, m := range map[string][]Entry{"A": a, "B": b, "C": c} {
		for i, e := range m {
			if e.Row < 0 || e.Row >= numCons {
				return nil, fmt.Errorf("%w: %s[%d] row %d, numCons %d", ErrInvalidIndex, name, i, e.Row, numCons)
			}
			if !e.Const && (e.Col < 0 || e.Col >= numVars) {
				return nil, fmt.Errorf("%w: %s[%d] col %d, numVars %d", ErrInvalidIndex, name, i, e.Col, numVars)
			}
		}
	}
	return &R1CSShape{A: a, B: b, C: c, NumCons: numCons, NumVars: numVars}, nil
}

// PaddedCons is the uniform constraint count rounded up to a power of two.
func (s *R1CSShape) PaddedCons() int { return nextPow2(s.NumCons) }

// PaddedVars is the uniform variable count rounded up to a power of two.
func (s *R1CSShape) PaddedVars() int { return nextPow2(s.NumVars) }

// Digest is a binding hash of the shape. It is absorbed into the transcript
// before anything else so that proofs are bound to the constraint system
// they were produced for. A value that fails to marshal must surface here;
// skipping it would leave the proof unbound from that entry.
func (s *R1CSShape) Digest() ([]byte, error) {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeInt(s.NumCons)
	writeInt(s.NumVars)
	for _, m := range [][]Entry{s.A, s.B, s.C} {
		writeInt(len(m))
		for _, e := range m {
			writeInt(e.Row)
			if e.Const {
				writeInt(-1)
			} else {
				writeInt(e.Col)
			}
			if _, err := e.Val.MarshalTo(h); err != nil {
				return nil, fmt.Errorf("jolt: hashing shape entry: %w", err)
			}
		}
	}
	return h.Sum(nil), nil
}

// FullEntry is a coordinate of the materialized step-repeated matrix, with
// global row and column indices.
type FullEntry struct {
	Row, Col int
	Val      Element
}

// FullShape materializes the step-repeated matrices over numSteps steps.
// Uniform entry (row, col, val) becomes (row*numSteps+t, col*numSteps+t,
// val) for every step t; constant entries all point at the single global
// constant column. Only used by tests and debugging, the prover and
// verifier never build it.
func (s *R1CSShape) FullShape(numSteps int) (a, b, c []FullEntry) {
	constCol := s.PaddedVars() * numSteps
	expand := func(m []Entry) []FullEntry {
		out := make([]FullEntry, 0, len(m)*numSteps)
		for _, e := range m {
			for t := 0; t < numSteps; t++ {
				col := constCol
				if !e.Const {
					col = e.Col*numSteps + t
				}
				out = append(out, FullEntry{Row: e.Row*numSteps + t, Col: col, Val: e.Val})
			}
		}
		return out
	}
	return expand(s.A), expand(s.B), expand(s.C)
}

// MultiplyVecUniform computes Az, Bz and Cz over the full step-repeated
// system without materializing it. z is the full assignment vector of
// length 2*PaddedVars()*numSteps with the constant one at index
// PaddedVars()*numSteps. Each output is a hypercube table of size
// PaddedCons()*numSteps.
func (s *R1CSShape) MultiplyVecUniform(z []Element, numSteps int) (az, bz, cz poly.MultiLin) {
	constIndex := s.PaddedVars() * numSteps
	if len(z) != 2*constIndex {
		panic(fmt.Sprintf("assignment of length %d, want %d", len(z), 2*constIndex))
	}
	size := s.PaddedCons() * numSteps
	mul := func(m []Entry) poly.MultiLin {
		out := poly.Zeros(Group, size)
		// steps write to disjoint indices, so workers never contend
		parallel.Execute(0, numSteps, func(tStart, tEnd int) {
			tmp := NewElement()
			for _, e := range m {
				for t := tStart; t < tEnd; t++ {
					col := constIndex
					if !e.Const {
						col = e.Col*numSteps + t
					}
					row := e.Row*numSteps + t
					tmp.Mul(e.Val, z[col])
					out[row] = out[row].Add(out[row], tmp)
				}
			}
		})
		return out
	}
	return mul(s.A), mul(s.B), mul(s.C)
}

// EvaluateUniform evaluates the three step-repeated matrices, seen as
// multilinear polynomials over (row, col), at the point (rx, ry). rx ranges
// over the padded constraint space and ry over twice the padded variable
// space, both most significant bit first.
func (s *R1CSShape) EvaluateUniform(rx, ry []Element, numSteps int) (va, vb, vc Element) {
	constIndex := s.PaddedVars() * numSteps
	tx := poly.NewEq(Group, rx).Evals()
	ty := poly.NewEq(Group, ry).Evals()
	if len(tx) != s.PaddedCons()*numSteps {
		panic(fmt.Sprintf("rx of %d variables for %d constraints", len(rx), s.PaddedCons()*numSteps))
	}
	if len(ty) != 2*constIndex {
		panic(fmt.Sprintf("ry of %d variables for %d columns", len(ry), 2*constIndex))
	}
	eval := func(m []Entry) Element {
		sum := NewElement()
		tmp := NewElement()
		for _, e := range m {
			for t := 0; t < numSteps; t++ {
				col := constIndex
				if !e.Const {
					col = e.Col*numSteps + t
				}
				tmp.Mul(e.Val, tx[e.Row*numSteps+t])
				tmp.Mul(tmp, ty[col])
				sum.Add(sum, tmp)
			}
		}
		return sum
	}
	return eval(s.A), eval(s.B), eval(s.C)
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func log2(n int) int {
	k := 0
	for 1<<k < n {
		k++
	}
	return k
}
