// Package sumcheck implements the sum-check protocol: the prover reduces a
// claimed sum over the boolean hypercube to a single point evaluation, one
// variable per round. Each round it sends the univariate polynomial obtained
// by summing out all but one variable; the verifier checks g(0)+g(1) against
// the running claim, then binds the free variable to a transcript challenge.
package sumcheck

import (
	"errors"
	"fmt"
	"sync"

	"github.com/drand/kyber"

	"github.com/detrina/jolt/parallel"
	poly "github.com/detrina/jolt/polynomial"
	"github.com/detrina/jolt/transcript"
)

// Group has points on it and can create scalar from the scalar fields
type Group = kyber.Group

// Scalar of the field of the curve
type Scalar = kyber.Scalar

// ErrMalformedProof is returned when a round polynomial breaks the protocol:
// wrong round count, degree above the bound, or g(0)+g(1) not matching the
// running claim.
var ErrMalformedProof = errors.New("malformed sum-check proof")

// Proof is the transcript of one sum-check run: one univariate polynomial
// per round, coefficients in increasing degree order.
type Proof struct {
	RoundPolys []poly.Poly
}

// ProveCubicWithAdditiveTerm runs numRounds rounds of sum-check over four
// tables combined by comb, which must have total degree at most 3 per
// variable (the Spartan outer combination eq * (Az*Bz - Cz) is the driving
// case). The tables are folded in place and are reduced to a single entry
// each when the function returns; those final entries are returned alongside
// the proof and the challenge point.
func ProveCubicWithAdditiveTerm(
	g Group,
	claim Scalar,
	numRounds int,
	pA, pB, pC, pD *poly.MultiLin,
	comb func(a, b, c, d Scalar) Scalar,
	tr *transcript.Transcript,
) (Proof, []Scalar, []Scalar, error) {
	rs := make([]Scalar, 0, numRounds)
	polys := make([]poly.Poly, 0, numRounds)

	for round := 0; round < numRounds; round++ {
		evals := roundEvaluationsCubic(g, *pA, *pB, *pC, *pD, comb)
		// absorbed in canonical form: no trailing zero coefficients
		roundPoly := poly.FromEvaluations(g, evals).Normalize()
		tr.AbsorbScalar("sc-poly", roundPoly.Coeffs()...)
		r, err := tr.Squeeze("sc-r")
		if err != nil {
			return Proof{}, nil, nil, err
		}
		rs = append(rs, r)
		polys = append(polys, roundPoly)

		pA.Fold(r)
		pB.Fold(r)
		pC.Fold(r)
		pD.Fold(r)
	}

	finals := []Scalar{(*pA)[0], (*pB)[0], (*pC)[0], (*pD)[0]}
	return Proof{RoundPolys: polys}, rs, finals, nil
}

// ProveQuad is the degree-2 variant over two tables, used by the Spartan
// inner sum-check with comb(a, b) = a*b.
func ProveQuad(
	g Group,
	claim Scalar,
	numRounds int,
	pA, pB *poly.MultiLin,
	comb func(a, b Scalar) Scalar,
	tr *transcript.Transcript,
) (Proof, []Scalar, []Scalar, error) {
	rs := make([]Scalar, 0, numRounds)
	polys := make([]poly.Poly, 0, numRounds)

	for round := 0; round < numRounds; round++ {
		evals := roundEvaluationsQuad(g, *pA, *pB, comb)
		roundPoly := poly.FromEvaluations(g, evals).Normalize()
		tr.AbsorbScalar("sc-poly", roundPoly.Coeffs()...)
		r, err := tr.Squeeze("sc-r")
		if err != nil {
			return Proof{}, nil, nil, err
		}
		rs = append(rs, r)
		polys = append(polys, roundPoly)

		pA.Fold(r)
		pB.Fold(r)
	}

	finals := []Scalar{(*pA)[0], (*pB)[0]}
	return Proof{RoundPolys: polys}, rs, finals, nil
}

// Verify replays the transcript: each round polynomial must stay within
// degreeBound and satisfy g(0)+g(1) == claim, after which the claim becomes
// g(r) for the squeezed challenge r. Returns the final claim and the
// challenge point for the caller's terminal check.
func (p Proof) Verify(
	g Group,
	claim Scalar,
	numRounds, degreeBound int,
	tr *transcript.Transcript,
) (Scalar, []Scalar, error) {
	if len(p.RoundPolys) != numRounds {
		return nil, nil, fmt.Errorf("%w: %d round polynomials for %d rounds", ErrMalformedProof, len(p.RoundPolys), numRounds)
	}

	e := claim.Clone()
	rs := make([]Scalar, 0, numRounds)
	for round, rp := range p.RoundPolys {
		if rp.Degree() > degreeBound {
			return nil, nil, fmt.Errorf("%w: round %d degree %d exceeds bound %d", ErrMalformedProof, round, rp.Degree(), degreeBound)
		}
		if !rp.ZeroOne().Equal(e) {
			return nil, nil, fmt.Errorf("%w: round %d claim mismatch", ErrMalformedProof, round)
		}
		tr.AbsorbScalar("sc-poly", rp.Coeffs()...)
		r, err := tr.Squeeze("sc-r")
		if err != nil {
			return nil, nil, err
		}
		rs = append(rs, r)
		e = rp.Eval(r)
	}
	return e, rs, nil
}

// roundEvaluationsCubic returns the round polynomial's values at t=0,1,2,3.
// Each table's restriction to the free variable is linear, so the values at
// 2 and 3 extend by repeated addition of hi-lo.
func roundEvaluationsCubic(g Group, a, b, c, d poly.MultiLin, comb func(x, y, z, w Scalar) Scalar) []Scalar {
	half := len(a) / 2
	sums := make([]Scalar, 4)
	for t := range sums {
		sums[t] = g.Scalar().Zero()
	}
	var mu sync.Mutex

	parallel.Execute(0, half, func(start, end int) {
		local := make([]Scalar, 4)
		for t := range local {
			local[t] = g.Scalar().Zero()
		}
		at := make([]Scalar, 4)
		bt := make([]Scalar, 4)
		ct := make([]Scalar, 4)
		dt := make([]Scalar, 4)
		for i := start; i < end; i++ {
			extend(g, a[i], a[i+half], at)
			extend(g, b[i], b[i+half], bt)
			extend(g, c[i], c[i+half], ct)
			extend(g, d[i], d[i+half], dt)
			for t := 0; t < 4; t++ {
				local[t].Add(local[t], comb(at[t], bt[t], ct[t], dt[t]))
			}
		}
		mu.Lock()
		for t := 0; t < 4; t++ {
			sums[t].Add(sums[t], local[t])
		}
		mu.Unlock()
	})
	return sums
}

func roundEvaluationsQuad(g Group, a, b poly.MultiLin, comb func(x, y Scalar) Scalar) []Scalar {
	half := len(a) / 2
	sums := make([]Scalar, 3)
	for t := range sums {
		sums[t] = g.Scalar().Zero()
	}
	var mu sync.Mutex

	parallel.Execute(0, half, func(start, end int) {
		local := make([]Scalar, 3)
		for t := range local {
			local[t] = g.Scalar().Zero()
		}
		at := make([]Scalar, 3)
		bt := make([]Scalar, 3)
		for i := start; i < end; i++ {
			extend(g, a[i], a[i+half], at)
			extend(g, b[i], b[i+half], bt)
			for t := 0; t < 3; t++ {
				local[t].Add(local[t], comb(at[t], bt[t]))
			}
		}
		mu.Lock()
		for t := 0; t < 3; t++ {
			sums[t].Add(sums[t], local[t])
		}
		mu.Unlock()
	})
	return sums
}

// extend fills out with the values at t = 0..len(out)-1 of the line through
// (0, lo) and (1, hi).
func extend(g Group, lo, hi Scalar, out []Scalar) {
	step := g.Scalar().Sub(hi, lo)
	out[0] = lo
	out[1] = hi
	for t := 2; t < len(out); t++ {
		out[t] = g.Scalar().Add(out[t-1], step)
	}
}
