// Package jolt implements a Spartan SNARK specialized to uniform repeated
// constraint systems: one small R1CS shape applied independently at every
// step of an execution trace. The prover never materializes the full
// constraint matrices; both sum-checks exploit the Kronecker structure of
// the repeated system. Witness polynomials are committed per variable
// segment and opened in one batched multilinear opening.
package jolt

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/detrina/jolt/logger"
	poly "github.com/detrina/jolt/polynomial"
	"github.com/detrina/jolt/sumcheck"
	"github.com/detrina/jolt/transcript"
)

// UniformSpartanKey is the proving and verification key of a uniform
// repeated system: the single step shape plus the trace geometry derived
// from it. The digest binds both and seeds every transcript.
type UniformSpartanKey struct {
	Shape    *R1CSShape
	NumSteps int

	// NumConsTotal and NumVarsTotal are the padded constraint and variable
	// counts of the full repeated system.
	NumConsTotal int
	NumVarsTotal int

	Digest []byte
}

// SetupPrecommitted derives the key for a trace of numSteps repetitions of
// the builder's shape. The step count must be a power of two so that every
// variable's per-step trace is itself a hypercube table.
func SetupPrecommitted(builder ShapeBuilder, numSteps int) (*UniformSpartanKey, error) {
	if numSteps < 1 || numSteps&(numSteps-1) != 0 {
		return nil, fmt.Errorf("jolt: step count %d is not a power of two", numSteps)
	}
	shape, err := builder.SingleStepShape()
	if err != nil {
		return nil, fmt.Errorf("jolt: building shape: %w", err)
	}

	sd, err := shape.Digest()
	if err != nil {
		return nil, err
	}
	h := sha256.New()
	h.Write(sd)
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(numSteps))
	h.Write(buf[:])

	return &UniformSpartanKey{
		Shape:        shape,
		NumSteps:     numSteps,
		NumConsTotal: shape.PaddedCons() * numSteps,
		NumVarsTotal: shape.PaddedVars() * numSteps,
		Digest:       h.Sum(nil),
	}, nil
}

// UniformSpartanProof proves satisfiability of a uniform repeated system.
type UniformSpartanProof struct {
	// WitnessComs commits each uniform variable's per-step trace.
	WitnessComs []Commitment

	Outer       sumcheck.Proof
	OuterClaims [3]Element

	Inner        sumcheck.Proof
	SegmentEvals []Element

	Opening OpeningProof
}

// Prove produces a proof that the witness satisfies the key's repeated
// system. witness holds one segment per uniform variable, each of length
// NumSteps: witness[i][t] is variable i's value at step t.
func Prove(key *UniformSpartanKey, scheme CommitmentScheme, witness [][]Element, tr *transcript.Transcript) (*UniformSpartanProof, error) {
	log := logger.Logger()
	start := time.Now()

	if len(witness) != key.Shape.NumVars {
		return nil, fmt.Errorf("%w: %d segments for %d variables", ErrInvalidWitnessLength, len(witness), key.Shape.NumVars)
	}
	for i, seg := range witness {
		if len(seg) != key.NumSteps {
			return nil, fmt.Errorf("%w: segment %d has %d steps, want %d", ErrInvalidWitnessLength, i, len(seg), key.NumSteps)
		}
	}

	coms := make([]Commitment, len(witness))
	for i, seg := range witness {
		com, err := scheme.Commit(poly.MultiLin(seg))
		if err != nil {
			return nil, fmt.Errorf("jolt: committing segment %d: %w", i, err)
		}
		coms[i] = com
	}

	tr.AbsorbBytes("vk", key.Digest)
	tr.AbsorbPoint("U", coms...)

	numRoundsX := log2(key.NumConsTotal)
	numRoundsY := log2(key.NumVarsTotal) + 1
	tau, err := squeezeMany(tr, "t", numRoundsX)
	if err != nil {
		return nil, err
	}

	// full assignment: witness segments, zero padding, then the constant one
	z := make([]Element, 2*key.NumVarsTotal)
	for i, seg := range witness {
		for t, v := range seg {
			z[i*key.NumSteps+t] = v.Clone()
		}
	}
	for i := len(witness) * key.NumSteps; i < len(z); i++ {
		z[i] = NewElement()
	}
	z[key.NumVarsTotal] = NewElement().One()

	az, bz, cz := key.Shape.MultiplyVecUniform(z, key.NumSteps)
	eqTau := poly.NewEq(Group, tau).Evals()
	log.Debug().Dur("took", time.Since(start)).Int("steps", key.NumSteps).Msg("spartan witness expansion")

	// outer sum-check: sum_x eq(tau, x) * (Az(x)*Bz(x) - Cz(x)) = 0
	combOuter := func(e, a, b, c poly.Scalar) poly.Scalar {
		if e.Equal(zero) {
			return NewElement()
		}
		t := NewElement().Mul(a, b)
		t.Sub(t, c)
		if t.Equal(zero) {
			return t
		}
		return t.Mul(t, e)
	}
	outer, rx, outerFinals, err := sumcheck.ProveCubicWithAdditiveTerm(
		Group, NewElement(), numRoundsX, &eqTau, &az, &bz, &cz, combOuter, tr)
	if err != nil {
		return nil, err
	}
	claimAz, claimBz, claimCz := outerFinals[1], outerFinals[2], outerFinals[3]
	tr.AbsorbScalar("claims_outer", claimAz, claimBz, claimCz)
	r, err := tr.Squeeze("r")
	if err != nil {
		return nil, err
	}

	// inner sum-check: the three matrix claims collapse into one random
	// linear combination, proven as sum_col RLC(col) * z(col)
	joint := NewElement().Mul(r, claimBz)
	joint.Add(joint, claimAz)
	tmp := NewElement().Mul(r, r)
	tmp.Mul(tmp, claimCz)
	joint.Add(joint, tmp)

	rlc := key.rlcTable(rx, r)
	zTab := poly.MultiLin(z)
	combInner := func(a, b poly.Scalar) poly.Scalar {
		if a.Equal(zero) || b.Equal(zero) {
			return NewElement()
		}
		return NewElement().Mul(a, b)
	}
	inner, ry, _, err := sumcheck.ProveQuad(Group, joint, numRoundsY, &rlc, &zTab, combInner, tr)
	if err != nil {
		return nil, err
	}

	// open every segment at the step coordinates of ry, then batch the
	// openings under one challenge
	nPrefix := numRoundsY - log2(key.NumSteps)
	ryPoint := ry[nPrefix:]
	evals := make([]Element, len(witness))
	for i, seg := range witness {
		evals[i] = poly.MultiLin(seg).Evaluate(ryPoint)
	}
	tr.AbsorbScalar("evals", evals...)
	c, err := tr.Squeeze("c")
	if err != nil {
		return nil, err
	}

	jointPoly := poly.Zeros(Group, key.NumSteps)
	jointVal := NewElement()
	cp := NewElement().One()
	for i, seg := range witness {
		for t, v := range seg {
			tmp.Mul(cp, v)
			jointPoly[t].Add(jointPoly[t], tmp)
		}
		tmp.Mul(cp, evals[i])
		jointVal.Add(jointVal, tmp)
		cp.Mul(cp, c)
	}
	opening, err := scheme.Open(jointPoly, ryPoint, jointVal, tr)
	if err != nil {
		return nil, fmt.Errorf("jolt: opening witness segments: %w", err)
	}

	log.Debug().Dur("took", time.Since(start)).Msg("spartan prove")
	return &UniformSpartanProof{
		WitnessComs:  coms,
		Outer:        outer,
		OuterClaims:  [3]Element{claimAz, claimBz, claimCz},
		Inner:        inner,
		SegmentEvals: evals,
		Opening:      opening,
	}, nil
}

// Verify checks a proof against the key. Any Fiat-Shamir divergence, claim
// mismatch or opening failure is reported as a wrapped typed error.
func Verify(key *UniformSpartanKey, scheme CommitmentScheme, proof *UniformSpartanProof, tr *transcript.Transcript) error {
	if len(proof.WitnessComs) != key.Shape.NumVars {
		return fmt.Errorf("%w: %d segment commitments for %d variables", ErrInvalidWitnessLength, len(proof.WitnessComs), key.Shape.NumVars)
	}
	if len(proof.SegmentEvals) != key.Shape.NumVars {
		return fmt.Errorf("%w: %d segment evaluations for %d variables", ErrInvalidWitnessLength, len(proof.SegmentEvals), key.Shape.NumVars)
	}

	tr.AbsorbBytes("vk", key.Digest)
	tr.AbsorbPoint("U", proof.WitnessComs...)

	numRoundsX := log2(key.NumConsTotal)
	numRoundsY := log2(key.NumVarsTotal) + 1
	tau, err := squeezeMany(tr, "t", numRoundsX)
	if err != nil {
		return err
	}

	outerFinal, rx, err := proof.Outer.Verify(Group, NewElement(), numRoundsX, 3, tr)
	if err != nil {
		return fmt.Errorf("outer sumcheck: %w", err)
	}
	claimAz, claimBz, claimCz := proof.OuterClaims[0], proof.OuterClaims[1], proof.OuterClaims[2]
	expected := NewElement().Mul(claimAz, claimBz)
	expected.Sub(expected, claimCz)
	expected.Mul(expected, poly.NewEq(Group, tau).Evaluate(rx))
	if !outerFinal.Equal(expected) {
		return fmt.Errorf("outer final claim: %w", ErrInvalidSumcheckProof)
	}

	tr.AbsorbScalar("claims_outer", claimAz, claimBz, claimCz)
	r, err := tr.Squeeze("r")
	if err != nil {
		return err
	}
	joint := NewElement().Mul(r, claimBz)
	joint.Add(joint, claimAz)
	tmp := NewElement().Mul(r, r)
	tmp.Mul(tmp, claimCz)
	joint.Add(joint, tmp)

	innerFinal, ry, err := proof.Inner.Verify(Group, joint, numRoundsY, 2, tr)
	if err != nil {
		return fmt.Errorf("inner sumcheck: %w", err)
	}

	tr.AbsorbScalar("evals", proof.SegmentEvals...)
	c, err := tr.Squeeze("c")
	if err != nil {
		return err
	}

	// z(ry) from the segment evaluations: ry[0] selects the witness half
	// against the (1, 0, ..., 0) half, ry[1:nPrefix] selects the segment
	nPrefix := numRoundsY - log2(key.NumSteps)
	ryPoint := ry[nPrefix:]
	evalX := NewElement().One()
	for _, rj := range ry[1:] {
		tmp.Sub(one, rj)
		evalX.Mul(evalX, tmp)
	}
	evalW := NewElement()
	sel := NewElement()
	for i, ev := range proof.SegmentEvals {
		sel.One()
		for j := 0; j < nPrefix-1; j++ {
			bit := (i >> (nPrefix - 2 - j)) & 1
			if bit == 1 {
				sel.Mul(sel, ry[1+j])
			} else {
				tmp.Sub(one, ry[1+j])
				sel.Mul(sel, tmp)
			}
		}
		tmp.Mul(sel, ev)
		evalW.Add(evalW, tmp)
	}
	evalZ := NewElement().Sub(one, ry[0])
	evalZ.Mul(evalZ, evalW)
	tmp.Mul(ry[0], evalX)
	evalZ.Add(evalZ, tmp)

	va, vb, vc := key.Shape.EvaluateUniform(rx, ry, key.NumSteps)
	expectedInner := NewElement().Mul(r, vb)
	expectedInner.Add(expectedInner, va)
	tmp.Mul(r, r)
	tmp.Mul(tmp, vc)
	expectedInner.Add(expectedInner, tmp)
	expectedInner.Mul(expectedInner, evalZ)
	if !innerFinal.Equal(expectedInner) {
		return fmt.Errorf("inner final claim: %w", ErrInvalidSumcheckProof)
	}

	jointVal := NewElement()
	jointCom := zeroG1.Clone()
	cp := NewElement().One()
	for i, ev := range proof.SegmentEvals {
		tmp.Mul(cp, ev)
		jointVal.Add(jointVal, tmp)
		jointCom.Add(jointCom, NewG1().Mul(cp, proof.WitnessComs[i]))
		cp.Mul(cp, c)
	}
	if err := scheme.Verify(proof.Opening, ryPoint, jointVal, jointCom, tr); err != nil {
		return fmt.Errorf("witness opening: %w", err)
	}
	return nil
}

// rlcTable builds the inner sum-check table sum_M r^M * M(rx, col) over all
// 2*NumVarsTotal columns. The repeated structure factors it: the step
// coordinates of rx contribute a per-step factor and the uniform
// coordinates a per-variable one, so the table costs O(entries + columns)
// instead of touching the full matrices.
func (key *UniformSpartanKey) rlcTable(rx []Element, r Element) poly.MultiLin {
	logN := log2(key.NumSteps)
	rxCon, rxTs := rx[:len(rx)-logN], rx[len(rx)-logN:]
	eqCon := poly.NewEq(Group, rxCon).Evals()
	eqTs := poly.NewEq(Group, rxTs).Evals()

	eqTsSum := NewElement()
	for _, v := range eqTs {
		eqTsSum.Add(eqTsSum, v)
	}

	r2 := NewElement().Mul(r, r)
	small := poly.Zeros(Group, key.Shape.PaddedVars())
	constCoeff := NewElement()
	tmp := NewElement()
	accumulate := func(m []Entry, pow Element) {
		for _, e := range m {
			tmp.Mul(e.Val, eqCon[e.Row])
			tmp.Mul(tmp, pow)
			if e.Const {
				constCoeff.Add(constCoeff, tmp)
			} else {
				small[e.Col].Add(small[e.Col], tmp)
			}
		}
	}
	accumulate(key.Shape.A, one)
	accumulate(key.Shape.B, r)
	accumulate(key.Shape.C, r2)

	rlc := poly.Zeros(Group, 2*key.NumVarsTotal)
	for col := 0; col < key.Shape.PaddedVars(); col++ {
		for t := 0; t < key.NumSteps; t++ {
			rlc[col*key.NumSteps+t].Mul(small[col], eqTs[t])
		}
	}
	rlc[key.NumVarsTotal].Mul(constCoeff, eqTsSum)
	return rlc
}

func squeezeMany(tr *transcript.Transcript, label string, n int) ([]Element, error) {
	out := make([]Element, n)
	for i := range out {
		s, err := tr.Squeeze(label)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
