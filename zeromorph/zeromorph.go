// Package zeromorph implements a multilinear polynomial commitment opening
// scheme: a multilinear evaluation claim is reduced to per-variable
// univariate quotients, the quotients are batched under a random challenge,
// and the combined identity collapses to a single pairing check on a
// KZG-style structured reference string.
package zeromorph

import (
	"errors"
	"fmt"
	"time"

	"github.com/detrina/jolt"
	"github.com/detrina/jolt/logger"
	poly "github.com/detrina/jolt/polynomial"
	"github.com/detrina/jolt/transcript"
)

var (
	// ErrInvalidOpeningProof is returned when the final pairing check fails.
	ErrInvalidOpeningProof = errors.New("zeromorph: invalid opening proof")
	// ErrClaimedValueMismatch is returned when the claimed evaluation handed
	// to Open disagrees with the committed polynomial - an ill-formed call,
	// never a transient condition.
	ErrClaimedValueMismatch = errors.New("zeromorph: claimed value does not match evaluation")
)

// Proof is an opening proof: the KZG witness pi, the commitment to the
// batched lifted quotient and the commitments to the per-variable
// quotients.
type Proof struct {
	Pi      jolt.G1
	QHatCom jolt.G1
	QKComs  []jolt.G1
}

// Scheme is a Zeromorph commitment scheme bound to a trimmed SRS. It
// satisfies the CommitmentScheme boundary the SNARK is generic over.
type Scheme struct {
	pk *ProverKey
	vk *VerifierKey
}

// NewScheme trims the SRS for polynomials of at most the given degree.
func NewScheme(srs *SRS, maxDegree int) (*Scheme, error) {
	pk, vk, err := srs.Trim(maxDegree)
	if err != nil {
		return nil, err
	}
	return &Scheme{pk: pk, vk: vk}, nil
}

// Commit commits to the multilinear polynomial by treating its hypercube
// table as univariate coefficients evaluated blindly at tau.
func (s *Scheme) Commit(p poly.MultiLin) (jolt.Commitment, error) {
	if len(p) > len(s.pk.G1s) {
		return nil, fmt.Errorf("%w: polynomial of size %d, key of size %d", ErrTrimTooLarge, len(p), len(s.pk.G1s))
	}
	return poly.NewPolyFrom(jolt.Group, p).BlindEval(zeroG1(), s.pk.G1s), nil
}

// Open produces an opening proof for p(point) = value. The transcript
// sequencing here mirrors Verify exactly: quotient commitments, challenge
// y, batched quotient commitment, challenges x and z.
func (s *Scheme) Open(p poly.MultiLin, point []jolt.Element, value jolt.Element, tr *transcript.Transcript) (jolt.OpeningProof, error) {
	log := logger.Logger()
	start := time.Now()

	quotients, constant := Quotients(jolt.Group, p, point)
	if !constant.Equal(value) {
		return nil, fmt.Errorf("%w: got %s", ErrClaimedValueMismatch, constant.String())
	}

	qkComs := make([]jolt.G1, len(quotients))
	for k, q := range quotients {
		qkComs[k] = q.BlindEval(zeroG1(), s.pk.G1s)
	}
	tr.AbsorbPoint("zm-qk", qkComs...)

	y, err := tr.Squeeze("zm-y")
	if err != nil {
		return nil, err
	}
	qHat := BatchedLiftedQuotient(jolt.Group, len(p), quotients, y)
	qHatCom := qHat.BlindEval(zeroG1(), s.pk.G1s)
	tr.AbsorbPoint("zm-qhat", qHatCom)

	x, err := tr.Squeeze("zm-x")
	if err != nil {
		return nil, err
	}
	z, err := tr.Squeeze("zm-z")
	if err != nil {
		return nil, err
	}

	evalScalar, zetaScalars, zScalars := EvalAndQuotientScalars(jolt.Group, y, x, z, point)

	// combined = qhat + z*f + evalScalar*value + sum_k (zeta_k + Z_k)*q_k;
	// it vanishes at x whenever the quotient identity holds, so its KZG
	// witness at x is the whole opening proof.
	combined := poly.NewPolyFrom(jolt.Group, p).Clone()
	combined.Scale(z)
	ev := jolt.NewElement().Mul(evalScalar, value)
	combined.Set(0, jolt.NewElement().Add(combined.Coeffs()[0], ev))
	combined = combined.Add(qHat)
	for k, q := range quotients {
		sc := jolt.NewElement().Add(zetaScalars[k], zScalars[k])
		scaled := q.Clone()
		scaled.Scale(sc)
		combined = combined.Add(scaled)
	}

	witness := combined.DivLinear(x)
	pi := witness.BlindEval(zeroG1(), s.pk.G1s)

	log.Debug().Dur("took", time.Since(start)).Int("size", len(p)).Msg("zeromorph open")
	return &Proof{Pi: pi, QHatCom: qHatCom, QKComs: qkComs}, nil
}

// Verify checks an opening proof against a commitment, a point and a
// claimed value. It reconstructs the combined commitment from the quotient
// commitments and the opening scalars, then checks the single pairing
// equation e(pi, [tau - x]_2) = e(C, [1]_2).
func (s *Scheme) Verify(pf jolt.OpeningProof, point []jolt.Element, value jolt.Element, c jolt.Commitment, tr *transcript.Transcript) error {
	proof, ok := pf.(*Proof)
	if !ok {
		return fmt.Errorf("%w: wrong proof type %T", ErrInvalidOpeningProof, pf)
	}
	if len(proof.QKComs) != len(point) {
		return fmt.Errorf("%w: %d quotient commitments for %d variables", ErrInvalidOpeningProof, len(proof.QKComs), len(point))
	}

	tr.AbsorbPoint("zm-qk", proof.QKComs...)
	y, err := tr.Squeeze("zm-y")
	if err != nil {
		return err
	}
	tr.AbsorbPoint("zm-qhat", proof.QHatCom)
	x, err := tr.Squeeze("zm-x")
	if err != nil {
		return err
	}
	z, err := tr.Squeeze("zm-z")
	if err != nil {
		return err
	}

	evalScalar, zetaScalars, zScalars := EvalAndQuotientScalars(jolt.Group, y, x, z, point)

	combined := proof.QHatCom.Clone()
	combined.Add(combined, jolt.NewG1().Mul(z, c))
	combined.Add(combined, jolt.NewG1().Mul(jolt.NewElement().Mul(evalScalar, value), s.vk.G1))
	for k, qkCom := range proof.QKComs {
		sc := jolt.NewElement().Add(zetaScalars[k], zScalars[k])
		combined.Add(combined, jolt.NewG1().Mul(sc, qkCom))
	}

	// e(pi, [tau]_2 - x*[1]_2) == e(combined, [1]_2)
	g2x := jolt.NewG2().Mul(x, s.vk.G2)
	left := jolt.Pair(proof.Pi, jolt.NewG2().Sub(s.vk.Tau2, g2x))
	right := jolt.Pair(combined, s.vk.G2)
	if !left.Equal(right) {
		return ErrInvalidOpeningProof
	}
	return nil
}

func zeroG1() jolt.G1 {
	return jolt.NewG1().Null()
}
