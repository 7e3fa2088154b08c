package zeromorph

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/drand/kyber"

	"github.com/detrina/jolt"
)

// ErrTrimTooLarge is returned when a trim or commit requests more powers
// than the structured reference string holds. Setup aborts; nothing is
// retried.
var ErrTrimTooLarge = errors.New("zeromorph: requested size exceeds SRS length")

// SRS is the structured reference string {tau^i}G1, {tau^i}G2 for a secret
// tau discarded after generation. It is built explicitly and owned by the
// caller; a process that wants a single shared instance wraps construction
// in its own sync.Once.
type SRS struct {
	G1s []jolt.G1
	G2s []jolt.G2
}

// NewSRS generates an SRS supporting polynomials up to the given degree,
// drawing the secret from the provided stream.
func NewSRS(maxDegree int, stream cipher.Stream) *SRS {
	tau := jolt.NewElement().Pick(stream)
	return &SRS{
		G1s: generatePowers(jolt.Group, tau, maxDegree),
		G2s: generatePowers(jolt.G2Group, tau, 1),
	}
}

// generatePowers commits to 1, e, e^2, ..., e^power on the given group.
func generatePowers(g kyber.Group, e jolt.Element, power int) []jolt.Commitment {
	gi := make([]jolt.Commitment, 0, power+1)
	tmp := g.Scalar().One()
	for i := 0; i <= power; i++ {
		gi = append(gi, g.Point().Mul(tmp, nil))
		tmp = g.Scalar().Mul(tmp, e)
	}
	return gi
}

// ProverKey is the G1 side of a trimmed SRS.
type ProverKey struct {
	G1s []jolt.G1
}

// VerifierKey is the constant-size verifier side: the two generators and
// tau on G2 for the pairing check.
type VerifierKey struct {
	G1   jolt.G1
	G2   jolt.G2
	Tau2 jolt.G2
}

// Trim cuts the SRS down to the prover and verifier keys for polynomials of
// at most the given degree.
func (s *SRS) Trim(maxDegree int) (*ProverKey, *VerifierKey, error) {
	if maxDegree+1 > len(s.G1s) {
		return nil, nil, fmt.Errorf("%w: need %d G1 powers, have %d", ErrTrimTooLarge, maxDegree+1, len(s.G1s))
	}
	pk := &ProverKey{G1s: s.G1s[:maxDegree+1]}
	vk := &VerifierKey{
		G1:   s.G1s[0],
		G2:   s.G2s[0],
		Tau2: s.G2s[1],
	}
	return pk, vk, nil
}
