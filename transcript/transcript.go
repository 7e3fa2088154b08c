// Package transcript implements the Fiat-Shamir transcript shared by the
// prover and the verifier. Both sides must perform exactly the same sequence
// of absorbs and squeezes - the derived challenges are bound to everything
// absorbed so far, so any divergence makes verification fail.
package transcript

import (
	"crypto/sha256"
	"fmt"
	"hash"

	"github.com/drand/kyber"
	"github.com/drand/kyber/xof/blake2xb"
)

// Group has points on it and can create scalar from the scalar fields
type Group = kyber.Group

// Scalar of the field of the curve
type Scalar = kyber.Scalar

// Point in the group (in our case it's elliptic curve so it's a point)
type Point = kyber.Point

// Transcript is a deterministic random oracle over a running sha256 state.
// It is single ownership: it is threaded by pointer through one prover or
// one verifier call sequence and never shared.
type Transcript struct {
	g     Group
	state []byte
	err   error
}

// New returns a transcript seeded with a protocol label.
func New(g Group, label string) *Transcript {
	h := sha256.New()
	h.Write([]byte("transcript:"))
	h.Write([]byte(label))
	h.Write([]byte(g.String()))
	return &Transcript{g: g, state: h.Sum(nil)}
}

func (t *Transcript) absorb(label string, write func(h hash.Hash) error) {
	h := sha256.New()
	h.Write(t.state)
	h.Write([]byte("absorb:"))
	h.Write([]byte(label))
	if err := write(h); err != nil && t.err == nil {
		t.err = fmt.Errorf("transcript: absorb %q: %w", label, err)
	}
	t.state = h.Sum(nil)
}

// AbsorbBytes absorbs raw bytes, e.g. a verifier key digest.
func (t *Transcript) AbsorbBytes(label string, data []byte) {
	t.absorb(label, func(h hash.Hash) error {
		h.Write(data)
		return nil
	})
}

// AbsorbScalar absorbs field elements under the given label.
func (t *Transcript) AbsorbScalar(label string, scalars ...Scalar) {
	t.absorb(label, func(h hash.Hash) error {
		for _, s := range scalars {
			if _, err := s.MarshalTo(h); err != nil {
				return err
			}
		}
		return nil
	})
}

// AbsorbPoint absorbs group points (commitments) under the given label.
func (t *Transcript) AbsorbPoint(label string, points ...Point) {
	t.absorb(label, func(h hash.Hash) error {
		for _, p := range points {
			if _, err := p.MarshalTo(h); err != nil {
				return err
			}
		}
		return nil
	})
}

// Squeeze derives the next challenge scalar. It fails if any prior absorb
// could not marshal its input - the error is latched, never defaulted, so a
// broken randomness source cannot silently yield a fixed challenge.
func (t *Transcript) Squeeze(label string) (Scalar, error) {
	if t.err != nil {
		return nil, t.err
	}
	h := sha256.New()
	h.Write(t.state)
	h.Write([]byte("squeeze:"))
	h.Write([]byte(label))
	t.state = h.Sum(nil)
	// Pick rejection-samples, so it may read more than one scalar's worth
	// of bytes; the state is expanded through an XOF rather than consumed
	// as a finite buffer.
	return t.g.Scalar().Pick(blake2xb.New(t.state)), nil
}
