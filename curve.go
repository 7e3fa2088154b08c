package jolt

import (
	"github.com/drand/kyber"
	bls "github.com/drand/kyber-bls12381"
)

// Element is a scalar of the field over which witnesses, constraint matrices
// and all polynomials are defined.
type Element = kyber.Scalar

// Commitment is a commitment to a polynomial - a point on the curve since the
// backing commitment schemes are pairing based.
type Commitment = kyber.Point

type G1 = kyber.Point
type G2 = kyber.Point

var Suite = bls.NewBLS12381Suite()
var Group = Suite.G1()
var G2Group = Suite.G2()

func NewElement() Element {
	return Group.Scalar().Zero()
}

func NewG1() G1 {
	return Group.Point().Base()
}

func NewG2() G2 {
	return G2Group.Point().Base()
}

type Target = kyber.Point

// Pair returns e(a,b)
func Pair(a G1, b G2) Target {
	return Suite.Pair(a, b)
}

var zero = NewElement()
var one = NewElement().SetInt64(1)

var zeroG1 = NewG1().Null()
