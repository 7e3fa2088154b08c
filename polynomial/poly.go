package poly

import (
	"fmt"

	"github.com/drand/kyber"
	"github.com/drand/kyber/util/random"
)

// Group has points on it and can create scalar from the scalar fields
type Group = kyber.Group

// Scalar of the field of the curve
type Scalar = kyber.Scalar

// Point in the group (in our case it's elliptic curve so it's a point)
type Point = kyber.Point

// Poly is a dense univariate polynomial, coefficients in increasing degree
// order.
type Poly struct {
	c []Scalar
	g Group
}

func emptyPoly(g Group, d int) Poly {
	o := make([]Scalar, d+1)
	for i := 0; i <= d; i++ {
		o[i] = g.Scalar()
	}
	return Poly{c: o, g: g}
}

func NewZeroPoly(g Group, degree ...int) Poly {
	if len(degree) > 0 {
		return emptyPoly(g, degree[0])
	}
	return Poly{c: []Scalar{}, g: g}
}

func NewPolyFrom(g Group, coeffs []Scalar) Poly {
	return Poly{c: coeffs, g: g}
}

func (p Poly) Set(pos int, coeff Scalar) {
	p.c[pos] = coeff
}

func (p Poly) Mul(p2 Poly) Poly {
	l := len(p.c) + len(p2.c) - 1
	output := make([]Scalar, l)
	for i := 0; i < l; i++ {
		output[i] = p.g.Scalar().Zero()
	}
	for i, v1 := range p.c {
		for j, v2 := range p2.c {
			tmp := p.g.Scalar().Mul(v1, v2)
			output[i+j] = output[i+j].Add(output[i+j], tmp)
		}
	}
	return Poly{c: output, g: p.g}
}

// Scale multiplies every coefficient by a, in place.
func (p Poly) Scale(a Scalar) {
	for i := range p.c {
		p.c[i] = p.c[i].Mul(p.c[i], a)
	}
}

func (p Poly) Eval(i Scalar) Scalar {
	xi := i.Clone()
	v := p.g.Scalar().Zero()
	for j := len(p.c) - 1; j >= 0; j-- {
		v.Mul(v, xi)
		v.Add(v, p.c[j])
	}
	return v
}

// ZeroOne returns p(0) + p(1), the quantity a sum-check verifier matches
// against the running claim each round.
func (p Poly) ZeroOne() Scalar {
	v := p.g.Scalar().Zero()
	for _, c := range p.c {
		v.Add(v, c)
	}
	if len(p.c) > 0 {
		v.Add(v, p.c[0])
	}
	return v
}

// DivLinear returns the quotient p / (X - x) using synthetic division. The
// remainder p(x) is dropped - callers divide polynomials known to vanish at
// x.
func (p Poly) DivLinear(x Scalar) Poly {
	if len(p.c) < 2 {
		return NewZeroPoly(p.g, 0)
	}
	q := make([]Scalar, len(p.c)-1)
	q[len(q)-1] = p.c[len(p.c)-1].Clone()
	for i := len(q) - 2; i >= 0; i-- {
		q[i] = p.g.Scalar().Mul(x, q[i+1])
		q[i] = q[i].Add(q[i], p.c[i+1])
	}
	return Poly{c: q, g: p.g}
}

func (p Poly) Add(p2 Poly) Poly {
	max := len(p.c)
	if max < len(p2.c) {
		max = len(p2.c)
	}

	output := make([]Scalar, max)
	for i := range p.c {
		output[i] = p.g.Scalar().Set(p.c[i])
	}
	for i := range p2.c {
		if output[i] == nil {
			output[i] = p.g.Scalar()
		}
		output[i] = output[i].Add(output[i], p2.c[i])
	}
	return Poly{c: output, g: p.g}
}

func (p Poly) Sub(p2 Poly) Poly {
	max := len(p.c)
	if max < len(p2.c) {
		max = len(p2.c)
	}

	output := make([]Scalar, max)
	for i := range p.c {
		output[i] = p.g.Scalar().Set(p.c[i])
	}
	for i := range p2.c {
		if output[i] == nil {
			output[i] = p.g.Scalar()
		}
		output[i] = output[i].Sub(output[i], p2.c[i])
	}
	return NewPolyFrom(p.g, output)
}

func (p Poly) Equal(p2 Poly) bool {
	if len(p.c) != len(p2.c) {
		return false
	}

	for i := 0; i < len(p.c); i++ {
		if !p.c[i].Equal(p2.c[i]) {
			return false
		}
	}
	return true
}

func (p Poly) Clone() Poly {
	o := make([]Scalar, len(p.c))
	for i := 0; i < len(p.c); i++ {
		o[i] = p.c[i].Clone()
	}
	return Poly{c: o, g: p.g}
}

func (p Poly) Coeffs() []Scalar {
	return p.c
}

// Normalize remove all the 0 coefficients from the highest degree downwards
// until it encounters a non zero coefficients (i.e. len(p) will give the degree
// of the coefficient)
func (p Poly) Normalize() Poly {
	maxi := len(p.c)
	for i := len(p.c) - 1; i >= 0; i-- {
		if !p.c[i].Equal(p.g.Scalar().Zero()) {
			return NewPolyFrom(p.g, p.c[:maxi])
		}
		maxi--
	}
	return NewPolyFrom(p.g, p.c[:maxi])
}

func (p Poly) Degree() int {
	return len(p.c) - 1
}

// FromEvaluations interpolates the unique polynomial of degree len(ys)-1
// such that p(i) = ys[i] for i = 0 .. len(ys)-1. Sum-check round polynomials
// are built this way from their evaluations at the small integers.
func FromEvaluations(g Group, ys []Scalar) Poly {
	var acc Poly
	var set bool
	for j := range ys {
		basis := lagrangeBasis(g, j, len(ys))
		for i := range basis.c {
			basis.c[i] = basis.c[i].Mul(basis.c[i], ys[j])
		}
		if !set {
			acc = basis
			set = true
			continue
		}
		acc = acc.Add(basis)
	}
	return acc
}

// lagrangeBasis returns the basis polynomial for node i over the integer
// nodes 0 .. n-1, i.e. the polynomial that is 1 at i and 0 at every other
// node.
func lagrangeBasis(g Group, i, n int) Poly {
	basis := NewPolyFrom(g, []Scalar{g.Scalar().One()})
	den := g.Scalar().One()
	acc := g.Scalar().One()
	xi := g.Scalar().SetInt64(int64(i))
	for m := 0; m < n; m++ {
		if m == i {
			continue
		}
		xm := g.Scalar().SetInt64(int64(m))
		// multiply by (X - m)
		basis = basis.Mul(NewPolyFrom(g, []Scalar{g.Scalar().Neg(xm), g.Scalar().One()}))
		den.Sub(xi, xm) // den = i - m
		den.Inv(den)
		acc.Mul(acc, den)
	}
	for j := range basis.c {
		basis.c[j] = basis.c[j].Mul(basis.c[j], acc)
	}
	return basis
}

// BlindEval takes a polynomial p(x) and a list of blinded points {s}
// such that the i-th value in blindedPoint is equal to s^i, s being unknown
// from the trusted setup.
// the result is SUM( g^(s^i)^p[i] ) <=> (in addition form) SUM(p[i] * (s^i * g)
// which is equivalent to g^p(s)
func (p Poly) BlindEval(zero Point, blindedPoint []Point) Point {
	if len(p.c) > len(blindedPoint) {
		panic(fmt.Sprintf("mismatch of length between poly %d and blinded eval points %d", len(p.c), len(blindedPoint)))
	}
	var acc = zero.Clone().Null()
	var tmp = zero.Clone().Null()
	for i := 0; i < len(p.c); i++ {
		acc = acc.Add(acc, tmp.Mul(p.c[i], blindedPoint[i]))
	}
	return acc
}

func RandomPoly(g Group, d int) Poly {
	var poly = make([]Scalar, 0, d+1)
	for i := 0; i <= d; i++ {
		poly = append(poly, g.Scalar().Pick(random.New()))
	}
	return NewPolyFrom(g, poly)
}

// BatchInvert replaces every non-zero scalar in xs by its inverse using a
// single field inversion (Montgomery's trick). Zero entries are left
// untouched.
func BatchInvert(g Group, xs []Scalar) {
	prods := make([]Scalar, len(xs))
	acc := g.Scalar().One()
	for i, x := range xs {
		if x.Equal(g.Scalar().Zero()) {
			continue
		}
		prods[i] = acc.Clone()
		acc.Mul(acc, x)
	}
	inv := g.Scalar().Inv(acc)
	for i := len(xs) - 1; i >= 0; i-- {
		if prods[i] == nil {
			continue
		}
		tmp := g.Scalar().Mul(inv, xs[i])
		xs[i] = xs[i].Mul(inv, prods[i])
		inv = tmp
	}
}
