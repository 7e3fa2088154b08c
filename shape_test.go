package jolt

import (
	"testing"

	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	poly "github.com/detrina/jolt/polynomial"
)

func val(i int64) Element { return NewElement().SetInt64(i) }

// testShape is x^4 computed by squaring: w1 = w0^2, w2 = w0*w1, w3 = w1^2,
// plus one constraint mixing a constant, (w2 + 5)*w0 = w3 + 5*w0.
func testShape(t *testing.T) *R1CSShape {
	a := []Entry{
		{Row: 0, Col: 0, Val: val(1)},
		{Row: 1, Col: 0, Val: val(1)},
		{Row: 2, Col: 1, Val: val(1)},
		{Row: 3, Col: 2, Val: val(1)},
		{Row: 3, Const: true, Val: val(5)},
	}
	b := []Entry{
		{Row: 0, Col: 0, Val: val(1)},
		{Row: 1, Col: 1, Val: val(1)},
		{Row: 2, Col: 1, Val: val(1)},
		{Row: 3, Col: 0, Val: val(1)},
	}
	c := []Entry{
		{Row: 0, Col: 1, Val: val(1)},
		{Row: 1, Col: 2, Val: val(1)},
		{Row: 2, Col: 3, Val: val(1)},
		{Row: 3, Col: 3, Val: val(1)},
		{Row: 3, Col: 0, Val: val(5)},
	}
	shape, err := NewR1CSShape(4, 4, a, b, c)
	require.NoError(t, err)
	return shape
}

// testWitness returns a satisfying trace: per step a fresh w0 and its
// powers.
func testWitness(numSteps int) [][]Element {
	w := make([][]Element, 4)
	for i := range w {
		w[i] = make([]Element, numSteps)
	}
	for t := 0; t < numSteps; t++ {
		w[0][t] = NewElement().Pick(random.New())
		w[1][t] = NewElement().Mul(w[0][t], w[0][t])
		w[2][t] = NewElement().Mul(w[1][t], w[0][t])
		w[3][t] = NewElement().Mul(w[1][t], w[1][t])
	}
	return w
}

func assignment(shape *R1CSShape, witness [][]Element, numSteps int) []Element {
	total := shape.PaddedVars() * numSteps
	z := make([]Element, 2*total)
	for i := range z {
		z[i] = NewElement()
	}
	for i, seg := range witness {
		for t, v := range seg {
			z[i*numSteps+t] = v.Clone()
		}
	}
	z[total].One()
	return z
}

func TestShapeRejectsOutOfBounds(t *testing.T) {
	_, err := NewR1CSShape(4, 4, []Entry{{Row: 4, Col: 0, Val: val(1)}}, nil, nil)
	require.ErrorIs(t, err, ErrInvalidIndex)

	_, err = NewR1CSShape(4, 4, nil, []Entry{{Row: 0, Col: 4, Val: val(1)}}, nil)
	require.ErrorIs(t, err, ErrInvalidIndex)

	// constant entries carry no column
	_, err = NewR1CSShape(4, 4, []Entry{{Row: 0, Const: true, Val: val(1)}}, nil, nil)
	require.NoError(t, err)
}

func TestMultiplyVecUniform(t *testing.T) {
	const numSteps = 4
	shape := testShape(t)
	witness := testWitness(numSteps)
	z := assignment(shape, witness, numSteps)

	az, bz, cz := shape.MultiplyVecUniform(z, numSteps)
	require.Len(t, az, shape.PaddedCons()*numSteps)

	// agrees with the materialized step-repeated matrices
	fa, fb, fc := shape.FullShape(numSteps)
	for name, tc := range map[string]struct {
		entries []FullEntry
		got     poly.MultiLin
	}{"A": {fa, az}, "B": {fb, bz}, "C": {fc, cz}} {
		exp := poly.Zeros(Group, len(tc.got))
		tmp := NewElement()
		for _, e := range tc.entries {
			tmp.Mul(e.Val, z[e.Col])
			exp[e.Row].Add(exp[e.Row], tmp)
		}
		for i := range exp {
			require.True(t, exp[i].Equal(tc.got[i]), "%s row %d", name, i)
		}
	}

	// a satisfying witness makes az*bz - cz vanish everywhere
	tmp := NewElement()
	for i := range az {
		tmp.Mul(az[i], bz[i])
		tmp.Sub(tmp, cz[i])
		require.True(t, tmp.Equal(zero), "constraint %d", i)
	}
}

func TestEvaluateUniform(t *testing.T) {
	const numSteps = 4
	shape := testShape(t)

	numRows := shape.PaddedCons() * numSteps
	numCols := 2 * shape.PaddedVars() * numSteps
	rx := make([]Element, log2(numRows))
	for i := range rx {
		rx[i] = NewElement().Pick(random.New())
	}
	ry := make([]Element, log2(numCols))
	for i := range ry {
		ry[i] = NewElement().Pick(random.New())
	}

	va, vb, vc := shape.EvaluateUniform(rx, ry, numSteps)

	// agrees with evaluating the materialized matrix as a multilinear
	// polynomial over (row, col)
	fa, fb, fc := shape.FullShape(numSteps)
	point := append(append([]Element{}, rx...), ry...)
	materialize := func(entries []FullEntry) Element {
		table := poly.Zeros(Group, numRows*numCols)
		for _, e := range entries {
			table[e.Row*numCols+e.Col].Add(table[e.Row*numCols+e.Col], e.Val)
		}
		return table.Evaluate(point)
	}
	require.True(t, va.Equal(materialize(fa)))
	require.True(t, vb.Equal(materialize(fb)))
	require.True(t, vc.Equal(materialize(fc)))
}

func TestShapeDigest(t *testing.T) {
	d1, err := testShape(t).Digest()
	require.NoError(t, err)
	d2, err := testShape(t).Digest()
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	s1 := testShape(t)
	s3, err := NewR1CSShape(4, 4, s1.A[:len(s1.A)-1], s1.B, s1.C)
	require.NoError(t, err)
	d3, err := s3.Digest()
	require.NoError(t, err)
	require.NotEqual(t, d1, d3)
}
