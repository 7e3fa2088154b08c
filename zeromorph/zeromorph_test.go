package zeromorph

import (
	"testing"

	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	"github.com/detrina/jolt"
	poly "github.com/detrina/jolt/polynomial"
	"github.com/detrina/jolt/transcript"
)

func randomPoint(n int) []jolt.Element {
	out := make([]jolt.Element, n)
	for i := range out {
		out[i] = jolt.NewElement().Pick(random.New())
	}
	return out
}

func TestQuotientsDecomposition(t *testing.T) {
	const numVars = 4
	f := poly.RandomMultiLin(jolt.Group, numVars)
	u := randomPoint(numVars)

	quotients, v := Quotients(jolt.Group, f, u)
	require.True(t, v.Equal(f.Evaluate(u)))
	require.Len(t, quotients, numVars)
	for k, q := range quotients {
		require.Len(t, q.Coeffs(), 1<<k)
	}

	// f(w) - v = sum_k (w_i - u_i) * q_k(w suffix), i = numVars-1-k
	w := randomPoint(numVars)
	rhs := jolt.NewElement()
	for k, q := range quotients {
		i := numVars - 1 - k
		qw := poly.MultiLin(q.Coeffs()).Evaluate(w[numVars-k:])
		term := jolt.NewElement().Sub(w[i], u[i])
		term.Mul(term, qw)
		rhs.Add(rhs, term)
	}
	lhs := jolt.NewElement().Sub(f.Evaluate(w), v)
	require.True(t, lhs.Equal(rhs))
}

func TestBatchedLiftedQuotientEval(t *testing.T) {
	const numVars = 3
	n := 1 << numVars
	f := poly.RandomMultiLin(jolt.Group, numVars)
	u := randomPoint(numVars)
	quotients, _ := Quotients(jolt.Group, f, u)

	y := jolt.NewElement().Pick(random.New())
	x := jolt.NewElement().Pick(random.New())
	qHat := BatchedLiftedQuotient(jolt.Group, n, quotients, y)

	// explicit sum_k y^k * x^(n-2^k) * q_k(x)
	exp := jolt.NewElement()
	yPow := jolt.NewElement().One()
	for k, q := range quotients {
		shift := jolt.NewElement().One()
		for i := 0; i < n-(1<<k); i++ {
			shift.Mul(shift, x)
		}
		term := jolt.NewElement().Mul(yPow, shift)
		term.Mul(term, q.Eval(x))
		exp.Add(exp, term)
		yPow.Mul(yPow, y)
	}
	require.True(t, qHat.Eval(x).Equal(exp))
}

// Mock quotients of every size 2^k, compared coefficientwise against the
// explicit zero-padded, degree-shifted linear combination.
func TestBatchedLiftedQuotientMocks(t *testing.T) {
	const numVars = 5
	n := 1 << numVars
	quotients := make([]poly.Poly, numVars)
	for k := range quotients {
		quotients[k] = poly.RandomPoly(jolt.Group, (1<<k)-1)
	}
	y := jolt.NewElement().Pick(random.New())

	got := BatchedLiftedQuotient(jolt.Group, n, quotients, y)

	exp := poly.NewZeroPoly(jolt.Group, n-1)
	yPow := jolt.NewElement().One()
	for k, q := range quotients {
		offset := n - (1 << k)
		for j, c := range q.Coeffs() {
			tmp := jolt.NewElement().Mul(yPow, c)
			exp.Set(offset+j, jolt.NewElement().Add(exp.Coeffs()[offset+j], tmp))
		}
		yPow.Mul(yPow, y)
	}
	require.True(t, got.Equal(exp))
}

// The closed form (x^(2^k)-1)/(x-1) is the only way the code ever computes
// Phi; direct summation stays a test-only oracle.
func TestPhiClosedForm(t *testing.T) {
	x := jolt.NewElement().Pick(random.New())
	sum := jolt.NewElement()
	xPow := jolt.NewElement().One()
	count := 0
	one := jolt.NewElement().One()
	denom := jolt.NewElement().Inv(jolt.NewElement().Sub(x, one))
	for k := 0; k <= 16; k++ {
		for count < 1<<k {
			sum.Add(sum, xPow)
			xPow.Mul(xPow, x)
			count++
		}
		// (x^(2^k) - 1) / (x - 1); xPow is x^(2^k) here
		phi := jolt.NewElement().Sub(xPow, one)
		phi.Mul(phi, denom)
		require.True(t, phi.Equal(sum), "k = %d", k)
	}
}

func TestEvalScalarClosedForm(t *testing.T) {
	const numVars = 4
	u := randomPoint(numVars)
	y := jolt.NewElement().Pick(random.New())
	x := jolt.NewElement().Pick(random.New())
	z := jolt.NewElement().Pick(random.New())

	evalScalar, zetaScalars, _ := EvalAndQuotientScalars(jolt.Group, y, x, z, u)

	// evalScalar = -z * (1 + x + ... + x^(2^numVars - 1))
	phi := jolt.NewElement()
	xPow := jolt.NewElement().One()
	for i := 0; i < 1<<numVars; i++ {
		phi.Add(phi, xPow)
		xPow.Mul(xPow, x)
	}
	exp := jolt.NewElement().Mul(z, phi)
	exp.Neg(exp)
	require.True(t, evalScalar.Equal(exp))

	// zeta_k = -y^k * x^(2^numVars - 2^k)
	yPow := jolt.NewElement().One()
	for k := 0; k < numVars; k++ {
		shift := jolt.NewElement().One()
		for i := 0; i < (1<<numVars)-(1<<k); i++ {
			shift.Mul(shift, x)
		}
		expZeta := jolt.NewElement().Mul(yPow, shift)
		expZeta.Neg(expZeta)
		require.True(t, zetaScalars[k].Equal(expZeta), "zeta %d", k)
		yPow.Mul(yPow, y)
	}
}

func TestZScalarClosedForm(t *testing.T) {
	const numVars = 4
	u := randomPoint(numVars)
	y := jolt.NewElement().Pick(random.New())
	x := jolt.NewElement().Pick(random.New())
	z := jolt.NewElement().Pick(random.New())

	_, _, zScalars := EvalAndQuotientScalars(jolt.Group, y, x, z, u)

	// direct-summation oracles for Phi_m(v) = sum_{i<2^m} v^i and v^(2^k)
	phi := func(v jolt.Element, m int) jolt.Element {
		sum := jolt.NewElement()
		pow := jolt.NewElement().One()
		for i := 0; i < 1<<m; i++ {
			sum.Add(sum, pow)
			pow.Mul(pow, v)
		}
		return sum
	}
	pow2 := func(v jolt.Element, k int) jolt.Element {
		out := v.Clone()
		for i := 0; i < k; i++ {
			out.Mul(out, out)
		}
		return out
	}

	// Z_k = -z * (x^(2^k)*Phi_{n-k-1}(x^(2^(k+1))) - u_rev[k]*Phi_{n-k}(x^(2^k)))
	for k := 0; k < numVars; k++ {
		t1 := jolt.NewElement().Mul(pow2(x, k), phi(pow2(x, k+1), numVars-k-1))
		t2 := jolt.NewElement().Mul(u[numVars-1-k], phi(pow2(x, k), numVars-k))
		exp := jolt.NewElement().Sub(t1, t2)
		exp.Mul(exp, z)
		exp.Neg(exp)
		require.True(t, zScalars[k].Equal(exp), "index %d", k)
	}
}

// The combined polynomial the prover divides by (X - x) must vanish at x
// for any challenges, otherwise the scalar formulas and the quotient
// construction disagree.
func TestCombinedPolynomialVanishes(t *testing.T) {
	const numVars = 4
	n := 1 << numVars
	f := poly.RandomMultiLin(jolt.Group, numVars)
	u := randomPoint(numVars)
	quotients, v := Quotients(jolt.Group, f, u)

	y := jolt.NewElement().Pick(random.New())
	x := jolt.NewElement().Pick(random.New())
	z := jolt.NewElement().Pick(random.New())

	qHat := BatchedLiftedQuotient(jolt.Group, n, quotients, y)
	evalScalar, zetaScalars, zScalars := EvalAndQuotientScalars(jolt.Group, y, x, z, u)

	acc := jolt.NewElement().Mul(z, poly.NewPolyFrom(jolt.Group, f).Eval(x))
	tmp := jolt.NewElement().Mul(evalScalar, v)
	acc.Add(acc, tmp)
	acc.Add(acc, qHat.Eval(x))
	for k, q := range quotients {
		sc := jolt.NewElement().Add(zetaScalars[k], zScalars[k])
		sc.Mul(sc, q.Eval(x))
		acc.Add(acc, sc)
	}
	require.True(t, acc.Equal(jolt.NewElement()))
}

func TestSchemeRoundTrip(t *testing.T) {
	const numVars = 4
	n := 1 << numVars
	srs := NewSRS(n-1, random.New())
	scheme, err := NewScheme(srs, n-1)
	require.NoError(t, err)

	f := poly.RandomMultiLin(jolt.Group, numVars)
	point := randomPoint(numVars)
	value := f.Evaluate(point)

	com, err := scheme.Commit(f)
	require.NoError(t, err)

	pf, err := scheme.Open(f, point, value, transcript.New(jolt.Group, "zm"))
	require.NoError(t, err)
	require.NoError(t, scheme.Verify(pf, point, value, com, transcript.New(jolt.Group, "zm")))
}

func TestSchemeRejectsWrongValue(t *testing.T) {
	const numVars = 3
	n := 1 << numVars
	srs := NewSRS(n-1, random.New())
	scheme, err := NewScheme(srs, n-1)
	require.NoError(t, err)

	f := poly.RandomMultiLin(jolt.Group, numVars)
	point := randomPoint(numVars)
	value := f.Evaluate(point)

	com, err := scheme.Commit(f)
	require.NoError(t, err)
	pf, err := scheme.Open(f, point, value, transcript.New(jolt.Group, "zm"))
	require.NoError(t, err)

	bad := jolt.NewElement().Add(value, jolt.NewElement().One())
	err = scheme.Verify(pf, point, bad, com, transcript.New(jolt.Group, "zm"))
	require.ErrorIs(t, err, ErrInvalidOpeningProof)
}

func TestSchemeRejectsWrongPoint(t *testing.T) {
	const numVars = 3
	n := 1 << numVars
	srs := NewSRS(n-1, random.New())
	scheme, err := NewScheme(srs, n-1)
	require.NoError(t, err)

	f := poly.RandomMultiLin(jolt.Group, numVars)
	point := randomPoint(numVars)
	value := f.Evaluate(point)

	com, err := scheme.Commit(f)
	require.NoError(t, err)
	pf, err := scheme.Open(f, point, value, transcript.New(jolt.Group, "zm"))
	require.NoError(t, err)

	err = scheme.Verify(pf, randomPoint(numVars), value, com, transcript.New(jolt.Group, "zm"))
	require.ErrorIs(t, err, ErrInvalidOpeningProof)
}

func TestOpenRejectsWrongClaim(t *testing.T) {
	const numVars = 3
	n := 1 << numVars
	srs := NewSRS(n-1, random.New())
	scheme, err := NewScheme(srs, n-1)
	require.NoError(t, err)

	f := poly.RandomMultiLin(jolt.Group, numVars)
	point := randomPoint(numVars)
	bad := jolt.NewElement().Pick(random.New())

	_, err = scheme.Open(f, point, bad, transcript.New(jolt.Group, "zm"))
	require.ErrorIs(t, err, ErrClaimedValueMismatch)
}

func TestTrimTooLarge(t *testing.T) {
	srs := NewSRS(7, random.New())
	_, _, err := srs.Trim(8)
	require.ErrorIs(t, err, ErrTrimTooLarge)
}
