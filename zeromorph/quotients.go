package zeromorph

import (
	"fmt"

	"github.com/detrina/jolt/parallel"
	poly "github.com/detrina/jolt/polynomial"
)

// Quotients decomposes a multilinear polynomial f and a point u into the
// per-variable quotients witnessing
//
//	f(X_0,...,X_{n-1}) - v = sum_k (X_k - u_k) * q_k(X_0,...,X_{k-1})
//
// with v = f(u). Construction goes most-significant variable first: at step
// i the table splits into halves, the quotient is hi - lo elementwise and
// the table folds to lo + u_i*(hi - lo). Quotients are returned in
// increasing index order, q_k holding 2^k coefficients, together with the
// constant term the table collapses to - which is f(u), the one place the
// evaluation claim is cross-checked against quotient construction.
func Quotients(g poly.Group, f poly.MultiLin, u []poly.Scalar) ([]poly.Poly, poly.Scalar) {
	numVars := f.NumVars()
	if numVars != len(u) {
		panic(fmt.Sprintf("quotients: %d-variable polynomial against %d challenges", numVars, len(u)))
	}

	work := f.DeepCopy()
	quotients := make([]poly.Poly, numVars)
	for i, ui := range u {
		half := len(work) / 2
		lo, hi := work[:half], work[half:]
		q := make([]poly.Scalar, half)
		parallel.Execute(0, half, func(start, end int) {
			for j := start; j < end; j++ {
				q[j] = g.Scalar().Sub(hi[j], lo[j])
				tmp := g.Scalar().Mul(ui, q[j])
				lo[j] = lo[j].Add(lo[j], tmp)
			}
		})
		work = work[:half]
		quotients[numVars-1-i] = poly.NewPolyFrom(g, q)
	}
	return quotients, work[0]
}

// BatchedLiftedQuotient folds the quotient sequence into one degree-lifted
// univariate polynomial
//
//	qhat = sum_k y^k * X^(n-2^k) * q_k
//
// by accumulating y^k * q_k into an n-length buffer at offset n-2^k. The
// shifts are never realized as polynomial multiplications, keeping the cost
// linear in the total quotient size.
func BatchedLiftedQuotient(g poly.Group, n int, quotients []poly.Poly, y poly.Scalar) poly.Poly {
	qHat := make([]poly.Scalar, n)
	for i := range qHat {
		qHat[i] = g.Scalar().Zero()
	}
	scalar := g.Scalar().One()
	for _, q := range quotients {
		coeffs := q.Coeffs()
		offset := n - len(coeffs)
		for j, c := range coeffs {
			tmp := g.Scalar().Mul(scalar, c)
			qHat[offset+j].Add(qHat[offset+j], tmp)
		}
		scalar = g.Scalar().Mul(scalar, y)
	}
	return poly.NewPolyFrom(g, qHat)
}

// EvalAndQuotientScalars computes the verifier-side scalar coefficients of
// the opening identity: the multiplier of the claimed evaluation, the
// degree-check scalars applied to each quotient commitment (zeta) and the
// partial-evaluation scalars (Z). Challenges are consumed in reverse index
// order, matching the MSB-first quotient construction. All denominators are
// inverted in one batch; Phi_k(x) = (x^(2^k)-1)/(x-1) only ever appears via
// this closed form.
func EvalAndQuotientScalars(g poly.Group, y, x, z poly.Scalar, u []poly.Scalar) (poly.Scalar, []poly.Scalar, []poly.Scalar) {
	numVars := len(u)
	one := g.Scalar().One()

	// squares[i] = x^(2^i)
	squares := make([]poly.Scalar, numVars+1)
	squares[0] = x.Clone()
	for i := 1; i <= numVars; i++ {
		squares[i] = g.Scalar().Mul(squares[i-1], squares[i-1])
	}

	// offsets[k] = prod_{j>=k} squares[j] = x^(2^n - 2^k)
	offsets := make([]poly.Scalar, numVars)
	acc := g.Scalar().One()
	for k := numVars - 1; k >= 0; k-- {
		acc = g.Scalar().Mul(acc, squares[k])
		offsets[k] = acc
	}

	// vs[i] = (x^(2^n) - 1) / (x^(2^i) - 1) = Phi_{n-i}(x^(2^i))
	numer := g.Scalar().Sub(squares[numVars], one)
	denoms := make([]poly.Scalar, numVars+1)
	for i := range denoms {
		denoms[i] = g.Scalar().Sub(squares[i], one)
	}
	poly.BatchInvert(g, denoms)
	vs := make([]poly.Scalar, numVars+1)
	for i := range vs {
		vs[i] = g.Scalar().Mul(numer, denoms[i])
	}

	zetaScalars := make([]poly.Scalar, numVars)
	zScalars := make([]poly.Scalar, numVars)
	yPow := g.Scalar().One()
	for k := 0; k < numVars; k++ {
		// zeta_k = -y^k * x^(2^n - 2^k)
		zetaScalars[k] = g.Scalar().Neg(g.Scalar().Mul(yPow, offsets[k]))
		// Z_k = -z * (x^(2^k) * Phi_{n-k-1}(x^(2^(k+1))) - u_rev[k] * Phi_{n-k}(x^(2^k)))
		t1 := g.Scalar().Mul(squares[k], vs[k+1])
		t2 := g.Scalar().Mul(u[numVars-1-k], vs[k])
		t := g.Scalar().Sub(t1, t2)
		t.Mul(t, z)
		zScalars[k] = t.Neg(t)
		yPow = g.Scalar().Mul(yPow, y)
	}

	// -z * Phi_n(x), the multiplier of the claimed evaluation
	evalScalar := g.Scalar().Neg(g.Scalar().Mul(vs[0], z))
	return evalScalar, zetaScalars, zScalars
}
