package poly

import (
	"fmt"

	"github.com/drand/kyber/util/random"
)

// MultiLin is the dense representation of a multilinear polynomial: the
// table of its values over the boolean hypercube, whose length is always a
// power of two. Index bits are read most significant first, so the first
// variable selects between the two halves of the table.
type MultiLin []Scalar

// NumVars returns the number of variables of the polynomial.
func (m MultiLin) NumVars() int {
	n := 0
	for l := len(m); l > 1; l >>= 1 {
		n++
	}
	if len(m) != 1<<n {
		panic(fmt.Sprintf("multilinear table length %d is not a power of two", len(m)))
	}
	return n
}

// Fold binds the first variable of the table to r: the table halves and
// every entry becomes lo + r*(hi - lo). The fold happens in place.
func (m *MultiLin) Fold(r Scalar) {
	mid := len(*m) / 2
	lo, hi := (*m)[:mid], (*m)[mid:]
	for i := range lo {
		tmp := hi[i].Clone()
		tmp.Sub(tmp, lo[i])
		tmp.Mul(tmp, r)
		lo[i] = lo[i].Add(lo[i], tmp)
	}
	*m = (*m)[:mid]
}

// DeepCopy clones the table. Folding mutates the underlying array so both
// evaluation and sum-check need fresh copies of shared tables.
func (m MultiLin) DeepCopy() MultiLin {
	out := make(MultiLin, len(m))
	for i := range m {
		out[i] = m[i].Clone()
	}
	return out
}

// Evaluate returns the value of the polynomial at the given point. The point
// must have exactly NumVars coordinates - anything else is an ill-formed
// circuit, not a runtime condition.
func (m MultiLin) Evaluate(point []Scalar) Scalar {
	if len(point) != m.NumVars() {
		panic(fmt.Sprintf("evaluating %d-variable polynomial at %d-coordinate point", m.NumVars(), len(point)))
	}
	cp := m.DeepCopy()
	for _, r := range point {
		cp.Fold(r)
	}
	return cp[0]
}

// Pad returns the table zero-extended to length n.
func (m MultiLin) Pad(g Group, n int) MultiLin {
	if len(m) >= n {
		return m
	}
	out := make(MultiLin, n)
	copy(out, m)
	for i := len(m); i < n; i++ {
		out[i] = g.Scalar().Zero()
	}
	return out
}

// Zeros returns an all-zero table of length n.
func Zeros(g Group, n int) MultiLin {
	out := make(MultiLin, n)
	for i := range out {
		out[i] = g.Scalar().Zero()
	}
	return out
}

// RandomMultiLin returns a table of 2^numVars random entries.
func RandomMultiLin(g Group, numVars int) MultiLin {
	out := make(MultiLin, 1<<numVars)
	for i := range out {
		out[i] = g.Scalar().Pick(random.New())
	}
	return out
}
