package poly

// Eq is the multilinear equality indicator eq(r, x) = prod_i (r_i*x_i +
// (1-r_i)*(1-x_i)), fixed at a point r. It is 1 on the hypercube vertex
// equal to r's bit pattern and 0 on every other vertex.
type Eq struct {
	r []Scalar
	g Group
}

func NewEq(g Group, r []Scalar) Eq {
	return Eq{r: r, g: g}
}

// Evals returns the table of eq(r, x) over all 2^len(r) vertices x, with
// r[0] as the most significant index bit, matching MultiLin's fold order.
func (e Eq) Evals() MultiLin {
	evals := MultiLin{e.g.Scalar().One()}
	for _, r := range e.r {
		next := make(MultiLin, 2*len(evals))
		for i, v := range evals {
			next[2*i+1] = e.g.Scalar().Mul(r, v)
			next[2*i] = e.g.Scalar().Sub(v, next[2*i+1])
		}
		evals = next
	}
	return evals
}

// Evaluate computes eq(r, rx) at an arbitrary (non-boolean) point rx via the
// closed-form product, without building the table.
func (e Eq) Evaluate(rx []Scalar) Scalar {
	res := e.g.Scalar().One()
	tmp := e.g.Scalar()
	sum := e.g.Scalar()
	one := e.g.Scalar().One()
	for i := range e.r {
		// 1 + 2*r_i*rx_i - r_i - rx_i
		tmp.Mul(e.r[i], rx[i])
		tmp.Add(tmp, tmp)
		tmp.Add(tmp, one)
		sum.Add(e.r[i], rx[i])
		tmp.Sub(tmp, sum)
		res.Mul(res, tmp)
	}
	return res
}
