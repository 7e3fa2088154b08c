package transcript

import (
	"testing"

	bls "github.com/drand/kyber-bls12381"
	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"
)

var g = bls.NewBLS12381Suite().G1()

func TestTranscriptDeterministic(t *testing.T) {
	s := g.Scalar().Pick(random.New())
	p := g.Point().Pick(random.New())

	run := func() Scalar {
		tr := New(g, "test")
		tr.AbsorbBytes("digest", []byte{1, 2, 3})
		tr.AbsorbScalar("s", s)
		tr.AbsorbPoint("p", p)
		out, err := tr.Squeeze("challenge")
		require.NoError(t, err)
		return out
	}
	require.True(t, run().Equal(run()))
}

func TestTranscriptOrderSensitive(t *testing.T) {
	a := g.Scalar().Pick(random.New())
	b := g.Scalar().Pick(random.New())

	tr1 := New(g, "test")
	tr1.AbsorbScalar("x", a)
	tr1.AbsorbScalar("y", b)
	c1, err := tr1.Squeeze("c")
	require.NoError(t, err)

	tr2 := New(g, "test")
	tr2.AbsorbScalar("x", b)
	tr2.AbsorbScalar("y", a)
	c2, err := tr2.Squeeze("c")
	require.NoError(t, err)

	require.False(t, c1.Equal(c2))
}

func TestTranscriptLabelSensitive(t *testing.T) {
	s := g.Scalar().Pick(random.New())

	tr1 := New(g, "test")
	tr1.AbsorbScalar("x", s)
	c1, err := tr1.Squeeze("c")
	require.NoError(t, err)

	tr2 := New(g, "test")
	tr2.AbsorbScalar("y", s)
	c2, err := tr2.Squeeze("c")
	require.NoError(t, err)

	require.False(t, c1.Equal(c2))
}

func TestTranscriptSqueezeNeverExhausts(t *testing.T) {
	// rejection sampling inside Pick can ask for more bytes than one
	// scalar's worth; every draw must still succeed
	tr := New(g, "test")
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		s, err := tr.Squeeze("c")
		require.NoError(t, err)
		buf, err := s.MarshalBinary()
		require.NoError(t, err)
		seen[string(buf)] = true
	}
	require.Len(t, seen, 1000)
}

func TestTranscriptChainedSqueezes(t *testing.T) {
	tr := New(g, "test")
	c1, err := tr.Squeeze("c")
	require.NoError(t, err)
	c2, err := tr.Squeeze("c")
	require.NoError(t, err)
	require.False(t, c1.Equal(c2))
}
