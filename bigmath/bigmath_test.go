package bigmath

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSafePrimeScenario(t *testing.T) {
	c := qt.New(t)

	p := big.NewInt(23)
	g := big.NewInt(5)

	want := []int64{1, 5, 2, 10, 4, 20, 8, 17, 16, 11}
	cur := big.NewInt(1)
	for x := 0; x < len(want); x++ {
		c.Assert(cur.Int64(), qt.Equals, want[x])
		cur.Mul(cur, g)
		cur.Mod(cur, p)
	}

	h := big.NewInt(17)
	x, err := DiscreteLogSmall(g, h, p, 20)
	c.Assert(err, qt.IsNil)
	c.Assert(x.Int64(), qt.Equals, int64(7))
}

func TestDiscreteLogBSGSAgreesWithLinear(t *testing.T) {
	c := qt.New(t)
	p := big.NewInt(23)
	g := big.NewInt(5)
	h := big.NewInt(17)

	linear, err := DiscreteLogSmall(g, h, p, 20)
	c.Assert(err, qt.IsNil)

	bsgs, err := DiscreteLogBSGS(g, h, p, 20)
	c.Assert(err, qt.IsNil)
	c.Assert(bsgs.Cmp(linear), qt.Equals, 0)
}

func TestDiscreteLogNotFound(t *testing.T) {
	c := qt.New(t)
	p := big.NewInt(23)
	g := big.NewInt(5)
	h := big.NewInt(14) // 5 generates all of Z_23*; 5^21 = 14 lies beyond the searched interval [0, 20]

	_, err := DiscreteLogSmall(g, h, p, 20)
	c.Assert(err, qt.Equals, ErrDLNotFound)
}

func TestGenerateSafePrime(t *testing.T) {
	c := qt.New(t)
	p, q, err := GenerateSafePrime(32)
	c.Assert(err, qt.IsNil)

	two := big.NewInt(2)
	recomputedP := new(big.Int).Add(new(big.Int).Mul(two, q), big.NewInt(1))
	c.Assert(p.Cmp(recomputedP), qt.Equals, 0)
	c.Assert(IsPrime(p, MillerRabinRounds), qt.IsTrue)
	c.Assert(IsPrime(q, MillerRabinRounds), qt.IsTrue)
}

func TestFindSubgroupGenerator(t *testing.T) {
	c := qt.New(t)
	p, q, err := GenerateSafePrime(32)
	c.Assert(err, qt.IsNil)

	g, err := FindSubgroupGenerator(p, q)
	c.Assert(err, qt.IsNil)
	c.Assert(g.Cmp(big.NewInt(1)) != 0, qt.IsTrue)
	c.Assert(new(big.Int).Exp(g, q, p).Cmp(big.NewInt(1)), qt.Equals, 0)
}

func TestModInverseNoInverse(t *testing.T) {
	c := qt.New(t)
	_, err := ModInverse(big.NewInt(4), big.NewInt(8))
	c.Assert(err, qt.Equals, ErrNoInverse)
}

func TestModInverseRoundTrip(t *testing.T) {
	c := qt.New(t)
	a := big.NewInt(7)
	m := big.NewInt(23)
	inv, err := ModInverse(a, m)
	c.Assert(err, qt.IsNil)

	prod := new(big.Int).Mul(a, inv)
	prod.Mod(prod, m)
	c.Assert(prod.Int64(), qt.Equals, int64(1))
}
