package hash

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestToChallengeDeterministic(t *testing.T) {
	c := qt.New(t)

	a := ToChallenge(big.NewInt(23), big.NewInt(11), big.NewInt(5), "domain-sep")
	b := ToChallenge(big.NewInt(23), big.NewInt(11), big.NewInt(5), "domain-sep")
	c.Assert(a.Cmp(b), qt.Equals, 0)
}

func TestToChallengeOrderSensitive(t *testing.T) {
	c := qt.New(t)

	a := ToChallenge(big.NewInt(1), big.NewInt(2))
	b := ToChallenge(big.NewInt(2), big.NewInt(1))
	c.Assert(a.Cmp(b) != 0, qt.IsTrue)
}

func TestToChallengeNonNegative(t *testing.T) {
	c := qt.New(t)
	v := ToChallenge("anything")
	c.Assert(v.Sign() >= 0, qt.IsTrue)
}
