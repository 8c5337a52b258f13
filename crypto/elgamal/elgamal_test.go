package elgamal

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/bigmath"
)

func testKeyPair(c *qt.C) KeyPair {
	kp, err := GenerateKeys(64)
	c.Assert(err, qt.IsNil)
	return kp
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)

	for _, bit := range []int{0, 1} {
		ct, _, err := Encrypt(bit, kp.Public())
		c.Assert(err, qt.IsNil)

		gm, err := Decrypt(ct, kp)
		c.Assert(err, qt.IsNil)

		want := bigmath.ModPow(kp.Params.G, big.NewInt(int64(bit)), kp.Params.P)
		c.Assert(gm.Cmp(want), qt.Equals, 0)
	}
}

func TestEncryptInvalidMessage(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	_, _, err := Encrypt(2, kp.Public())
	c.Assert(err, qt.Equals, ErrInvalidMessage)
}

func TestHomomorphicAddAndDecryptSum(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)

	bits := []int{1, 0, 1, 1, 0}
	var cts []Ciphertext
	for _, b := range bits {
		ct, _, err := Encrypt(b, kp.Public())
		c.Assert(err, qt.IsNil)
		cts = append(cts, ct)
	}

	agg, err := HomomorphicAdd(kp.Params.P, cts)
	c.Assert(err, qt.IsNil)

	sum, err := DecryptSum(agg, kp, uint64(len(cts)), TallyLinear)
	c.Assert(err, qt.IsNil)
	c.Assert(sum, qt.Equals, uint64(3))

	sumBSGS, err := DecryptSum(agg, kp, uint64(len(cts)), TallyBSGS)
	c.Assert(err, qt.IsNil)
	c.Assert(sumBSGS, qt.Equals, uint64(3))
}

func TestHomomorphicAddEmpty(t *testing.T) {
	c := qt.New(t)
	_, err := HomomorphicAdd(testKeyPair(c).Params.P, nil)
	c.Assert(err, qt.Equals, ErrEmptyAggregation)
}
