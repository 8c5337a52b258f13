package nizk

import (
	"math/big"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
)

func testKeyPair(c *qt.C) elgamal.KeyPair {
	kp, err := elgamal.GenerateKeys(64)
	c.Assert(err, qt.IsNil)
	return kp
}

func TestProveVerifyBothBranches(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	for _, bit := range []int{0, 1} {
		ct, beta, err := elgamal.Encrypt(bit, pk)
		c.Assert(err, qt.IsNil)

		proof, err := Prove(bit, ct, beta, pk)
		c.Assert(err, qt.IsNil)

		c.Assert(Verify(ct, proof, pk), qt.IsTrue, qt.Commentf("bit=%d", bit))
	}
}

func TestProveInvalidBit(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	ct, beta, err := elgamal.Encrypt(0, pk)
	c.Assert(err, qt.IsNil)

	_, err = Prove(2, ct, beta, pk)
	c.Assert(err, qt.Equals, elgamal.ErrInvalidMessage)
}

func TestVerifyRejectsMutatedResponse(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	ct, beta, err := elgamal.Encrypt(1, pk)
	c.Assert(err, qt.IsNil)

	proof, err := Prove(1, ct, beta, pk)
	c.Assert(err, qt.IsNil)
	c.Assert(Verify(ct, proof, pk), qt.IsTrue)

	proof.Z1 = new(big.Int).Add(proof.Z1, big.NewInt(1))
	c.Assert(Verify(ct, proof, pk), qt.IsFalse)
}

func TestVerifyRejectsWrongCiphertext(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	ct0, beta0, err := elgamal.Encrypt(0, pk)
	c.Assert(err, qt.IsNil)
	proof, err := Prove(0, ct0, beta0, pk)
	c.Assert(err, qt.IsNil)

	ct1, _, err := elgamal.Encrypt(1, pk)
	c.Assert(err, qt.IsNil)

	c.Assert(Verify(ct1, proof, pk), qt.IsFalse)
}

func TestVerifyRejectsSwappedChallenges(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	ct, beta, err := elgamal.Encrypt(0, pk)
	c.Assert(err, qt.IsNil)
	proof, err := Prove(0, ct, beta, pk)
	c.Assert(err, qt.IsNil)

	proof.C1, proof.C2 = proof.C2, proof.C1
	c.Assert(Verify(ct, proof, pk), qt.IsFalse)
}
