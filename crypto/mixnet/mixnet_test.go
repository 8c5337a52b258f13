package mixnet

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
)

func testKeyPair(c *qt.C) elgamal.KeyPair {
	kp, err := elgamal.GenerateKeys(64)
	c.Assert(err, qt.IsNil)
	return kp
}

func encryptBits(c *qt.C, pk elgamal.PublicKey, bits []int) []elgamal.Ciphertext {
	cts := make([]elgamal.Ciphertext, len(bits))
	for i, b := range bits {
		ct, _, err := elgamal.Encrypt(b, pk)
		c.Assert(err, qt.IsNil)
		cts[i] = ct
	}
	return cts
}

func TestShufflePreservesCardinalityAndSum(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	bits := []int{1, 0, 1, 1, 0, 1, 0, 1}
	cts := encryptBits(c, pk, bits)

	mixed, proof, err := Shuffle(pk, cts)
	c.Assert(err, qt.IsNil)
	c.Assert(mixed, qt.HasLen, len(cts))
	c.Assert(proof, qt.Not(qt.IsNil))

	c.Assert(VerifyMix(kp.Params.P, cts, mixed, proof), qt.IsTrue)

	aggOrig, err := elgamal.HomomorphicAdd(kp.Params.P, cts)
	c.Assert(err, qt.IsNil)
	sumOrig, err := elgamal.DecryptSum(aggOrig, kp, uint64(len(cts)), elgamal.TallyLinear)
	c.Assert(err, qt.IsNil)

	aggMixed, err := elgamal.HomomorphicAdd(kp.Params.P, mixed)
	c.Assert(err, qt.IsNil)
	sumMixed, err := elgamal.DecryptSum(aggMixed, kp, uint64(len(mixed)), elgamal.TallyBSGS)
	c.Assert(err, qt.IsNil)

	c.Assert(sumMixed, qt.Equals, sumOrig)
}

func TestShuffleEmptyBatch(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)

	mixed, proof, err := Shuffle(kp.Public(), nil)
	c.Assert(err, qt.IsNil)
	c.Assert(mixed, qt.IsNil)
	c.Assert(proof, qt.IsNil)
}

func TestVerifyMixRejectsSizeMismatch(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	cts := encryptBits(c, pk, []int{1, 0, 1})
	mixed, proof, err := Shuffle(pk, cts)
	c.Assert(err, qt.IsNil)

	c.Assert(VerifyMix(kp.Params.P, cts[:2], mixed, proof), qt.IsFalse)
}

func TestVerifyMixRejectsNilProof(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	cts := encryptBits(c, pk, []int{1, 0})
	mixed, _, err := Shuffle(pk, cts)
	c.Assert(err, qt.IsNil)

	c.Assert(VerifyMix(kp.Params.P, cts, mixed, nil), qt.IsFalse)
}

func TestDecryptSumCacheMemoizes(t *testing.T) {
	c := qt.New(t)
	kp := testKeyPair(c)
	pk := kp.Public()

	cts := encryptBits(c, pk, []int{1, 1, 0})
	agg, err := elgamal.HomomorphicAdd(kp.Params.P, cts)
	c.Assert(err, qt.IsNil)

	cache, err := NewDecryptSumCache(8)
	c.Assert(err, qt.IsNil)

	sum1, err := cache.DecryptSum(agg, kp, uint64(len(cts)), elgamal.TallyLinear)
	c.Assert(err, qt.IsNil)
	c.Assert(sum1, qt.Equals, uint64(2))

	sum2, err := cache.DecryptSum(agg, kp, uint64(len(cts)), elgamal.TallyLinear)
	c.Assert(err, qt.IsNil)
	c.Assert(sum2, qt.Equals, uint64(2))

	sum3, err := cache.DecryptSum(agg, kp, uint64(len(cts)), elgamal.TallyBSGS)
	c.Assert(err, qt.IsNil)
	c.Assert(sum3, qt.Equals, uint64(2))
}
