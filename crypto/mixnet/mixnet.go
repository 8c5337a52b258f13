// Package mixnet implements a re-encryption mix: it permutes a batch of
// ElGamal ciphertexts and re-randomizes each one, breaking the link between
// a ballot's position in the input batch and its position in the output.
//
// The accompanying MixProof is a structural/binding commitment only, not a
// cryptographic shuffle argument: it pins the permutation and randomness
// used via a hash commitment and lets a verifier check batch-size and
// element-range consistency, but it does not prove that the output is in
// fact a re-encryption of the input. A production mix would replace it with
// a real shuffle argument (e.g. Bayer-Groth).
package mixnet

import (
	"errors"
	"math/big"
	"math/rand/v2"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/bigmath"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/hash"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/log"
)

// ErrMixInvalid is returned by VerifyMix when the shuffled batch fails any
// structural consistency check against its proof.
var ErrMixInvalid = errors.New("mixnet: mix verification failed")

// MixProof binds a shuffle's permutation and re-randomization randomness to
// a single commitment, plus the batch-size metadata a verifier checks.
type MixProof struct {
	Commitment    *big.Int
	OriginalCount int
	MixedCount    int
}

// Shuffle permutes ciphertexts uniformly at random and re-randomizes each
// one under pk, returning the shuffled batch and a binding MixProof. An
// empty input returns an empty output and a nil proof.
func Shuffle(pk elgamal.PublicKey, ciphertexts []elgamal.Ciphertext) ([]elgamal.Ciphertext, *MixProof, error) {
	n := len(ciphertexts)
	if n == 0 {
		return nil, nil, nil
	}

	perm := rand.Perm(n)

	mixed := make([]elgamal.Ciphertext, n)
	randomness := make([]*big.Int, n)
	for i, srcIdx := range perm {
		r, err := bigmath.RandFieldElement(pk.Params.Q)
		if err != nil {
			return nil, nil, err
		}
		randomness[i] = r
		mixed[i] = reencrypt(ciphertexts[srcIdx], pk, r)
	}

	proof := commitMix(perm, randomness, n, n, pk.Params.Q)
	log.Debugw("mixnet: shuffled batch", "size", n)
	return mixed, proof, nil
}

// reencrypt re-randomizes ct under pk with fresh randomness r, preserving
// the plaintext it encrypts: (v', e') = (v·g^r, e·u^r) mod p.
func reencrypt(ct elgamal.Ciphertext, pk elgamal.PublicKey, r *big.Int) elgamal.Ciphertext {
	p := pk.Params.P
	v := new(big.Int).Mul(ct.V, bigmath.ModPow(pk.Params.G, r, p))
	v.Mod(v, p)
	e := new(big.Int).Mul(ct.E, bigmath.ModPow(pk.U, r, p))
	e.Mod(e, p)
	return elgamal.Ciphertext{V: v, E: e}
}

// commitMix builds the binding commitment over the permutation and
// randomness used, truncated the same way the source protocol does: only
// the first three randomness values are absorbed, since the commitment only
// needs to pin the transcript, not encode every value.
func commitMix(perm []int, randomness []*big.Int, originalCount, mixedCount int, q *big.Int) *MixProof {
	elements := make([]any, 0, len(perm)+4)
	for _, idx := range perm {
		elements = append(elements, idx)
	}
	for i := 0; i < len(randomness) && i < 3; i++ {
		elements = append(elements, randomness[i])
	}
	elements = append(elements, originalCount, mixedCount)

	c := hash.ToChallenge(elements...)
	c.Mod(c, q)

	return &MixProof{
		Commitment:    c,
		OriginalCount: originalCount,
		MixedCount:    mixedCount,
	}
}

// VerifyMix checks structural consistency between an original batch, its
// shuffled output and the accompanying proof: matching sizes, a present
// commitment, and every shuffled element lying in [1, p-1]. It does not
// verify that mixed is actually a re-encryption of original; see the
// package doc.
func VerifyMix(p *big.Int, original, mixed []elgamal.Ciphertext, proof *MixProof) bool {
	if proof == nil {
		return false
	}
	if len(original) != len(mixed) {
		return false
	}
	if proof.OriginalCount != len(original) || proof.MixedCount != len(mixed) {
		return false
	}
	if proof.Commitment == nil {
		return false
	}

	one := big.NewInt(1)
	upper := new(big.Int).Sub(p, one)
	for _, ct := range mixed {
		if ct.V.Cmp(one) < 0 || ct.V.Cmp(upper) > 0 {
			return false
		}
		if ct.E.Cmp(one) < 0 || ct.E.Cmp(upper) > 0 {
			return false
		}
	}
	return true
}

// DecryptSumCache memoizes elgamal.DecryptSum results keyed by the textual
// encoding of an aggregate ciphertext, so repeated tallies of the same
// aggregate (e.g. re-verifying a published result) avoid repeating the
// bounded discrete-log search.
type DecryptSumCache struct {
	cache *lru.Cache[string, uint64]
}

// NewDecryptSumCache creates a cache holding up to size aggregate results.
func NewDecryptSumCache(size int) (*DecryptSumCache, error) {
	c, err := lru.New[string, uint64](size)
	if err != nil {
		return nil, err
	}
	return &DecryptSumCache{cache: c}, nil
}

// DecryptSum returns elgamal.DecryptSum(agg, kp, maxSum, algo), serving the
// result from cache when the same aggregate ciphertext was decrypted before
// under the same algorithm.
func (d *DecryptSumCache) DecryptSum(agg elgamal.Ciphertext, kp elgamal.KeyPair, maxSum uint64, algo elgamal.TallyAlgorithm) (uint64, error) {
	key := string(algo) + ":" + agg.V.String() + ":" + agg.E.String()
	if v, ok := d.cache.Get(key); ok {
		return v, nil
	}
	sum, err := elgamal.DecryptSum(agg, kp, maxSum, algo)
	if err != nil {
		return 0, err
	}
	d.cache.Add(key, sum)
	return sum, nil
}
