// Package elgamal implements multiplicative ElGamal encryption over the
// order-q subgroup of Z_p* for a safe prime p = 2q+1, restricted to
// single-bit messages so that the homomorphic sum of many ciphertexts
// decrypts to a small plaintext recoverable by discrete-log search.
package elgamal

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/bigmath"
)

var (
	// ErrInvalidMessage is returned by Encrypt when the message bit is not 0 or 1.
	ErrInvalidMessage = errors.New("elgamal: message must be 0 or 1")
	// ErrEmptyAggregation is returned by HomomorphicAdd over an empty ciphertext list.
	ErrEmptyAggregation = errors.New("elgamal: cannot aggregate an empty ciphertext list")
)

// GroupParams describes the multiplicative subgroup the scheme operates
// in: p = 2q+1 with both prime, and g a generator of the order-q subgroup
// of Z_p*. It is immutable once created.
type GroupParams struct {
	P *big.Int
	Q *big.Int
	G *big.Int
}

// KeyPair holds the public parameters plus the public key element U =
// g^alpha mod p. The private scalar Alpha is carried here only for
// convenience of generation; ownership discipline (the tallying role being
// the only holder of it) is enforced by the election package, not by this
// type.
type KeyPair struct {
	Params GroupParams
	U      *big.Int // public key: u = g^alpha mod p
	Alpha  *big.Int // private key scalar, owned solely by the tallying role
}

// PublicKey is the subset of a KeyPair that may be shared freely.
type PublicKey struct {
	Params GroupParams
	U      *big.Int
}

// Public returns the shareable portion of the key pair.
func (kp KeyPair) Public() PublicKey {
	return PublicKey{Params: kp.Params, U: kp.U}
}

// Ciphertext is a multiplicative ElGamal ciphertext (v, e) = (g^beta, u^beta * g^b) mod p.
type Ciphertext struct {
	V *big.Int
	E *big.Int
}

// GenerateKeys samples a fresh safe-prime group of the requested bit
// length, finds a generator of its order-q subgroup, and draws a uniform
// private scalar alpha in [1, q-1].
func GenerateKeys(bits int) (KeyPair, error) {
	p, q, err := bigmath.GenerateSafePrime(bits)
	if err != nil {
		return KeyPair{}, fmt.Errorf("elgamal: generating safe prime: %w", err)
	}
	g, err := bigmath.FindSubgroupGenerator(p, q)
	if err != nil {
		return KeyPair{}, fmt.Errorf("elgamal: finding subgroup generator: %w", err)
	}
	alpha, err := bigmath.RandFieldElement(q)
	if err != nil {
		return KeyPair{}, fmt.Errorf("elgamal: sampling private key: %w", err)
	}
	u := bigmath.ModPow(g, alpha, p)

	return KeyPair{
		Params: GroupParams{P: p, Q: q, G: g},
		U:      u,
		Alpha:  alpha,
	}, nil
}

// Encrypt encrypts a single bit under pk, drawing a fresh uniform
// randomness beta in [1, q-1]. It returns the ciphertext and the
// randomness used (the latter is needed by the NIZK prover, never by the
// verifier).
func Encrypt(bit int, pk PublicKey) (Ciphertext, *big.Int, error) {
	if bit != 0 && bit != 1 {
		return Ciphertext{}, nil, ErrInvalidMessage
	}
	beta, err := bigmath.RandFieldElement(pk.Params.Q)
	if err != nil {
		return Ciphertext{}, nil, fmt.Errorf("elgamal: sampling randomness: %w", err)
	}
	ct := EncryptWithRandomness(bit, pk, beta)
	return ct, beta, nil
}

// EncryptWithRandomness encrypts bit under pk using the supplied
// randomness beta, without sampling. It does not validate bit, since
// callers that already validated it (e.g. Encrypt) should not pay for a
// redundant check.
func EncryptWithRandomness(bit int, pk PublicKey, beta *big.Int) Ciphertext {
	p := pk.Params.P
	v := bigmath.ModPow(pk.Params.G, beta, p)
	uBeta := bigmath.ModPow(pk.U, beta, p)
	gB := bigmath.ModPow(pk.Params.G, big.NewInt(int64(bit)), p)
	e := new(big.Int).Mul(uBeta, gB)
	e.Mod(e, p)
	return Ciphertext{V: v, E: e}
}

// Decrypt recovers g^m mod p from a ciphertext using the private scalar
// alpha. It does not attempt to recover m itself; see DecryptSum for the
// bounded discrete-log search over an aggregate.
func Decrypt(ct Ciphertext, kp KeyPair) (*big.Int, error) {
	p := kp.Params.P
	vAlpha := bigmath.ModPow(ct.V, kp.Alpha, p)
	vAlphaInv, err := bigmath.ModInverse(vAlpha, p)
	if err != nil {
		return nil, fmt.Errorf("elgamal: decrypting: %w", err)
	}
	gm := new(big.Int).Mul(ct.E, vAlphaInv)
	gm.Mod(gm, p)
	return gm, nil
}

// HomomorphicAdd multiplies the components of a list of ciphertexts,
// yielding a ciphertext that decrypts to g^(sum of the individual bits).
func HomomorphicAdd(p *big.Int, cts []Ciphertext) (Ciphertext, error) {
	if len(cts) == 0 {
		return Ciphertext{}, ErrEmptyAggregation
	}
	vProd := big.NewInt(1)
	eProd := big.NewInt(1)
	for _, ct := range cts {
		vProd.Mul(vProd, ct.V)
		vProd.Mod(vProd, p)
		eProd.Mul(eProd, ct.E)
		eProd.Mod(eProd, p)
	}
	return Ciphertext{V: vProd, E: eProd}, nil
}

// TallyAlgorithm selects the discrete-log search strategy DecryptSum uses to
// recover the plaintext sum from a decrypted aggregate.
type TallyAlgorithm string

const (
	// TallyLinear scans sequentially; simplest, fine for small electorates.
	TallyLinear TallyAlgorithm = "linear"
	// TallyBSGS uses baby-step/giant-step, O(sqrt(maxSum)) instead of
	// O(maxSum); worth the memory for large electorates.
	TallyBSGS TallyAlgorithm = "bsgs"
)

// DecryptSum decrypts an aggregated ciphertext and recovers the plaintext
// sum S in [0, maxSum] via discrete-log search using the requested
// algorithm. An unrecognized algorithm falls back to TallyLinear.
func DecryptSum(agg Ciphertext, kp KeyPair, maxSum uint64, algo TallyAlgorithm) (uint64, error) {
	gSum, err := Decrypt(agg, kp)
	if err != nil {
		return 0, err
	}

	var s *big.Int
	switch algo {
	case TallyBSGS:
		s, err = bigmath.DiscreteLogBSGS(kp.Params.G, gSum, kp.Params.P, maxSum)
	default:
		s, err = bigmath.DiscreteLogSmall(kp.Params.G, gSum, kp.Params.P, maxSum)
	}
	if err != nil {
		return 0, fmt.Errorf("elgamal: recovering aggregate: %w", err)
	}
	return s.Uint64(), nil
}
