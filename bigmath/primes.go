// Package bigmath provides the arbitrary-precision modular arithmetic the
// voting core is built on: primality testing, safe-prime generation,
// subgroup generator search, modular inverse and bounded discrete log
// recovery.
package bigmath

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/log"
)

// MillerRabinRounds is the default number of Miller-Rabin rounds used by
// IsPrime when the caller does not request a specific confidence level.
const MillerRabinRounds = 25

var (
	// ErrNoInverse is returned by ModInverse when gcd(a,m) != 1.
	ErrNoInverse = errors.New("bigmath: modular inverse does not exist")
	// ErrDLNotFound is returned by DiscreteLogSmall/DiscreteLogBSGS when no
	// exponent in the searched interval reproduces the target value.
	ErrDLNotFound = errors.New("bigmath: discrete log not found in interval")
)

// IsPrime reports whether n is prime using math/big's ProbablyPrime: rounds
// Miller-Rabin tests with pseudorandomly chosen bases plus a Baillie-PSW
// test. rounds <= 0 defaults to MillerRabinRounds.
func IsPrime(n *big.Int, rounds int) bool {
	if rounds <= 0 {
		rounds = MillerRabinRounds
	}
	return n.ProbablyPrime(rounds)
}

// GenerateSafePrime samples a safe prime p = 2q+1 with p of the requested
// bit length, both p and q prime. It samples a (bits-1)-bit odd integer
// with the high bit set, advances to the next prime q via trial division
// against small primes followed by Miller-Rabin, and accepts iff q has
// exactly bits-1 bits and 2q+1 is also prime; otherwise it resamples.
func GenerateSafePrime(bits int) (p, q *big.Int, err error) {
	if bits < 8 {
		return nil, nil, errors.New("bigmath: safe prime bit length too small")
	}
	one := big.NewInt(1)
	two := big.NewInt(2)
	for attempt := 0; ; attempt++ {
		cand, err := rand.Prime(rand.Reader, bits-1)
		if err != nil {
			return nil, nil, err
		}
		if cand.BitLen() != bits-1 {
			continue
		}
		p = new(big.Int).Mul(two, cand)
		p.Add(p, one)
		if IsPrime(p, MillerRabinRounds) {
			log.Debugw("generated safe prime", "bits", bits, "attempts", attempt+1)
			return p, cand, nil
		}
	}
}

// FindSubgroupGenerator finds a generator g of the unique order-q subgroup
// of Z_p* where p = 2q+1, by sampling h in [2,p-1] and squaring: g = h^2
// mod p is accepted iff g != 1 and g^q == 1 (mod p).
func FindSubgroupGenerator(p, q *big.Int) (*big.Int, error) {
	upper := new(big.Int).Sub(p, big.NewInt(2))
	if upper.Sign() <= 0 {
		return nil, errors.New("bigmath: p too small to find a generator")
	}
	for {
		h, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return nil, err
		}
		h.Add(h, big.NewInt(2)) // h in [2, p-1]

		g := new(big.Int).Exp(h, big.NewInt(2), p)
		if g.Cmp(big.NewInt(1)) == 0 {
			continue
		}
		if new(big.Int).Exp(g, q, p).Cmp(big.NewInt(1)) == 0 {
			return g, nil
		}
	}
}

// ModInverse returns the modular multiplicative inverse of a mod m. It
// returns ErrNoInverse if gcd(a,m) != 1.
func ModInverse(a, m *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(a, m)
	if inv == nil {
		return nil, ErrNoInverse
	}
	return inv, nil
}

// ModPow computes base^exp mod m.
func ModPow(base, exp, m *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, m)
}

// RandFieldElement draws a uniform random value in [1, max-1] using
// rejection sampling via crypto/rand, avoiding modulo bias.
func RandFieldElement(max *big.Int) (*big.Int, error) {
	upper := new(big.Int).Sub(max, big.NewInt(1))
	if upper.Sign() <= 0 {
		return nil, errors.New("bigmath: range too small to sample from")
	}
	v, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return nil, err
	}
	v.Add(v, big.NewInt(1)) // v in [1, max-1]
	return v, nil
}
