// Package hash implements the Fiat-Shamir absorbing function used to turn
// an interactive Sigma-protocol transcript into a non-interactive proof.
package hash

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// ToChallenge deterministically absorbs a sequence of heterogeneous
// elements into a single SHA-256 digest and returns it as a non-negative
// big integer. Canonicalisation rules:
//
//   - *big.Int / int / int64 / uint64: big-endian minimal-byte encoding of
//     the absolute value (zero encodes to the empty string).
//   - string: UTF-8 bytes.
//   - []byte: as-is.
//   - anything else: decimal text via fmt.Sprint, then UTF-8.
//
// Reduction modulo the group order q is left to the caller. Same argument
// sequence always yields the same digest; reordering or type-coercing an
// element changes the output, which is essential for transcript binding.
func ToChallenge(elements ...any) *big.Int {
	h := sha256.New()
	for _, e := range elements {
		h.Write(canonicalize(e))
	}
	digest := h.Sum(nil)
	return new(big.Int).SetBytes(digest)
}

func canonicalize(e any) []byte {
	switch v := e.(type) {
	case *big.Int:
		return bigIntBytes(v)
	case int:
		return bigIntBytes(big.NewInt(int64(v)))
	case int64:
		return bigIntBytes(big.NewInt(v))
	case uint64:
		return bigIntBytes(new(big.Int).SetUint64(v))
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return []byte(fmt.Sprint(v))
	}
}

// bigIntBytes returns the big-endian minimal-byte encoding of |v|; zero
// encodes to the empty byte string. Callers in this module never pass
// negative values.
func bigIntBytes(v *big.Int) []byte {
	if v.Sign() == 0 {
		return nil
	}
	return new(big.Int).Abs(v).Bytes()
}
