package bigmath

import "math/big"

// DiscreteLogSmall finds x in [0, maxValue] such that g^x == h (mod p) by
// linear search. It is used only for recovering an aggregate tally, where
// maxValue is bounded by the number of ballots cast.
func DiscreteLogSmall(g, h, p *big.Int, maxValue uint64) (*big.Int, error) {
	current := big.NewInt(1)
	for x := uint64(0); x <= maxValue; x++ {
		if current.Cmp(h) == 0 {
			return new(big.Int).SetUint64(x), nil
		}
		current.Mul(current, g)
		current.Mod(current, p)
	}
	return nil, ErrDLNotFound
}

// DiscreteLogBSGS finds x in [0, maxValue] such that g^x == h (mod p) using
// baby-step/giant-step, running in O(sqrt(maxValue)) instead of the linear
// scan of DiscreteLogSmall. Intended for large electorates where the
// aggregate count makes the linear search impractical.
func DiscreteLogBSGS(g, h, p *big.Int, maxValue uint64) (*big.Int, error) {
	m := new(big.Int).Sqrt(new(big.Int).SetUint64(maxValue))
	if new(big.Int).Mul(m, m).Cmp(new(big.Int).SetUint64(maxValue)) < 0 {
		m.Add(m, big.NewInt(1))
	}
	if m.Sign() == 0 {
		m.SetInt64(1)
	}
	mU64 := m.Uint64()

	// baby steps: table[g^j mod p] = j, for j in [0, m-1]
	table := make(map[string]uint64, mU64+1)
	baby := big.NewInt(1)
	for j := uint64(0); j < mU64; j++ {
		table[baby.String()] = j
		baby.Mul(baby, g)
		baby.Mod(baby, p)
	}

	// giant step factor: g^-m mod p
	gm := new(big.Int).Exp(g, m, p)
	gmInv, err := ModInverse(gm, p)
	if err != nil {
		return nil, err
	}

	giant := new(big.Int).Set(h)
	for i := uint64(0); i <= mU64; i++ {
		if j, ok := table[giant.String()]; ok {
			x := i*mU64 + j
			if x <= maxValue {
				return new(big.Int).SetUint64(x), nil
			}
		}
		giant.Mul(giant, gmInv)
		giant.Mod(giant, p)
	}
	return nil, ErrDLNotFound
}
