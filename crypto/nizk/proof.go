// -----------------------------------------------------------------------------
//  Disjunctive Chaum-Pedersen NIZK proof of ballot validity
//
//  Goal: prove NON-interactively that a ciphertext (v, e) encrypts g^0 or
//  g^1 under public key u = g^alpha, without revealing which, and without
//  revealing the encryption randomness beta.
//
//  Statement: exists beta such that
//      (v = g^beta AND e   = u^beta)   [branch 0, encrypts the bit 0]
//   OR (v = g^beta AND e/g = u^beta)   [branch 1, encrypts the bit 1]
//
//  This is an OR-composition of two standard Chaum-Pedersen
//  equal-discrete-log proofs, rendered non-interactive with Fiat-Shamir:
//  the prover proves the true branch honestly and simulates the false
//  branch by picking its challenge and response first and back-solving
//  its commitment from the verification equations.
// -----------------------------------------------------------------------------

package nizk

import (
	"errors"
	"math/big"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/bigmath"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/hash"
)

// ErrProofInvalid is the error kind for a proof whose verification equations
// fail. Verify itself reports failure by returning false; nothing in this
// package returns ErrProofInvalid.
var ErrProofInvalid = errors.New("nizk: proof verification failed")

// Proof is a non-interactive disjunctive Chaum-Pedersen proof binding a
// ciphertext to "this encrypts 0 or 1" without revealing which.
type Proof struct {
	A1V, A1E *big.Int // branch-0 commitments
	A2V, A2E *big.Int // branch-1 commitments
	Z1, Z2   *big.Int // branch responses
	C1, C2   *big.Int // branch challenges, C1+C2 = H(transcript) mod q
}

// Prove builds a disjunctive proof that ciphertext ct encrypts bit, using
// the encryption randomness beta that produced ct. beta and the proof's
// internal simulated randomness must never be reused across proofs.
func Prove(bit int, ct elgamal.Ciphertext, beta *big.Int, pk elgamal.PublicKey) (Proof, error) {
	switch bit {
	case 0:
		return proveBranch0Real(ct, beta, pk)
	case 1:
		return proveBranch1Real(ct, beta, pk)
	default:
		return Proof{}, elgamal.ErrInvalidMessage
	}
}

// proveBranch0Real proves the real b=0 branch and simulates the b=1 branch.
func proveBranch0Real(ct elgamal.Ciphertext, beta *big.Int, pk elgamal.PublicKey) (Proof, error) {
	p, q, g, u := pk.Params.P, pk.Params.Q, pk.Params.G, pk.U
	v, e := ct.V, ct.E

	w1, err := bigmath.RandFieldElement(q)
	if err != nil {
		return Proof{}, err
	}
	a1v := bigmath.ModPow(g, w1, p)
	a1e := bigmath.ModPow(u, w1, p)

	c2, err := bigmath.RandFieldElement(q)
	if err != nil {
		return Proof{}, err
	}
	z2, err := bigmath.RandFieldElement(q)
	if err != nil {
		return Proof{}, err
	}
	a2v, err := simulateCommitment(g, v, z2, c2, p)
	if err != nil {
		return Proof{}, err
	}
	eDivG, err := divByG(e, g, p)
	if err != nil {
		return Proof{}, err
	}
	a2e, err := simulateCommitment(u, eDivG, z2, c2, p)
	if err != nil {
		return Proof{}, err
	}

	c := transcriptChallenge(p, q, g, u, v, e, a1v, a1e, a2v, a2e, q)
	c1 := new(big.Int).Sub(c, c2)
	c1.Mod(c1, q)

	z1 := new(big.Int).Mul(c1, beta)
	z1.Add(z1, w1)
	z1.Mod(z1, q)

	return Proof{A1V: a1v, A1E: a1e, A2V: a2v, A2E: a2e, Z1: z1, Z2: z2, C1: c1, C2: c2}, nil
}

// proveBranch1Real proves the real b=1 branch and simulates the b=0 branch.
func proveBranch1Real(ct elgamal.Ciphertext, beta *big.Int, pk elgamal.PublicKey) (Proof, error) {
	p, q, g, u := pk.Params.P, pk.Params.Q, pk.Params.G, pk.U
	v, e := ct.V, ct.E

	c1, err := bigmath.RandFieldElement(q)
	if err != nil {
		return Proof{}, err
	}
	z1, err := bigmath.RandFieldElement(q)
	if err != nil {
		return Proof{}, err
	}
	a1v, err := simulateCommitment(g, v, z1, c1, p)
	if err != nil {
		return Proof{}, err
	}
	a1e, err := simulateCommitment(u, e, z1, c1, p)
	if err != nil {
		return Proof{}, err
	}

	w2, err := bigmath.RandFieldElement(q)
	if err != nil {
		return Proof{}, err
	}
	a2v := bigmath.ModPow(g, w2, p)
	a2e := bigmath.ModPow(u, w2, p)

	c := transcriptChallenge(p, q, g, u, v, e, a1v, a1e, a2v, a2e, q)
	c2 := new(big.Int).Sub(c, c1)
	c2.Mod(c2, q)

	z2 := new(big.Int).Mul(c2, beta)
	z2.Add(z2, w2)
	z2.Mod(z2, q)

	return Proof{A1V: a1v, A1E: a1e, A2V: a2v, A2E: a2e, Z1: z1, Z2: z2, C1: c1, C2: c2}, nil
}

// Verify checks a disjunctive proof against ciphertext ct under pk.
func Verify(ct elgamal.Ciphertext, proof Proof, pk elgamal.PublicKey) bool {
	p, q, g, u := pk.Params.P, pk.Params.Q, pk.Params.G, pk.U
	v, e := ct.V, ct.E

	c := transcriptChallenge(p, q, g, u, v, e, proof.A1V, proof.A1E, proof.A2V, proof.A2E, q)

	sumC := new(big.Int).Add(proof.C1, proof.C2)
	sumC.Mod(sumC, q)
	if sumC.Cmp(c) != 0 {
		return false
	}

	// Branch 0: g^z1 == a1v * v^c1, u^z1 == a1e * e^c1
	if !checkEquation(g, proof.Z1, proof.A1V, v, proof.C1, p) {
		return false
	}
	if !checkEquation(u, proof.Z1, proof.A1E, e, proof.C1, p) {
		return false
	}

	// Branch 1: g^z2 == a2v * v^c2, u^z2 == a2e * (e/g)^c2
	if !checkEquation(g, proof.Z2, proof.A2V, v, proof.C2, p) {
		return false
	}
	eDivG, err := divByG(e, g, p)
	if err != nil {
		return false
	}
	if !checkEquation(u, proof.Z2, proof.A2E, eDivG, proof.C2, p) {
		return false
	}

	return true
}

// checkEquation reports whether base^z == commitment * target^challenge (mod p).
func checkEquation(base, z, commitment, target, challenge, p *big.Int) bool {
	lhs := bigmath.ModPow(base, z, p)
	rhs := new(big.Int).Mul(commitment, bigmath.ModPow(target, challenge, p))
	rhs.Mod(rhs, p)
	return lhs.Cmp(rhs) == 0
}

// simulateCommitment back-solves a1 = base^z * target^-c (mod p), the
// commitment that makes the verification equation base^z == a1*target^c
// hold for an arbitrarily chosen (challenge, response) pair.
func simulateCommitment(base, target, z, challenge, p *big.Int) (*big.Int, error) {
	targetC := bigmath.ModPow(target, challenge, p)
	targetCInv, err := bigmath.ModInverse(targetC, p)
	if err != nil {
		return nil, err
	}
	a := new(big.Int).Mul(bigmath.ModPow(base, z, p), targetCInv)
	a.Mod(a, p)
	return a, nil
}

// divByG computes e * g^-1 mod p.
func divByG(e, g, p *big.Int) (*big.Int, error) {
	gInv, err := bigmath.ModInverse(g, p)
	if err != nil {
		return nil, err
	}
	out := new(big.Int).Mul(e, gInv)
	out.Mod(out, p)
	return out, nil
}

// transcriptChallenge computes c = H(p,q,g,u,v,e,a1v,a1e,a2v,a2e) mod q.
func transcriptChallenge(p, q, g, u, v, e, a1v, a1e, a2v, a2e, mod *big.Int) *big.Int {
	c := hash.ToChallenge(p, q, g, u, v, e, a1v, a1e, a2v, a2e)
	c.Mod(c, mod)
	return c
}
