// Package election composes the cryptographic primitives into the four
// orchestrator roles of a referendum: an Authority that sets up the
// election and registers voters, Voters who cast encrypted ballots, a
// VotingCenter that validates and records them, and a TallyingCenter that
// mixes, aggregates and decrypts the final tally.
package election

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/audit"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/mixnet"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/nizk"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/log"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/token"
)

// Phase is the election's position in its lifecycle, tracked by the
// Authority. Authority.SetupElection and Authority.RegisterVoters reject
// being called out of order; VotingCenter and TallyingCenter do not consult
// the phase, and no operation moves an Authority to PhaseTallied.
type Phase int

const (
	PhaseConfigured Phase = iota
	PhaseRegistering
	PhaseVoting
	PhaseTallied
)

func (p Phase) String() string {
	switch p {
	case PhaseConfigured:
		return "configured"
	case PhaseRegistering:
		return "registering"
	case PhaseVoting:
		return "voting"
	case PhaseTallied:
		return "tallied"
	default:
		return "unknown"
	}
}

// ErrWrongPhase is returned when an operation is invoked out of the
// election's expected lifecycle order.
var ErrWrongPhase = errors.New("election: operation not valid in current phase")

// EncryptedVote bundles a cast ballot with its eligibility token and
// validity proof, as handed from a Voter to a VotingCenter.
type EncryptedVote struct {
	VoterID    string
	Token      string
	Ciphertext elgamal.Ciphertext
	Proof      nizk.Proof
}

// Authority generates the election's cryptographic parameters, issues
// voter tokens, and records both to the audit log.
type Authority struct {
	mu sync.Mutex

	bits      int
	keyPair   elgamal.KeyPair
	tokens    *token.Authority
	auditLog  *audit.Log
	phase     Phase
	voterIDs  []string
}

// NewAuthority creates an election Authority that will generate keys of the
// given bit length on SetupElection, sharing auditLog with the rest of the
// orchestrator so every role's events land on one chain.
func NewAuthority(bits int, auditLog *audit.Log) (*Authority, error) {
	tokens, err := token.NewAuthority()
	if err != nil {
		return nil, fmt.Errorf("election: creating token authority: %w", err)
	}
	return &Authority{
		bits:     bits,
		tokens:   tokens,
		auditLog: auditLog,
		phase:    PhaseConfigured,
	}, nil
}

// SetupElection generates the ElGamal key pair and records a SETUP event.
// It must be called exactly once, before RegisterVoters.
func (a *Authority) SetupElection() (elgamal.PublicKey, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseConfigured {
		return elgamal.PublicKey{}, fmt.Errorf("election: setup: %w", ErrWrongPhase)
	}

	kp, err := elgamal.GenerateKeys(a.bits)
	if err != nil {
		return elgamal.PublicKey{}, fmt.Errorf("election: generating keys: %w", err)
	}
	a.keyPair = kp

	if _, err := a.auditLog.Append(audit.KindSetup, map[string]any{
		"bits": a.bits,
	}); err != nil {
		return elgamal.PublicKey{}, err
	}

	a.phase = PhaseRegistering
	log.Infow("election: setup complete", "bits", a.bits)
	return kp.Public(), nil
}

// RegisterVoters issues one token per voter id and records a REGISTRO event
// for each. It may be called only during the registering phase.
func (a *Authority) RegisterVoters(voterIDs []string) (map[string]token.VoterToken, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.phase != PhaseRegistering {
		return nil, fmt.Errorf("election: register voters: %w", ErrWrongPhase)
	}

	issued := make(map[string]token.VoterToken, len(voterIDs))
	for _, id := range voterIDs {
		tok, err := a.tokens.Issue(id)
		if err != nil {
			return nil, fmt.Errorf("election: issuing token for %q: %w", id, err)
		}
		issued[id] = tok
		a.voterIDs = append(a.voterIDs, id)

		if _, err := a.auditLog.Append(audit.KindRegister, map[string]any{
			"voter_id":      id,
			"token_issued": true,
		}); err != nil {
			return nil, err
		}
	}

	a.phase = PhaseVoting
	log.Infow("election: voters registered", "count", len(voterIDs))
	return issued, nil
}

// TokenAuthority exposes the underlying token authority so a VotingCenter
// can be constructed against it.
func (a *Authority) TokenAuthority() *token.Authority {
	return a.tokens
}

// PrivateKeyPair exposes the full key pair for constructing a
// TallyingCenter. It must only be handed to the tallying role.
func (a *Authority) PrivateKeyPair() elgamal.KeyPair {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.keyPair
}

// Phase reports the authority's current lifecycle phase.
func (a *Authority) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Voter holds one registered voter's identity and token, and casts
// encrypted ballots on their behalf.
type Voter struct {
	VoterID string
	Token   token.VoterToken
}

// NewVoter creates a Voter from an issued token.
func NewVoter(voterID string, tok token.VoterToken) Voter {
	return Voter{VoterID: voterID, Token: tok}
}

// CastVote encrypts choice (true = yes, false = no) under pk and attaches a
// disjunctive validity proof, returning a bundle ready for a VotingCenter.
func (v Voter) CastVote(choice bool, pk elgamal.PublicKey) (EncryptedVote, error) {
	bit := 0
	if choice {
		bit = 1
	}

	ct, beta, err := elgamal.Encrypt(bit, pk)
	if err != nil {
		return EncryptedVote{}, fmt.Errorf("election: encrypting vote: %w", err)
	}

	proof, err := nizk.Prove(bit, ct, beta, pk)
	if err != nil {
		return EncryptedVote{}, fmt.Errorf("election: proving vote: %w", err)
	}

	return EncryptedVote{
		VoterID:    v.VoterID,
		Token:      v.Token.Token,
		Ciphertext: ct,
		Proof:      proof,
	}, nil
}

// RejectedVote records why a received ballot was not accepted.
type RejectedVote struct {
	VoterID string
	Reason  string
}

// VotingCenter validates incoming ballots against the token authority and
// the NIZK, records accepted ballots to the audit log, and tracks
// rejections for later inspection.
type VotingCenter struct {
	mu sync.Mutex

	tokens   *token.Authority
	pk       elgamal.PublicKey
	auditLog *audit.Log

	validVotes    []EncryptedVote
	rejectedVotes []RejectedVote
}

// NewVotingCenter creates a VotingCenter validating against tokens and pk,
// recording accepted ballots to auditLog.
func NewVotingCenter(tokens *token.Authority, pk elgamal.PublicKey, auditLog *audit.Log) *VotingCenter {
	return &VotingCenter{tokens: tokens, pk: pk, auditLog: auditLog}
}

// ReceiveVote validates ev in order: token check, then NIZK check, then
// records the ballot and marks the token used. Any failure appends to the
// rejected list with a reason and leaves no audit trail for that attempt.
func (vc *VotingCenter) ReceiveVote(ev EncryptedVote) (bool, error) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	if err := vc.tokens.Verify(ev.Token); err != nil {
		vc.rejectedVotes = append(vc.rejectedVotes, RejectedVote{
			VoterID: ev.VoterID,
			Reason:  "invalid token: " + err.Error(),
		})
		return false, nil
	}

	if !nizk.Verify(ev.Ciphertext, ev.Proof, vc.pk) {
		vc.rejectedVotes = append(vc.rejectedVotes, RejectedVote{
			VoterID: ev.VoterID,
			Reason:  "invalid NIZK proof",
		})
		return false, nil
	}

	if err := vc.tokens.VerifyAndMarkUsed(ev.Token); err != nil {
		vc.rejectedVotes = append(vc.rejectedVotes, RejectedVote{
			VoterID: ev.VoterID,
			Reason:  "invalid token: " + err.Error(),
		})
		return false, nil
	}

	vc.validVotes = append(vc.validVotes, ev)

	if _, err := vc.auditLog.Append(audit.KindVote, map[string]any{
		"voter_id":       ev.VoterID,
		"vote_valid":     true,
		"nizk_verified": true,
	}); err != nil {
		return false, err
	}

	return true, nil
}

// ValidCiphertexts returns just the ciphertexts of accepted ballots, ready
// to hand to a TallyingCenter.
func (vc *VotingCenter) ValidCiphertexts() []elgamal.Ciphertext {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	out := make([]elgamal.Ciphertext, len(vc.validVotes))
	for i, ev := range vc.validVotes {
		out[i] = ev.Ciphertext
	}
	return out
}

// RejectedVotes returns the ballots rejected so far, with their reasons.
func (vc *VotingCenter) RejectedVotes() []RejectedVote {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return append([]RejectedVote(nil), vc.rejectedVotes...)
}

// Stats summarizes a VotingCenter's progress so far.
type Stats struct {
	TotalVotes        int
	ValidVotes        int
	RejectedVotes     int
	RegisteredVoters  int
	ParticipationRate float64
}

// Stats reports ballot counters and the participation rate among registered voters.
func (vc *VotingCenter) Stats() Stats {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	registered := vc.tokens.VoterCount()
	var participation float64
	if registered > 0 {
		participation = float64(len(vc.validVotes)) / float64(registered) * 100
	}

	return Stats{
		TotalVotes:        len(vc.validVotes) + len(vc.rejectedVotes),
		ValidVotes:        len(vc.validVotes),
		RejectedVotes:     len(vc.rejectedVotes),
		RegisteredVoters:  registered,
		ParticipationRate: participation,
	}
}

// TallyingCenter holds the private key and mixes, aggregates and decrypts
// the final tally from a batch of ciphertexts.
type TallyingCenter struct {
	keyPair  elgamal.KeyPair
	auditLog *audit.Log
	cache    *mixnet.DecryptSumCache
	algo     elgamal.TallyAlgorithm
}

// NewTallyingCenter creates a TallyingCenter holding the full key pair kp,
// recording its phases to auditLog, and recovering the tally with algo
// (see config.ElectionConfig.TallyAlgorithm).
func NewTallyingCenter(kp elgamal.KeyPair, auditLog *audit.Log, algo elgamal.TallyAlgorithm) (*TallyingCenter, error) {
	cache, err := mixnet.NewDecryptSumCache(32)
	if err != nil {
		return nil, fmt.Errorf("election: creating tally cache: %w", err)
	}
	return &TallyingCenter{keyPair: kp, auditLog: auditLog, cache: cache, algo: algo}, nil
}

// Results is the outcome of a tally: counts of yes and no ballots.
type Results struct {
	Yes int
	No  int
}

// TallyVotes mixes ciphertexts, verifies the mix, homomorphically
// aggregates, and recovers the yes count via bounded discrete-log search;
// no is the remainder. An empty batch tallies to (0,0) without touching the
// audit log.
func (tc *TallyingCenter) TallyVotes(ciphertexts []elgamal.Ciphertext) (Results, error) {
	if len(ciphertexts) == 0 {
		return Results{}, nil
	}

	mixed, proof, err := mixnet.Shuffle(tc.keyPair.Public(), ciphertexts)
	if err != nil {
		return Results{}, fmt.Errorf("election: shuffling ballots: %w", err)
	}
	if !mixnet.VerifyMix(tc.keyPair.Params.P, ciphertexts, mixed, proof) {
		return Results{}, mixnet.ErrMixInvalid
	}

	if _, err := tc.auditLog.Append(audit.KindMix, map[string]any{
		"original_count": len(ciphertexts),
		"mixed_count":    len(mixed),
		"mix_verified":   true,
	}); err != nil {
		return Results{}, err
	}

	agg, err := elgamal.HomomorphicAdd(tc.keyPair.Params.P, mixed)
	if err != nil {
		return Results{}, fmt.Errorf("election: aggregating ballots: %w", err)
	}

	yes, err := tc.cache.DecryptSum(agg, tc.keyPair, uint64(len(mixed)), tc.algo)
	if err != nil {
		return Results{}, fmt.Errorf("election: recovering tally: %w", err)
	}
	no := len(mixed) - int(yes)

	if _, err := tc.auditLog.Append(audit.KindTally, map[string]any{
		"total_votes":     len(mixed),
		"votes_yes":       yes,
		"votes_no":        no,
		"tally_algorithm": string(tc.algo),
	}); err != nil {
		return Results{}, err
	}

	log.Infow("election: tally complete", "yes", yes, "no", no)
	return Results{Yes: int(yes), No: no}, nil
}

// PublishResults renders the final tally as a human-readable summary,
// mirroring the announcement an election authority would read out.
func PublishResults(results Results) string {
	total := results.Yes + results.No
	var yesPct, noPct float64
	if total > 0 {
		yesPct = float64(results.Yes) / float64(total) * 100
		noPct = float64(results.No) / float64(total) * 100
	}
	return fmt.Sprintf(
		"YES: %d (%.2f%%)  NO: %d (%.2f%%)  TOTAL: %d",
		results.Yes, yesPct, results.No, noPct, total,
	)
}
