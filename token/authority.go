// Package token implements the voter token authority: issuance,
// verification and single-use marking of per-voter tokens, preventing a
// registered voter from casting more than one ballot.
//
// The token MAC uses standard crypto/hmac with SHA-256 rather than the
// bare SHA256(key || message) construction of the system this package is
// modeled on, which is vulnerable to length-extension attacks; HMAC's
// nested construction closes that off.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	// ErrAlreadyIssued is returned by Issue when the voter already has a token.
	ErrAlreadyIssued = errors.New("token: voter already has an issued token")
	// ErrTokenMalformed is returned by Verify when the token string has no voter-id prefix.
	ErrTokenMalformed = errors.New("token: malformed token string")
	// ErrTokenUnknown is returned by Verify when the token's voter-id was never issued one.
	ErrTokenUnknown = errors.New("token: no token issued for this voter")
	// ErrTokenMismatch is returned by Verify when the presented token differs from the issued one.
	ErrTokenMismatch = errors.New("token: token does not match the one issued")
	// ErrTokenUsed is returned by Verify when the token was already marked used.
	ErrTokenUsed = errors.New("token: token already used")
	// ErrVoterAlreadyVoted is returned by Verify when the voter-id has already voted, even under a different token.
	ErrVoterAlreadyVoted = errors.New("token: voter has already voted")
)

// VoterToken is an issued, single-use voting credential.
type VoterToken struct {
	VoterID  string
	Token    string
	IssuedAt time.Time
}

// Authority issues and verifies voter tokens, and tracks which voters have
// already cast a vote. Verify and MarkUsed are serialized by a mutex so a
// single voter cannot race two concurrent ReceiveVote calls past the
// check-then-mark window.
type Authority struct {
	mu sync.Mutex

	secretKey []byte
	issued    map[string]VoterToken
	used      map[string]bool
	voted     map[string]bool
}

// NewAuthority creates an Authority with a freshly generated 32-byte HMAC
// key.
func NewAuthority() (*Authority, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("token: generating authority key: %w", err)
	}
	return &Authority{
		secretKey: key,
		issued:    make(map[string]VoterToken),
		used:      make(map[string]bool),
		voted:     make(map[string]bool),
	}, nil
}

// Issue mints a fresh token for voterID. It fails with ErrAlreadyIssued if
// the voter already holds one.
func (a *Authority) Issue(voterID string) (VoterToken, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.issued[voterID]; ok {
		return VoterToken{}, ErrAlreadyIssued
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return VoterToken{}, fmt.Errorf("token: generating nonce: %w", err)
	}

	issuedAt := time.Now().UTC()
	message := fmt.Sprintf("%s||%s||%s", voterID, issuedAt.Format(time.RFC3339Nano), hex.EncodeToString(nonce))

	mac := hmac.New(sha256.New, a.secretKey)
	mac.Write([]byte(message))
	tag := hex.EncodeToString(mac.Sum(nil))

	tok := VoterToken{
		VoterID:  voterID,
		Token:    voterID + ":" + tag,
		IssuedAt: issuedAt,
	}
	a.issued[voterID] = tok
	return tok, nil
}

// Verify reports whether tokenString is a currently valid, unused token for
// an un-voted voter, returning the specific rejection reason on failure.
func (a *Authority) Verify(tokenString string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.verifyLocked(tokenString)
}

func (a *Authority) verifyLocked(tokenString string) error {
	voterID, ok := splitVoterID(tokenString)
	if !ok {
		return ErrTokenMalformed
	}

	issued, ok := a.issued[voterID]
	if !ok {
		return ErrTokenUnknown
	}
	if issued.Token != tokenString {
		return ErrTokenMismatch
	}
	if a.used[tokenString] {
		return ErrTokenUsed
	}
	if a.voted[voterID] {
		return ErrVoterAlreadyVoted
	}
	return nil
}

// MarkUsed records tokenString as spent and its voter as having voted.
// Re-marking an already-used token is tolerated.
func (a *Authority) MarkUsed(tokenString string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	voterID, ok := splitVoterID(tokenString)
	if !ok {
		return
	}
	a.used[tokenString] = true
	a.voted[voterID] = true
}

// VerifyAndMarkUsed atomically verifies tokenString and, if valid, marks it
// used in the same critical section, closing the TOCTOU window a separate
// Verify+MarkUsed pair would leave open under concurrent callers.
func (a *Authority) VerifyAndMarkUsed(tokenString string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.verifyLocked(tokenString); err != nil {
		return err
	}
	voterID, _ := splitVoterID(tokenString)
	a.used[tokenString] = true
	a.voted[voterID] = true
	return nil
}

// VoterCount returns the number of voters who have been issued a token.
func (a *Authority) VoterCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.issued)
}

// VotedCount returns the number of voters who have already voted.
func (a *Authority) VotedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.voted)
}

// RemainingVoters returns the number of issued voters who have not yet voted.
func (a *Authority) RemainingVoters() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.issued) - len(a.voted)
}

// splitVoterID splits "voterID:tag" into its voter-id prefix.
func splitVoterID(tokenString string) (string, bool) {
	idx := strings.IndexByte(tokenString, ':')
	if idx <= 0 {
		return "", false
	}
	return tokenString[:idx], true
}
