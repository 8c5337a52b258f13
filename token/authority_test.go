package token

import (
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"
)

func newAuthority(c *qt.C) *Authority {
	a, err := NewAuthority()
	c.Assert(err, qt.IsNil)
	return a
}

func TestIssueAndVerify(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	tok, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)
	c.Assert(tok.VoterID, qt.Equals, "voter-1")

	c.Assert(a.Verify(tok.Token), qt.IsNil)
}

func TestIssueTwiceFails(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	_, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)

	_, err = a.Issue("voter-1")
	c.Assert(err, qt.Equals, ErrAlreadyIssued)
}

func TestVerifyMalformed(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)
	c.Assert(a.Verify("not-a-token"), qt.Equals, ErrTokenMalformed)
}

func TestVerifyUnknownVoter(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)
	c.Assert(a.Verify("ghost:deadbeef"), qt.Equals, ErrTokenUnknown)
}

func TestVerifyMismatch(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	_, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)

	c.Assert(a.Verify("voter-1:wrongtag"), qt.Equals, ErrTokenMismatch)
}

func TestDoubleVoteRejected(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	tok, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)

	c.Assert(a.VerifyAndMarkUsed(tok.Token), qt.IsNil)

	err = a.Verify(tok.Token)
	c.Assert(err, qt.Equals, ErrTokenUsed)
}

func TestVoterAlreadyVotedDifferentToken(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	tok, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)
	c.Assert(a.VerifyAndMarkUsed(tok.Token), qt.IsNil)

	a.mu.Lock()
	a.issued["voter-1"] = VoterToken{VoterID: "voter-1", Token: "voter-1:anothertag"}
	a.mu.Unlock()

	err = a.Verify("voter-1:anothertag")
	c.Assert(err, qt.Equals, ErrVoterAlreadyVoted)
}

func TestConcurrentVerifyAndMarkUsedSerializesToSingleWinner(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	tok, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)

	const attempts = 32
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.VerifyAndMarkUsed(tok.Token)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}
	c.Assert(successes, qt.Equals, 1)
}

func TestVoterCounters(t *testing.T) {
	c := qt.New(t)
	a := newAuthority(c)

	tok1, err := a.Issue("voter-1")
	c.Assert(err, qt.IsNil)
	_, err = a.Issue("voter-2")
	c.Assert(err, qt.IsNil)

	c.Assert(a.VoterCount(), qt.Equals, 2)
	c.Assert(a.VotedCount(), qt.Equals, 0)
	c.Assert(a.RemainingVoters(), qt.Equals, 2)

	c.Assert(a.VerifyAndMarkUsed(tok1.Token), qt.IsNil)

	c.Assert(a.VotedCount(), qt.Equals, 1)
	c.Assert(a.RemainingVoters(), qt.Equals, 1)
}
