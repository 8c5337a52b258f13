// Command evote-demo runs a fixed, non-interactive 8-voter referendum
// end-to-end: setup, registration, voting, mixing and tallying, printing
// the final results and the audit chain's event count and integrity check.
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/audit"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/config"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/election"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/log"
)

var demoVoters = []struct {
	id     string
	choice bool
}{
	{"alice", true},
	{"bob", false},
	{"carol", true},
	{"dave", true},
	{"erin", false},
	{"frank", true},
	{"grace", false},
	{"heidi", true},
}

func main() {
	flag.CommandLine.SortFlags = false

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "evote-demo: loading configuration: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output)

	if err := run(cfg); err != nil {
		log.Errorw(err, "evote-demo: run failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	auditLog := audit.NewLog()

	auth, err := election.NewAuthority(cfg.Election.GroupBits, auditLog)
	if err != nil {
		return fmt.Errorf("creating authority: %w", err)
	}

	pk, err := auth.SetupElection()
	if err != nil {
		return fmt.Errorf("setting up election: %w", err)
	}
	log.Infow("election configured", "bits", cfg.Election.GroupBits)

	voterIDs := make([]string, len(demoVoters))
	for i, v := range demoVoters {
		voterIDs[i] = v.id
	}

	tokens, err := auth.RegisterVoters(voterIDs)
	if err != nil {
		return fmt.Errorf("registering voters: %w", err)
	}

	vc := election.NewVotingCenter(auth.TokenAuthority(), pk, auditLog)
	for _, dv := range demoVoters {
		voter := election.NewVoter(dv.id, tokens[dv.id])
		ev, err := voter.CastVote(dv.choice, pk)
		if err != nil {
			return fmt.Errorf("voter %s casting vote: %w", dv.id, err)
		}
		accepted, err := vc.ReceiveVote(ev)
		if err != nil {
			return fmt.Errorf("receiving vote from %s: %w", dv.id, err)
		}
		fmt.Printf("%-8s voted %5s -> accepted=%v\n", dv.id, yesNo(dv.choice), accepted)
	}

	stats := vc.Stats()
	fmt.Printf("\nvotes: %d valid, %d rejected (%.1f%% participation)\n",
		stats.ValidVotes, stats.RejectedVotes, stats.ParticipationRate)

	tc, err := election.NewTallyingCenter(auth.PrivateKeyPair(), auditLog, elgamal.TallyAlgorithm(cfg.Election.TallyAlgorithm))
	if err != nil {
		return fmt.Errorf("creating tallying center: %w", err)
	}

	results, err := tc.TallyVotes(vc.ValidCiphertexts())
	if err != nil {
		return fmt.Errorf("tallying votes: %w", err)
	}

	fmt.Println()
	fmt.Println(election.PublishResults(results))

	if err := auditLog.VerifyIntegrity(); err != nil {
		return fmt.Errorf("audit integrity check: %w", err)
	}
	fmt.Printf("\naudit chain: %d events, integrity OK\n", len(auditLog.Events()))

	if cfg.Election.PersistAudit {
		store, err := audit.NewPebbleStore(cfg.Datadir)
		if err != nil {
			return fmt.Errorf("opening audit store: %w", err)
		}
		defer store.Close()
		if err := store.Persist(auditLog); err != nil {
			return fmt.Errorf("persisting audit log: %w", err)
		}
		fmt.Printf("audit log persisted to %s\n", cfg.Datadir)
	}

	return nil
}

func yesNo(choice bool) string {
	if choice {
		return "YES"
	}
	return "NO"
}
