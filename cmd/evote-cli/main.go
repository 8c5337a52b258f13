// Command evote-cli is an interactive terminal front-end to the voting
// core: an admin mode to configure an election and register voters, a
// voter mode to cast a ballot, a results view, and an about screen.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/audit"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/config"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/crypto/elgamal"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/election"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/log"
	"github.com/luencaro/Sistema-de-Votaci-n-ElGamal/token"
)

// app holds the mutable election state the interactive session operates
// on. Before setup it is nil-keyed; state is created by the admin menu.
type app struct {
	cfg *config.Config
	in  *bufio.Scanner

	auditLog *audit.Log
	auth     *election.Authority
	vc       *election.VotingCenter
	tc       *election.TallyingCenter
	tokens   map[string]token.VoterToken
	results  *election.Results
}

func main() {
	flag.CommandLine.SortFlags = false

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "evote-cli: loading configuration: %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.Log.Level, cfg.Log.Output)

	a := &app{cfg: cfg, in: bufio.NewScanner(os.Stdin)}
	a.run()
}

func (a *app) run() {
	printTitle()
	for {
		printMainMenu()
		switch a.prompt("Select an option", "1", "2", "3", "4", "5") {
		case "1":
			a.adminMenu()
		case "2":
			a.voteMenu()
		case "3":
			a.resultsMenu()
		case "4":
			a.aboutMenu()
		case "5":
			fmt.Println("\nGoodbye.")
			return
		}
	}
}

func (a *app) adminMenu() {
	for {
		fmt.Println("\n" + strings.Repeat("=", 70))
		fmt.Println("ADMIN MENU")
		fmt.Println(strings.Repeat("=", 70))
		fmt.Println("  1. Create new election")
		fmt.Println("  2. Register voters")
		fmt.Println("  3. Close election and tally votes")
		fmt.Println("  4. Show election status")
		fmt.Println("  5. Back to main menu")

		switch a.prompt("Select an option", "1", "2", "3", "4", "5") {
		case "1":
			a.createElection()
		case "2":
			a.registerVoters()
		case "3":
			a.closeElectionAndTally()
		case "4":
			a.showStatus()
		case "5":
			return
		}
	}
}

func (a *app) createElection() {
	a.auditLog = audit.NewLog()
	auth, err := election.NewAuthority(a.cfg.Election.GroupBits, a.auditLog)
	if err != nil {
		fmt.Printf("error creating authority: %v\n", err)
		return
	}
	pk, err := auth.SetupElection()
	if err != nil {
		fmt.Printf("error setting up election: %v\n", err)
		return
	}
	a.auth = auth
	a.vc = election.NewVotingCenter(auth.TokenAuthority(), pk, a.auditLog)
	a.tokens = make(map[string]token.VoterToken)
	a.results = nil

	fmt.Printf("election created with a %d-bit group; public key ready\n", a.cfg.Election.GroupBits)
}

func (a *app) registerVoters() {
	if a.auth == nil {
		fmt.Println("create an election first")
		return
	}
	fmt.Println("enter voter ids, one per line; blank line to finish")

	var ids []string
	for {
		line := a.readLine("voter id")
		if line == "" {
			break
		}
		ids = append(ids, line)
	}
	if len(ids) == 0 {
		fmt.Println("no voters registered")
		return
	}

	issued, err := a.auth.RegisterVoters(ids)
	if err != nil {
		fmt.Printf("error registering voters: %v\n", err)
		return
	}
	for id, tok := range issued {
		a.tokens[id] = tok
	}

	if err := a.exportTokens(issued); err != nil {
		fmt.Printf("warning: could not export tokens: %v\n", err)
	}
	fmt.Printf("registered %d voters\n", len(ids))
}

// exportTokens writes newly issued tokens to a timestamped file, matching
// the naming convention of the system this flow is modeled on.
func (a *app) exportTokens(issued map[string]token.VoterToken) error {
	filename := fmt.Sprintf("tokens_votacion_%s.txt", time.Now().Format("20060102_150405"))
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "Date: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(f, "Issued tokens: %d\n\n", len(issued))
	for id, tok := range issued {
		fmt.Fprintf(f, "%s: %s\n", id, tok.Token)
	}

	fmt.Printf("tokens exported to %s\n", filename)
	return nil
}

func (a *app) closeElectionAndTally() {
	if a.auth == nil || a.vc == nil {
		fmt.Println("create an election first")
		return
	}
	tc, err := election.NewTallyingCenter(a.auth.PrivateKeyPair(), a.auditLog, elgamal.TallyAlgorithm(a.cfg.Election.TallyAlgorithm))
	if err != nil {
		fmt.Printf("error creating tallying center: %v\n", err)
		return
	}
	a.tc = tc

	results, err := tc.TallyVotes(a.vc.ValidCiphertexts())
	if err != nil {
		fmt.Printf("error tallying votes: %v\n", err)
		return
	}
	a.results = &results
	fmt.Println(election.PublishResults(results))
}

func (a *app) showStatus() {
	if a.auth == nil || a.vc == nil {
		fmt.Println("no election configured")
		return
	}
	stats := a.vc.Stats()
	fmt.Printf("phase: %s\n", a.auth.Phase())
	fmt.Printf("registered voters: %d\n", stats.RegisteredVoters)
	fmt.Printf("valid votes: %d, rejected: %d\n", stats.ValidVotes, stats.RejectedVotes)
	fmt.Printf("participation: %.1f%%\n", stats.ParticipationRate)
}

func (a *app) voteMenu() {
	if a.auth == nil || a.vc == nil {
		fmt.Println("no election configured yet; ask the administrator to set one up")
		return
	}

	voterID := a.readLine("voter id")
	tok, ok := a.tokens[voterID]
	if !ok {
		fmt.Println("no token on file for this voter id")
		return
	}

	answer := a.prompt("Vote YES or NO", "yes", "no", "y", "n")
	choice := answer == "yes" || answer == "y"

	voter := election.NewVoter(voterID, tok)
	pk := a.auth.PrivateKeyPair().Public()
	ev, err := voter.CastVote(choice, pk)
	if err != nil {
		fmt.Printf("error casting vote: %v\n", err)
		return
	}

	accepted, err := a.vc.ReceiveVote(ev)
	if err != nil {
		fmt.Printf("error receiving vote: %v\n", err)
		return
	}
	if accepted {
		fmt.Println("vote accepted")
	} else {
		fmt.Println("vote rejected: token already used, invalid, or voter already voted")
	}
}

func (a *app) resultsMenu() {
	if a.results == nil {
		fmt.Println("no results yet; close the election first")
		return
	}
	fmt.Println(election.PublishResults(*a.results))
}

func (a *app) aboutMenu() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("A homomorphic-tally electronic voting demonstrator.")
	fmt.Println("ElGamal over a safe-prime subgroup, disjunctive Chaum-Pedersen")
	fmt.Println("validity proofs, a re-encryption mix, and a hash-chained audit log.")
	fmt.Println(strings.Repeat("=", 70))
}

func printTitle() {
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("            SECURE VOTING SYSTEM - ElGamal CRYPTOGRAPHY")
	fmt.Println(strings.Repeat("=", 70))
}

func printMainMenu() {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("MAIN MENU")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Println("  1. Admin mode (configure and manage election)")
	fmt.Println("  2. Voter mode (cast a vote)")
	fmt.Println("  3. View election results")
	fmt.Println("  4. About this system")
	fmt.Println("  5. Exit")
}

func (a *app) prompt(message string, valid ...string) string {
	for {
		fmt.Printf("\n%s: ", message)
		answer := a.readLine("")
		for _, v := range valid {
			if strings.EqualFold(answer, v) {
				return v
			}
		}
		fmt.Printf("invalid option, choose one of: %s\n", strings.Join(valid, ", "))
	}
}

func (a *app) readLine(label string) string {
	if label != "" {
		fmt.Printf("%s: ", label)
	}
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}
