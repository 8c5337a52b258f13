package config

import (
	"testing"

	qt "github.com/frankban/quicktest"

	flag "github.com/spf13/pflag"
)

func TestLoadAppliesDefaults(t *testing.T) {
	c := qt.New(t)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, nil)
	c.Assert(err, qt.IsNil)

	c.Assert(cfg.Election.GroupBits, qt.Equals, defaultGroupBits)
	c.Assert(cfg.Election.CacheSize, qt.Equals, defaultCacheSize)
	c.Assert(cfg.Election.PersistAudit, qt.IsFalse)
	c.Assert(cfg.Election.TallyAlgorithm, qt.Equals, defaultTallyAlgo)
	c.Assert(cfg.Log.Level, qt.Equals, defaultLogLevel)
	c.Assert(cfg.Log.Output, qt.Equals, defaultLogOutput)
	c.Assert(cfg.Datadir, qt.Equals, defaultDatadir)
}

func TestLoadHonorsEnvironmentOverride(t *testing.T) {
	c := qt.New(t)

	t.Setenv("EVOTE_ELECTION_GROUPBITS", "256")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Election.GroupBits, qt.Equals, 256)
}

func TestLoadHonorsTallyAlgorithmFlag(t *testing.T) {
	c := qt.New(t)

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, []string{"--election.tallyAlgorithm=bsgs"})
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Election.TallyAlgorithm, qt.Equals, "bsgs")
}
