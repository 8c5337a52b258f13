// Package config loads the voting core's runtime configuration from CLI
// flags, environment variables and defaults, in that precedence order.
package config

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultGroupBits = 512
	defaultLogLevel  = "info"
	defaultLogOutput = "stderr"
	defaultDatadir   = ".evote"
	defaultCacheSize = 32
	defaultTallyAlgo = "linear"
	envPrefix        = "EVOTE"
)

// Config holds the process-wide configuration for both evote binaries.
type Config struct {
	Election ElectionConfig
	Log      LogConfig
	Datadir  string `mapstructure:"datadir"`
}

// ElectionConfig controls the cryptographic parameters of a run.
type ElectionConfig struct {
	GroupBits      int    `mapstructure:"groupBits"`      // bit length of the ElGamal safe prime
	CacheSize      int    `mapstructure:"cacheSize"`      // mixnet discrete-log memoization cache entries; not read by either binary, election.NewTallyingCenter always uses 32
	PersistAudit   bool   `mapstructure:"persistAudit"`   // persist the audit log to a pebble store under Datadir; read by evote-demo only
	TallyAlgorithm string `mapstructure:"tallyAlgorithm"` // "linear" or "bsgs"; selects the tally's discrete-log search
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Output string `mapstructure:"output"`
}

// Load registers this package's flags onto flagSet, parses args against
// them, and merges the result with the environment into a Config, applying
// defaults for anything unset. Pass nil for flagSet to use
// pflag.CommandLine; pass nil for args to leave flagSet unparsed (useful in
// tests, where the caller wants only defaults and environment overrides).
// flagSet must not already have Load's flags registered — call it once per
// process.
func Load(flagSet *flag.FlagSet, args []string) (*Config, error) {
	if flagSet == nil {
		flagSet = flag.CommandLine
	}
	v := viper.New()

	v.SetDefault("election.groupBits", defaultGroupBits)
	v.SetDefault("election.cacheSize", defaultCacheSize)
	v.SetDefault("election.persistAudit", false)
	v.SetDefault("election.tallyAlgorithm", defaultTallyAlgo)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.output", defaultLogOutput)
	v.SetDefault("datadir", defaultDatadir)

	flagSet.Int("election.groupBits", defaultGroupBits, "bit length of the ElGamal safe prime")
	flagSet.Int("election.cacheSize", defaultCacheSize, "mixnet discrete-log memoization cache size")
	flagSet.Bool("election.persistAudit", false, "persist the audit log to a pebble store under datadir")
	flagSet.String("election.tallyAlgorithm", defaultTallyAlgo, `tally discrete-log search: "linear" or "bsgs"`)
	flagSet.StringP("log.level", "l", defaultLogLevel, "log level (debug, info, warn, error)")
	flagSet.StringP("log.output", "o", defaultLogOutput, "log output (stdout, stderr or filepath)")
	flagSet.StringP("datadir", "d", defaultDatadir, "data directory for the persistent audit store")

	if args != nil {
		if err := flagSet.Parse(args); err != nil {
			return nil, fmt.Errorf("config: parsing flags: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flagSet); err != nil {
		return nil, fmt.Errorf("config: binding flags: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return cfg, nil
}
