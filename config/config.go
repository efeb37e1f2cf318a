package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Setting keys.
const (
	ConfigDebug               = "debug"
	ConfigThreads             = "threads"
	ConfigCacheEnabled        = "cache-enabled"
	ConfigCacheMemoryFraction = "cache-memory-fraction"
	ConfigDrawSort            = "draw-sort"
	ConfigNatsURL             = "nats-url"
	ConfigNatsToken           = "nats-token"
	ConfigNatsChannel         = "nats-channel"
	ConfigHistoryFile         = "history-file"
	ConfigCPUProfile          = "cpu-profile"
	ConfigMemProfile          = "mem-profile"
	ConfigFile                = "config-file"
)

// secrets are never printed by SanitizedSettings.
var secrets = []string{ConfigNatsToken}

// Config holds every setting. Values come, in decreasing priority, from
// flags, MAHJONG_-prefixed environment variables (MAHJONG_DRAW_SORT), an
// optional YAML config file and the defaults below.
type Config struct {
	*viper.Viper
	args []string
}

func defaults(v *viper.Viper) {
	v.SetDefault(ConfigDebug, false)
	v.SetDefault(ConfigThreads, 1)
	v.SetDefault(ConfigCacheEnabled, true)
	v.SetDefault(ConfigCacheMemoryFraction, 0.01)
	v.SetDefault(ConfigDrawSort, "kind")
	v.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	v.SetDefault(ConfigNatsToken, "")
	v.SetDefault(ConfigNatsChannel, "mahjong.analyze")
	v.SetDefault(ConfigHistoryFile, "/tmp/mahjong-readline.tmp")
	v.SetDefault(ConfigCPUProfile, "")
	v.SetDefault(ConfigMemProfile, "")
	v.SetDefault(ConfigFile, "")
}

func newViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.SetEnvPrefix("mahjong")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultConfig returns a config holding defaults and environment values
// only.
func DefaultConfig() *Config {
	return &Config{Viper: newViper()}
}

// Load parses command-line flags and, if config-file is set, merges that
// file in below the flags.
func (c *Config) Load(args []string) error {
	c.Viper = newViper()

	fs := pflag.NewFlagSet("mahjong", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigThreads, 1, "number of goroutines for draw simulation")
	fs.Bool(ConfigCacheEnabled, true, "memoize decompositions")
	fs.Float64(ConfigCacheMemoryFraction, 0.01, "fraction of system memory the decomposition cache may use")
	fs.String(ConfigDrawSort, "kind", "order of improving draws: kind or delta")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "the NATS server URL")
	fs.String(ConfigNatsToken, "", "the NATS auth token")
	fs.String(ConfigNatsChannel, "mahjong.analyze", "the NATS subject the bot answers on")
	fs.String(ConfigHistoryFile, "/tmp/mahjong-readline.tmp", "shell history file")
	fs.String(ConfigCPUProfile, "", "file to write a CPU profile to")
	fs.String(ConfigMemProfile, "", "file to write a memory profile to")
	fs.String(ConfigFile, "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	c.args = fs.Args()

	if f := c.GetString(ConfigFile); f != "" {
		c.SetConfigType("yaml")
		c.SetConfigFile(f)
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments left after flag parsing.
func (c *Config) Args() []string {
	return c.args
}

// SanitizedSettings returns all settings with secrets masked out.
func (c *Config) SanitizedSettings() map[string]any {
	settings := c.AllSettings()
	for _, k := range secrets {
		if v, ok := settings[k]; ok && v != "" {
			settings[k] = "********"
		}
	}
	return settings
}
