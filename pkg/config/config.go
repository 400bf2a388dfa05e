// Package config loads Traceloom configuration from TOML files.
//
// A config file declares the integrations to register and the sink
// backends to report through:
//
//	[[integrations]]
//	name = "rest-tracing"
//	url_prefixes = ["https://api.example.com/rest/"]
//	  [integrations.options]
//	  tracing = true
//	  breadcrumbs = true
//
//	[sinks.redis]
//	enabled = true
//	addr = "localhost:6379"
//
// Unknown option flags and duplicate integration names fail at load
// time, never silently.
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/filter"
	"github.com/traceloom/traceloom/pkg/integration"
	"github.com/traceloom/traceloom/pkg/sink"
)

// Config is the root of a Traceloom TOML file.
type Config struct {
	Integrations []IntegrationConfig `toml:"integrations"`
	Sinks        SinksConfig         `toml:"sinks"`
}

// IntegrationConfig declares one integration.
type IntegrationConfig struct {
	Name        string          `toml:"name"`
	Options     map[string]bool `toml:"options"`
	URLPrefixes []string        `toml:"url_prefixes"`
}

// SinksConfig declares the sink backends.
type SinksConfig struct {
	Redis RedisSinkConfig `toml:"redis"`
	Mongo MongoSinkConfig `toml:"mongo"`
	Spool SpoolSinkConfig `toml:"spool"`
}

// RedisSinkConfig configures the Redis stream sink.
type RedisSinkConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Stream   string `toml:"stream"`
}

// MongoSinkConfig configures the MongoDB event store.
type MongoSinkConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// SpoolSinkConfig configures the file-backed offline spool.
type SpoolSinkConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"` // Go duration string, e.g. "24h"; empty means no expiry
}

// SpoolTTL parses the spool TTL. An empty TTL is 0 (no expiry).
func (c SpoolSinkConfig) SpoolTTL() (time.Duration, error) {
	if c.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid spool ttl %q", c.TTL)
	}
	return ttl, nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the declared integrations and sink settings.
// Registration-time misconfiguration fails fast here with a
// descriptive error rather than surfacing later mid-run.
func (c *Config) Validate() error {
	if len(c.Integrations) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no integrations declared")
	}

	seen := make(map[string]struct{})
	for _, in := range c.Integrations {
		if err := errors.ValidateIntegrationName(in.Name); err != nil {
			return err
		}
		if _, dup := seen[in.Name]; dup {
			return errors.New(errors.ErrCodeDuplicateIntegration,
				"integration %q declared twice", in.Name)
		}
		seen[in.Name] = struct{}{}

		if _, err := integration.ParseOptions(in.Options); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "integration %q", in.Name)
		}
		for _, prefix := range in.URLPrefixes {
			if err := errors.ValidateURL(prefix); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err,
					"integration %q url_prefixes", in.Name)
			}
		}
	}

	if c.Sinks.Redis.Enabled && c.Sinks.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis sink enabled but addr missing")
	}
	if c.Sinks.Mongo.Enabled && c.Sinks.Mongo.URI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo sink enabled but uri missing")
	}
	if _, err := c.Sinks.Spool.SpoolTTL(); err != nil {
		return err
	}

	return nil
}

// BuildRegistry registers every declared integration into a new
// registry reporting to s.
func (c *Config) BuildRegistry(s sink.Sink) (*integration.Registry, error) {
	reg := integration.NewRegistry(s)
	for _, ic := range c.Integrations {
		opts, err := integration.ParseOptions(ic.Options)
		if err != nil {
			return nil, err
		}

		var fns []integration.Option
		if len(ic.URLPrefixes) > 0 {
			fns = append(fns, integration.WithFilter(filter.URLPrefixes(ic.URLPrefixes...)))
		}

		in, err := integration.New(ic.Name, opts, fns...)
		if err != nil {
			return nil, err
		}
		if err := reg.Register(in); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
