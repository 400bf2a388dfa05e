package cli

import (
	"context"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"

	"github.com/traceloom/traceloom/pkg/config"
	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/sink"
	"github.com/traceloom/traceloom/pkg/spool"
)

// defaultConfigFile is looked up in the working directory and the XDG
// config directory when --config is not given.
const defaultConfigFile = "traceloom.toml"

// loadConfig loads the TOML config from path, or from the default
// locations when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	for _, candidate := range configCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return config.Load(candidate)
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig,
		"no config file found; pass --config or create %s", defaultConfigFile)
}

// configCandidates returns the default config search path: the working
// directory first, then the XDG config directory.
func configCandidates() []string {
	candidates := []string{defaultConfigFile}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		candidates = append(candidates, filepath.Join(configHome, appName, defaultConfigFile))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", appName, defaultConfigFile))
	}
	return candidates
}

// buildSink assembles the configured sink backends into a single fanout
// sink. A debug-level log sink is always included so --verbose shows the
// emitted events. The caller must Close the returned sink.
func buildSink(ctx context.Context, cfg *config.Config, logger *charmlog.Logger) (sink.Sink, error) {
	sinks := []sink.Sink{sink.NewLogSink(logger)}

	if cfg.Sinks.Redis.Enabled {
		rs, err := sink.NewRedisSink(ctx, sink.RedisConfig{
			Addr:     cfg.Sinks.Redis.Addr,
			Password: cfg.Sinks.Redis.Password,
			DB:       cfg.Sinks.Redis.DB,
			Stream:   cfg.Sinks.Redis.Stream,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, rs)
	}

	if cfg.Sinks.Mongo.Enabled {
		ms, err := sink.NewMongoStore(ctx, sink.MongoConfig{
			URI:      cfg.Sinks.Mongo.URI,
			Database: cfg.Sinks.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, ms)
	}

	if cfg.Sinks.Spool.Enabled {
		sp, err := openSpool(cfg)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sp)
	}

	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return sink.Fanout(sinks...), nil
}

// openStore connects to the configured MongoDB event store.
func openStore(ctx context.Context, cfg *config.Config) (*sink.MongoStore, error) {
	if !cfg.Sinks.Mongo.Enabled {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"the mongo sink must be enabled in [sinks.mongo] for this command")
	}
	return sink.NewMongoStore(ctx, sink.MongoConfig{
		URI:      cfg.Sinks.Mongo.URI,
		Database: cfg.Sinks.Mongo.Database,
	})
}

// openRedis connects to the configured Redis stream sink.
func openRedis(ctx context.Context, cfg *config.Config) (*sink.RedisSink, error) {
	if !cfg.Sinks.Redis.Enabled {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"the redis sink must be enabled in [sinks.redis] for this command")
	}
	return sink.NewRedisSink(ctx, sink.RedisConfig{
		Addr:     cfg.Sinks.Redis.Addr,
		Password: cfg.Sinks.Redis.Password,
		DB:       cfg.Sinks.Redis.DB,
		Stream:   cfg.Sinks.Redis.Stream,
	})
}

// openSpool opens the configured spool directory.
func openSpool(cfg *config.Config) (*spool.Spool, error) {
	ttl, err := cfg.Sinks.Spool.SpoolTTL()
	if err != nil {
		return nil, err
	}
	return spool.New(cfg.Sinks.Spool.Dir, ttl)
}
