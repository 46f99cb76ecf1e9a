// Package config loads chaoskey settings from defaults, an optional TOML file
// and CHAOSKEY_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	EnvListen         = "CHAOSKEY_LISTEN"
	EnvPeer           = "CHAOSKEY_PEER"
	EnvMetricsAddr    = "CHAOSKEY_METRICS_ADDR"
	EnvSyncTicks      = "CHAOSKEY_SYNC_TICKS"
	EnvEpsilon        = "CHAOSKEY_EPSILON"
	EnvTickInterval   = "CHAOSKEY_TICK_INTERVAL"
	EnvBufferCapacity = "CHAOSKEY_BUFFER_CAPACITY"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Listen         string
	Peer           string
	LogLevel       string
	MetricsAddr    string
	SyncTicks      int
	Epsilon        float64
	TickInterval   time.Duration
	BufferCapacity int
}

type fileConfig struct {
	Listen         string  `toml:"listen"`
	Peer           string  `toml:"peer"`
	LogLevel       string  `toml:"log_level"`
	MetricsAddr    string  `toml:"metrics_addr"`
	SyncTicks      int     `toml:"sync_ticks"`
	Epsilon        float64 `toml:"epsilon"`
	TickInterval   string  `toml:"tick_interval"`
	BufferCapacity int     `toml:"buffer_capacity"`
}

func Default() Config {
	return Config{
		Listen:         "127.0.0.1:3012",
		Peer:           "127.0.0.1:3012",
		LogLevel:       "info",
		SyncTicks:      100,
		Epsilon:        1e-3,
		TickInterval:   time.Millisecond,
		BufferCapacity: 1 << 20,
	}
}

// Load returns the defaults overlaid with path (if non-empty) and the
// environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := overlayEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func overlayFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("peer") {
		cfg.Peer = strings.TrimSpace(raw.Peer)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("sync_ticks") {
		cfg.SyncTicks = raw.SyncTicks
	}
	if meta.IsDefined("epsilon") {
		cfg.Epsilon = raw.Epsilon
	}
	if meta.IsDefined("tick_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.TickInterval))
		if err != nil {
			return fmt.Errorf("parse tick_interval: %w", err)
		}
		cfg.TickInterval = d
	}
	if meta.IsDefined("buffer_capacity") {
		cfg.BufferCapacity = raw.BufferCapacity
	}
	return nil
}

func overlayEnv(cfg *Config) error {
	if v, ok := lookup(EnvListen); ok {
		cfg.Listen = v
	}
	if v, ok := lookup(EnvPeer); ok {
		cfg.Peer = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookup(EnvSyncTicks); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvSyncTicks, err)
		}
		cfg.SyncTicks = n
	}
	if v, ok := lookup(EnvEpsilon); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvEpsilon, err)
		}
		cfg.Epsilon = f
	}
	if v, ok := lookup(EnvTickInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTickInterval, err)
		}
		cfg.TickInterval = d
	}
	if v, ok := lookup(EnvBufferCapacity); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvBufferCapacity, err)
		}
		cfg.BufferCapacity = n
	}
	return nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

// Validate rejects values the session cannot run with.
func (c Config) Validate() error {
	switch {
	case c.SyncTicks <= 0:
		return fmt.Errorf("%w: sync_ticks must be positive", ErrInvalid)
	case c.Epsilon < 0:
		return fmt.Errorf("%w: epsilon must not be negative", ErrInvalid)
	case c.TickInterval < 0:
		return fmt.Errorf("%w: tick_interval must not be negative", ErrInvalid)
	case c.BufferCapacity < 16:
		return fmt.Errorf("%w: buffer_capacity must hold at least one window", ErrInvalid)
	}
	return nil
}
