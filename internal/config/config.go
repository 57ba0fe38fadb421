// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config reads the ECOVIBE_* environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "ECOVIBE_"

// MinSessionSecretLength is the shortest accepted session secret in bytes.
const MinSessionSecretLength = 32

const secretHint = "generate one with: openssl rand -base64 32"

// Secrets shipped in examples and docs.
var weakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

type Config struct {
	Env      string `env:"ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	SiteName string `env:"SITE_NAME" envDefault:"EcoVibe Design"`

	ServerHost    string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SERVER_PORT" envDefault:"8080"`
	SessionSecret string `env:"SESSION_SECRET,required"`

	DBPath      string `env:"DB_PATH" envDefault:"./data/ecovibe.db"`
	UploadsDir  string `env:"UPLOADS_DIR" envDefault:"./uploads"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"20"`

	// Read cache. Redis is used when RedisURL is set, memory otherwise.
	RedisURL     string        `env:"REDIS_URL"`
	CachePrefix  string        `env:"CACHE_PREFIX" envDefault:"ecovibe:"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CacheMaxSize int           `env:"CACHE_MAX_SIZE" envDefault:"1000"`

	// The admin account created when no user exists.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	ContactPhone     string `env:"CONTACT_PHONE" envDefault:"+13522142078"`
	ContactEmail     string `env:"CONTACT_EMAIL" envDefault:"Shabnam.Rumpf@ecovibe.com"`
	ContactInstagram string `env:"CONTACT_INSTAGRAM" envDefault:"https://www.instagram.com/ecovibe.design/"`

	// OrphanSweep is a cron spec; empty disables the sweep.
	OrphanSweep    string        `env:"ORPHAN_SWEEP" envDefault:"@hourly"`
	OrphanGrace    time.Duration `env:"ORPHAN_GRACE" envDefault:"24h"`
	EventRetention time.Duration `env:"EVENT_RETENTION" envDefault:"720h"`

	// DoSeed fills an empty database with demo projects.
	DoSeed bool `env:"DO_SEED" envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if !cfg.IsDevelopment() && cfg.AdminPassword == "" {
		slog.Warn(EnvPrefix + "ADMIN_PASSWORD is not set; the admin account will be seeded with the default password")
	}
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn(EnvPrefix+"SESSION_SECRET has low character diversity", "hint", secretHint)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch {
	case len(c.SessionSecret) < MinSessionSecretLength:
		errs = append(errs, fmt.Errorf("%sSESSION_SECRET must be at least %d bytes long, got %d bytes; %s",
			EnvPrefix, MinSessionSecretLength, len(c.SessionSecret), secretHint))
	case slices.Contains(weakSecrets, c.SessionSecret):
		errs = append(errs, fmt.Errorf("%sSESSION_SECRET is a known default value; %s", EnvPrefix, secretHint))
	}
	if c.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("%sMAX_UPLOAD_MB must be positive, got %d", EnvPrefix, c.MaxUploadMB))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("%sCACHE_TTL must be positive, got %s", EnvPrefix, c.CacheTTL))
	}
	return errors.Join(errs...)
}

func (c Config) IsDevelopment() bool { return c.Env == "development" }

// ServerAddr is the listen address, host:port.
func (c Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

func (c Config) UseRedisCache() bool { return c.RedisURL != "" }

// MaxUploadBytes bounds the body of admin forms carrying files.
func (c Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

// ParseLogLevel maps LogLevel to a slog level, info when unrecognized.
func (c Config) ParseLogLevel() slog.Level {
	var l slog.Level
	level := strings.ToLower(c.LogLevel)
	if level == "warning" {
		level = "warn"
	}
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// hasMinimumEntropy wants three of the four classes lower, upper, digit
// and other.
func hasMinimumEntropy(s string) bool {
	var lower, upper, digit, other bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	n := 0
	for _, b := range []bool{lower, upper, digit, other} {
		if b {
			n++
		}
	}
	return n >= 3
}
