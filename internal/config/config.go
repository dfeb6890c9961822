// Package config loads server configuration from the environment. Command
// line flags registered with RegisterFlags override the environment.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	DBPath          string        `env:"SPAARPOT_DB" envDefault:"spaarpot.sqlite3"`
	Addr            string        `env:"SPAARPOT_ADDR" envDefault:":8080"`
	AdminEmail      string        `env:"SPAARPOT_ADMIN_EMAIL" envDefault:"admin@spaarpot.local"`
	LogPath         string        `env:"SPAARPOT_LOG"`
	CORSOrigins     []string      `env:"SPAARPOT_CORS_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `env:"SPAARPOT_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// RegisterFlags binds the short and long flag names to cfg. Values already
// in cfg become the flag defaults.
func (cfg *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.AdminEmail, "email", cfg.AdminEmail, "")
	fs.StringVar(&cfg.AdminEmail, "e", cfg.AdminEmail, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	origins := func(s string) error {
		cfg.CORSOrigins = splitList(s)
		return nil
	}
	fs.Func("cors", "", origins)
	fs.Func("c", "", origins)

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
