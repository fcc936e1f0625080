// Package config reads the global ~/.campchat/config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const DefaultPageSize = 10

// Config represents the global ~/.campchat/config.toml.
type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
}

// Profile holds the settings of one origin/admin pairing. Every field can be
// overridden from the environment.
type Profile struct {
	OriginURL  string `toml:"origin_url" env:"CAMPCHAT_ORIGIN_URL"`
	AdminID    string `toml:"admin_id" env:"CAMPCHAT_ADMIN_ID"`
	CampaignID string `toml:"campaign_id" env:"CAMPCHAT_CAMPAIGN_ID"`
	Token      string `toml:"token,omitempty" env:"CAMPCHAT_TOKEN"`
	PageSize   int    `toml:"page_size,omitempty" env:"CAMPCHAT_PAGE_SIZE"`
	Timezone   string `toml:"timezone,omitempty" env:"CAMPCHAT_TIMEZONE"`
}

// Load reads config from the given path. Returns nil and error if file missing.
func Load(path string) (*Config, error) {
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrEmpty is Load, treating a missing file as an empty config.
func LoadOrEmpty(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Profile returns the named profile, or an empty one.
func (c *Config) Profile(name string) Profile {
	if c == nil {
		return Profile{}
	}
	return c.Profiles[name]
}

// ApplyEnv overrides fields from environ, or from the process environment
// when environ is nil.
func (p *Profile) ApplyEnv(environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(p, opts); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// Validate checks that the profile can reach an origin as an admin.
func (p *Profile) Validate() error {
	var errs []error
	if p.OriginURL == "" {
		errs = append(errs, errors.New("origin_url is not set"))
	}
	if p.AdminID == "" {
		errs = append(errs, errors.New("admin_id is not set"))
	}
	if p.CampaignID == "" {
		errs = append(errs, errors.New("campaign_id is not set"))
	}
	if p.PageSize < 0 {
		errs = append(errs, fmt.Errorf("page_size %d is negative", p.PageSize))
	}
	if _, err := p.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Pages returns the history page size.
func (p *Profile) Pages() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	return p.PageSize
}

// Location returns the zone day groups are computed in. Empty means local time.
func (p *Profile) Location() (*time.Location, error) {
	if p.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}
