package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultCacheTTL is the lifetime of the per-repository response cache.
const DefaultCacheTTL = 72 * time.Hour

// DefaultBaseBranch is the branch new issue branches are cut from.
const DefaultBaseBranch = "master"

// LabelsConfig names the labels itg applies to new issues.
type LabelsConfig struct {
	Feature string `toml:"feature"` // default label
	Bug     string `toml:"bug"`     // label for --bug
}

// Config holds the itg configuration
type Config struct {
	WarningDisabled bool          `toml:"warning_disabled"`
	APIURL          string        `toml:"api_url"` // GitHub Enterprise; empty = api.github.com
	Token           string        `toml:"token"`
	BaseBranch      string        `toml:"base_branch"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
	Labels          LabelsConfig  `toml:"labels"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		BaseBranch: DefaultBaseBranch,
		CacheTTL:   DefaultCacheTTL,
		Labels: LabelsConfig{
			Feature: "feature",
			Bug:     "bug",
		},
	}
}

// Path returns the path to the config file.
// ITG_CONFIG overrides the default ~/.config/itg/config.toml.
func Path() (string, error) {
	if p := os.Getenv("ITG_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "itg", "config.toml"), nil
}

// Load reads the config file and applies environment overrides.
// Returns Default() if the file doesn't exist (no error).
// Returns error only if the file exists but is invalid.
func Load() (Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return Default(), err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Default(), err
	}
	if err := validate(&cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// loadFile reads the config file without environment overrides and fills
// unset fields with defaults.
func loadFile() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	fillDefaults(&cfg)
	return cfg, nil
}

func fillDefaults(cfg *Config) {
	def := Default()
	if cfg.BaseBranch == "" {
		cfg.BaseBranch = def.BaseBranch
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.Labels.Feature == "" {
		cfg.Labels.Feature = def.Labels.Feature
	}
	if cfg.Labels.Bug == "" {
		cfg.Labels.Bug = def.Labels.Bug
	}
}

// applyEnvOverrides applies ITG_API_URL and ITG_CACHE_TTL.
// Empty variables leave the config unchanged.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("ITG_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("ITG_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ITG_CACHE_TTL %q: %w", v, err)
		}
		cfg.CacheTTL = ttl
	}
	return nil
}

// Update loads the config file as written (no environment overrides),
// applies fn and writes it back. Returns the path written.
func Update(fn func(*Config)) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	cfg, err := loadFile()
	if err != nil {
		return "", err
	}
	fn(&cfg)

	if err := write(path, cfg); err != nil {
		return "", err
	}
	return path, nil
}

// write encodes cfg to a temp file next to path and renames it into place.
func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

const defaultConfig = `# itg configuration

# Create issues without the "issue" prefix: itg Fix login page
# Toggle with: itg config warning enable|disable
# warning_disabled = false

# GitHub Enterprise API base URL (default: https://api.github.com/)
# api_url = "https://github.mycompany.com/api/v3/"

# Personal access token. Prefer ITG_TOKEN, GITHUB_TOKEN or "gh auth login".
# token = ""

# Branch new issue branches are created from (see "itg issue --from")
base_branch = "master"

# How long GitHub lookups (repository, viewer, labels, issues, pull requests)
# stay cached in .git/.itg.cache
cache_ttl = "72h"

[labels]
feature = "feature"   # default label for new issues
bug = "bug"           # label applied by "itg issue --bug"
`

// Init creates a default config file.
// If force is true, overwrites an existing file.
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

type configKey struct{}

// WithConfig returns a new context with the config stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the config from context.
// Returns nil if no config is stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok {
		return cfg
	}
	return nil
}
