package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repository config file at the repository root.
const LocalConfigFileName = ".itg.toml"

// LocalConfig holds per-repo overrides from .itg.toml.
// Empty strings indicate "not set" (inherit from global).
type LocalConfig struct {
	BaseBranch string       `toml:"base_branch"`
	Labels     LabelsConfig `toml:"labels"`
}

// LoadLocal reads a per-repo .itg.toml from the given repo root.
// Returns nil (no error) if the file doesn't exist.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	path := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var local LocalConfig
	md, err := toml.Decode(string(data), &local)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unsupported key %q in %s", undecoded[0].String(), path)
	}
	return &local, nil
}
