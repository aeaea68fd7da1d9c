package config

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	merged := *global
	if local.BaseBranch != "" {
		merged.BaseBranch = local.BaseBranch
	}
	if local.Labels.Feature != "" {
		merged.Labels.Feature = local.Labels.Feature
	}
	if local.Labels.Bug != "" {
		merged.Labels.Bug = local.Labels.Bug
	}
	return &merged
}
