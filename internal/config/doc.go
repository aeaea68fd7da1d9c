// Package config handles loading and validation of itg configuration.
//
// Configuration is read from ~/.config/itg/config.toml (ITG_CONFIG overrides
// the location) with environment variable overrides, and can be narrowed per
// repository by a .itg.toml at the repository root.
//
// # Configuration Sources (highest priority first)
//
//   - ITG_API_URL, ITG_CACHE_TTL env vars
//   - .itg.toml in the repository root (base_branch, labels)
//   - Config file settings
//   - Default values
//
// # Key Settings
//
//   - warning_disabled: create issues without the "issue" prefix
//   - api_url: GitHub Enterprise API base URL
//   - base_branch: branch new issue branches start from (default: "master")
//   - cache_ttl: lifetime of the per-repository response cache (default: "72h")
//   - [labels] feature, bug: labels applied to new issues
//
// # Token
//
// [Config.ResolveToken] looks at ITG_TOKEN, GITHUB_TOKEN, the token setting
// and finally "gh auth token".
package config
