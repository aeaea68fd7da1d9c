package config

import (
	"fmt"
	"net/url"
)

func validate(cfg *Config) error {
	if cfg.CacheTTL <= 0 {
		return fmt.Errorf("invalid cache_ttl %q: must be a positive duration", cfg.CacheTTL)
	}
	if err := validateAPIURL(cfg.APIURL); err != nil {
		return err
	}
	if cfg.Labels.Feature == "" || cfg.Labels.Bug == "" {
		return fmt.Errorf("labels.feature and labels.bug must not be empty")
	}
	return nil
}

// validateAPIURL checks that a non-empty api_url is an absolute http(s) URL.
func validateAPIURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid api_url %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url %q: must be an absolute http(s) URL", raw)
	}
	return nil
}
