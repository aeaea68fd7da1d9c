package config

import (
	"context"
	"os"
	"strings"

	"github.com/jmgilman/go/errors"

	"github.com/raphi011/itg/internal/cmd"
)

// ErrNoToken is returned when no GitHub token can be found.
var ErrNoToken = errors.New(errors.CodeUnauthorized,
	"no GitHub token: set ITG_TOKEN or GITHUB_TOKEN, or run \"gh auth login\"")

// ResolveToken resolves the GitHub token: ITG_TOKEN, GITHUB_TOKEN, the config file,
// then the gh CLI's stored credentials.
func (c *Config) ResolveToken(ctx context.Context) (string, error) {
	for _, env := range []string{"ITG_TOKEN", "GITHUB_TOKEN"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}
	if c.Token != "" {
		return c.Token, nil
	}

	out, err := cmd.OutputContext(ctx, "", "gh", "auth", "token")
	if err != nil {
		return "", ErrNoToken
	}
	if tok := strings.TrimSpace(string(out)); tok != "" {
		return tok, nil
	}
	return "", ErrNoToken
}
