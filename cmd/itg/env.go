package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"

	"github.com/raphi011/itg/internal/cache"
	"github.com/raphi011/itg/internal/cmd"
	"github.com/raphi011/itg/internal/config"
	"github.com/raphi011/itg/internal/git"
	"github.com/raphi011/itg/internal/github"
	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
	"github.com/raphi011/itg/internal/ui/prompt"
)

type (
	workDirKey struct{}
	storeKey   struct{}
	apiKey     struct{}
)

func withWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// workDirFrom returns the directory commands operate in.
func workDirFrom(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey{}).(string); ok {
		return dir
	}
	return "."
}

// configFrom returns the effective config, or the defaults when none is attached.
func configFrom(ctx context.Context) *config.Config {
	if cfg := config.FromContext(ctx); cfg != nil {
		return cfg
	}
	cfg := config.Default()
	return &cfg
}

// newStore creates the response cache of the repository enclosing workDir.
// Nothing is read until the first lookup.
func newStore(cfg *config.Config, workDir string) *cache.Store {
	return cache.New(func(ctx context.Context) (string, error) {
		return git.FindGitDir(ctx, workDir)
	}, cache.WithTTL(cfg.CacheTTL))
}

func withStore(ctx context.Context, s *cache.Store) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

func storeFrom(ctx context.Context) *cache.Store {
	if s, ok := ctx.Value(storeKey{}).(*cache.Store); ok {
		return s
	}
	return newStore(configFrom(ctx), workDirFrom(ctx))
}

func withAPI(ctx context.Context, api *github.API) context.Context {
	return context.WithValue(ctx, apiKey{}, api)
}

// apiFrom returns the GitHub API attached to ctx or connects one using the
// configured token and the origin remote of the working directory.
func apiFrom(ctx context.Context) (*github.API, error) {
	if api, ok := ctx.Value(apiKey{}).(*github.API); ok {
		return api, nil
	}

	cfg := configFrom(ctx)
	token, err := cfg.ResolveToken(ctx)
	if err != nil {
		return nil, err
	}

	opts := []github.Option{github.WithToken(token)}
	if cfg.APIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.APIURL))
	}
	client, err := github.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	dir := workDirFrom(ctx)
	locate := func() (string, string, error) {
		url, err := git.OriginURL(dir)
		if err != nil {
			return "", "", err
		}
		return git.ParseRemote(url)
	}
	return github.NewAPI(client, storeFrom(ctx), locate), nil
}

// copyToClipboard copies text, warning instead of failing when no
// clipboard is available (e.g. over SSH).
func copyToClipboard(ctx context.Context, text string) {
	if err := clipboard.WriteAll(text); err != nil {
		log.FromContext(ctx).Printf("Warning: failed to copy to clipboard: %v\n", err)
		return
	}
	log.FromContext(ctx).Printf("Copied %s to clipboard\n", text)
}

// stdoutIsTerminal reports whether primary output goes to a terminal.
func stdoutIsTerminal(ctx context.Context) bool {
	f, ok := output.FromContext(ctx).Writer().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// openURL opens url in the browser when stdout is a terminal and prints it
// otherwise, so `itg pr open | pbcopy` works.
func openURL(ctx context.Context, url string) error {
	if !stdoutIsTerminal(ctx) {
		output.FromContext(ctx).Println(url)
		return nil
	}

	var name string
	switch {
	case isWSL():
		name = "wslview"
	case runtime.GOOS == "darwin":
		name = "open"
	case runtime.GOOS == "windows":
		name = "explorer"
	default:
		name = "xdg-open"
	}

	if err := cmd.RunContext(ctx, "", name, url); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}

func isWSL() bool {
	_, err := os.Stat("/proc/sys/fs/binfmt_misc/WSLInterop")
	return err == nil
}

type noPromptKey struct{}

// withoutPrompts disables interactive prompts, e.g. for tests.
func withoutPrompts(ctx context.Context) context.Context {
	return context.WithValue(ctx, noPromptKey{}, true)
}

// canPrompt reports whether interactive prompts may be shown.
func canPrompt(ctx context.Context) bool {
	if off, _ := ctx.Value(noPromptKey{}).(bool); off {
		return false
	}
	return prompt.Interactive()
}
