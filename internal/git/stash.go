package git

import (
	"context"
	"fmt"
	"strings"
)

// Stash stashes all uncommitted changes, untracked files included (-u).
// Returns the number of changed paths that were stashed; a clean worktree
// is left alone and reports 0.
func Stash(ctx context.Context, path string) (int, error) {
	output, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return 0, fmt.Errorf("failed to get status: %w", err)
	}

	n := 0
	for line := range strings.SplitSeq(strings.TrimRight(string(output), "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}

	if err := runGit(ctx, path, "stash", "push", "-u", "-m", "itg autostash"); err != nil {
		return 0, fmt.Errorf("failed to stash changes: %w", err)
	}
	return n, nil
}

// StashPop applies and removes the most recent stash entry.
func StashPop(ctx context.Context, path string) error {
	if err := runGit(ctx, path, "stash", "pop"); err != nil {
		return fmt.Errorf("failed to pop stash: %w", err)
	}
	return nil
}

// IsDirty returns true if the worktree has uncommitted changes or untracked files
func IsDirty(ctx context.Context, path string) bool {
	output, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false // Treat error as clean (safe default)
	}
	return strings.TrimSpace(string(output)) != ""
}
