package git

import (
	"context"
	"fmt"
)

// CreateRemoteBranch creates branch on origin from origin/<from> without
// touching the local checkout.
func CreateRemoteBranch(ctx context.Context, dir, from, branch string) error {
	refspec := fmt.Sprintf("origin/%s:refs/heads/%s", from, branch)
	if err := runGit(ctx, dir, "push", "origin", refspec); err != nil {
		return fmt.Errorf("failed to create origin/%s from origin/%s: %w", branch, from, err)
	}
	return nil
}

// PushCurrent pushes HEAD to origin and sets it as upstream.
func PushCurrent(ctx context.Context, dir string) error {
	if err := runGit(ctx, dir, "push", "-u", "origin", "HEAD"); err != nil {
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}

// Fetch updates remote-tracking refs for branch.
func Fetch(ctx context.Context, dir, branch string) error {
	if err := runGit(ctx, dir, "fetch", "origin", branch, "--quiet"); err != nil {
		return fmt.Errorf("failed to fetch origin/%s: %w", branch, err)
	}
	return nil
}

// Checkout switches to an existing local branch.
func Checkout(ctx context.Context, dir, branch string) error {
	if err := runGit(ctx, dir, "checkout", branch); err != nil {
		return fmt.Errorf("failed to checkout %s: %w", branch, err)
	}
	return nil
}

// CheckoutTrack creates a local branch tracking origin/<branch> and switches to it.
func CheckoutTrack(ctx context.Context, dir, branch string) error {
	if err := runGit(ctx, dir, "checkout", "--track", "origin/"+branch); err != nil {
		return fmt.Errorf("failed to checkout origin/%s: %w", branch, err)
	}
	return nil
}

// Pull merges origin/<branch> into the current branch.
func Pull(ctx context.Context, dir, branch string) error {
	if err := runGit(ctx, dir, "pull", "origin", branch); err != nil {
		return fmt.Errorf("failed to pull origin/%s: %w", branch, err)
	}
	return nil
}

// LocalBranchExists checks if a local branch exists.
func LocalBranchExists(ctx context.Context, dir, branch string) bool {
	return runGit(ctx, dir, "show-ref", "--verify", "--quiet", "refs/heads/"+branch) == nil
}

// RemoteBranchExists checks if branch exists on origin by asking the remote.
func RemoteBranchExists(ctx context.Context, dir, branch string) bool {
	return runGit(ctx, dir, "ls-remote", "--exit-code", "--heads", "origin", branch) == nil
}
