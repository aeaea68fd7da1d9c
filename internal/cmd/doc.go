// Package cmd provides helpers for executing shell commands with proper error handling.
//
// This package wraps [os/exec.Cmd] to capture stderr and include it in error
// messages, making command failures more informative for users. Every command
// is echoed through the context logger when verbose mode is on.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, repoPath, "git", "stash", "push"); err != nil {
//	    // err contains stderr output if available
//	    return fmt.Errorf("git failed: %w", err)
//	}
//
//	// For commands that return output:
//	out, err := cmd.OutputContext(ctx, "", "gh", "auth", "token")
//
// # Design Notes
//
// itg shells out to the git CLI for anything that touches the working tree or
// the network (push, checkout, stash). This keeps the user's SSH keys,
// credential helpers and hooks in play.
package cmd
