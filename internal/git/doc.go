// Package git provides the git operations itg needs.
//
// Read-only repository discovery (root, git directory, origin URL, current
// branch) goes through go-git so it works without spawning processes.
// Everything that talks to a remote or changes the checkout shells out to the
// git CLI, which keeps the user's configuration (SSH keys, credential
// helpers, hooks) in effect.
//
// # Discovery
//
//   - [RepoRoot], [FindGitDir]: locate the enclosing repository
//   - [OriginURL], [ParseRemote]: owner and name of the GitHub repository
//   - [CurrentBranch]: the checked out branch
//
// # Branches
//
//   - [CreateRemoteBranch]: create an issue branch on origin
//   - [Checkout], [CheckoutTrack], [Pull]: switch to an issue branch
//   - [LocalBranchExists], [RemoteBranchExists]: existence checks
//   - [Stash], [StashPop]: carry uncommitted changes across a checkout
package git
