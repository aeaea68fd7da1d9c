package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/jmgilman/go/errors"
)

var (
	// ErrNotRepository is returned when no git repository encloses the directory.
	ErrNotRepository = errors.New(errors.CodeNotFound, "not in a git repository")

	// ErrNoOrigin is returned when the repository has no origin remote.
	ErrNoOrigin = errors.New(errors.CodeNotFound, "repository has no origin remote")

	// ErrDetachedHead is returned when HEAD does not point to a branch.
	ErrDetachedHead = errors.New(errors.CodeInvalidInput, "HEAD is detached")
)

// openRepo opens the repository enclosing dir, walking up like git does.
func openRepo(dir string) (*gogit.Repository, error) {
	if dir == "" {
		dir = "."
	}
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to open repository")
	}
	return repo, nil
}

// RepoRoot returns the top level directory of the working tree enclosing dir.
func RepoRoot(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInvalidInput, "repository has no working tree")
	}
	return wt.Filesystem.Root(), nil
}

// FindGitDir returns the git directory shared by every worktree of the
// repository enclosing dir. It returns "" without error when dir is not
// inside a repository.
func FindGitDir(ctx context.Context, dir string) (string, error) {
	root, err := RepoRoot(dir)
	if err != nil {
		if errors.Is(err, ErrNotRepository) {
			return "", nil
		}
		return "", err
	}

	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", gitDir, err)
	}
	if info.IsDir() {
		return gitDir, nil
	}

	// linked worktree: .git is a file pointing into the main repository
	output, err := outputGit(ctx, root, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("failed to resolve git common dir: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// OriginURL returns the first URL of the origin remote.
func OriginURL(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		if errors.Is(err, gogit.ErrRemoteNotFound) {
			return "", ErrNoOrigin
		}
		return "", errors.Wrap(err, errors.CodeInternal, "failed to read origin remote")
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoOrigin
	}
	return urls[0], nil
}

// ParseRemote extracts owner and repository name from a remote URL.
// Both scp-like (git@host:owner/name.git) and URL forms are accepted.
func ParseRemote(url string) (owner, name string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(url), "/"), ".git")
	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '/' || r == ':' })
	if len(parts) < 3 {
		return "", "", errors.Newf(errors.CodeInvalidInput, "cannot parse owner and name from remote %q", url)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}

// CurrentBranch returns the short name of the checked out branch.
func CurrentBranch(dir string) (string, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", errors.Wrap(err, errors.CodeNotFound, "failed to read HEAD")
	}
	if !head.Name().IsBranch() {
		return "", ErrDetachedHead
	}
	return head.Name().Short(), nil
}
