package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"

	"github.com/raphi011/itg/internal/git"
	"github.com/raphi011/itg/internal/github"
	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
	"github.com/raphi011/itg/internal/ui/prompt"
	"github.com/raphi011/itg/internal/ui/styles"
)

func runCreatePullRequest(ctx context.Context, opts prOptions) error {
	l := log.FromContext(ctx)
	cfg := configFrom(ctx)
	dir := workDirFrom(ctx)

	number, head, err := currentIssue(ctx)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return errors.Wrapf(err, errors.CodeInvalidInput, "invalid issue number %q", number)
	}

	api, err := apiFrom(ctx)
	if err != nil {
		return err
	}

	issue, err := api.Issue(ctx, n, true)
	if err != nil {
		return fmt.Errorf("failed to get issue #%d: %w", n, err)
	}
	labels := github.LabelNames(issue.Labels)
	l.Printf("Creating pull request for issue #%d %q, labeled %q\n", issue.Number, issue.Title, strings.Join(labels, ","))

	base := cfg.BaseBranch
	if opts.to != "" {
		if base, _, err = issueBranch(ctx, api, opts.to); err != nil {
			return err
		}
		l.Printf("Setting base branch to %q\n", base)
	}

	if opts.push {
		l.Println("Pushing changes")
		if err := git.PushCurrent(ctx, dir); err != nil {
			return err
		}
	}
	if opts.draft {
		l.Println("Marking pull request as draft")
	}

	pr, err := api.CreatePullRequest(ctx, issue, github.PullRequestOptions{
		Base:  base,
		Head:  head,
		Draft: opts.draft,
	})
	if err != nil {
		return fmt.Errorf("failed to create pull request for issue #%d %q: %w", issue.Number, issue.Title, err)
	}

	viewer, err := api.Viewer(ctx)
	if err != nil {
		return err
	}
	if _, err := api.UpdatePullRequest(ctx, pr.ID, labels, viewer.ID); err != nil {
		return fmt.Errorf("failed to label pull request #%d: %w", pr.Number, err)
	}

	l.Println(styles.Done(fmt.Sprintf("Created pull request #%d", pr.Number)))
	output.FromContext(ctx).Println(pr.URL)

	if opts.master {
		if git.IsDirty(ctx, dir) {
			l.Println(styles.Warn(fmt.Sprintf("Uncommitted changes, staying on %q", head)))
			return nil
		}
		l.Printf("Checking out %q\n", cfg.BaseBranch)
		if err := git.Checkout(ctx, dir, cfg.BaseBranch); err != nil {
			return err
		}
		if err := git.Pull(ctx, dir, cfg.BaseBranch); err != nil {
			return err
		}
	}
	return nil
}

// prBranch returns the branch of the given issue, or the current branch
// when number is empty.
func prBranch(ctx context.Context, api *github.API, number string) (string, error) {
	if number == "" {
		_, name, err := currentIssue(ctx)
		return name, err
	}
	name, _, err := issueBranch(ctx, api, number)
	return name, err
}

// openPullRequest returns the open pull request for branch.
func openPullRequest(ctx context.Context, api *github.API, branch string) (github.PullRequest, error) {
	pr, err := api.PullRequest(ctx, branch)
	if err != nil {
		return github.PullRequest{}, err
	}
	if pr == nil {
		return github.PullRequest{}, errors.Newf(errors.CodeNotFound, "no pull request associated with branch %q", branch)
	}
	return *pr, nil
}

func runOpenPullRequest(ctx context.Context, number string, copyURL bool) error {
	api, err := apiFrom(ctx)
	if err != nil {
		return err
	}

	name, err := prBranch(ctx, api, number)
	if err != nil {
		return err
	}
	pr, err := openPullRequest(ctx, api, name)
	if err != nil {
		return err
	}

	log.FromContext(ctx).Printf("Opening pull request #%d for %q\n", pr.Number, name)
	if copyURL {
		copyToClipboard(ctx, pr.URL)
	}
	return openURL(ctx, pr.URL)
}

func runReadyPullRequest(ctx context.Context, number string, yes bool) error {
	l := log.FromContext(ctx)

	api, err := apiFrom(ctx)
	if err != nil {
		return err
	}

	name, err := prBranch(ctx, api, number)
	if err != nil {
		return err
	}
	pr, err := openPullRequest(ctx, api, name)
	if err != nil {
		return err
	}
	if !pr.IsDraft {
		return errors.Newf(errors.CodeConflict, "pull request #%d is already ready for review", pr.Number)
	}

	if !yes && canPrompt(ctx) {
		res, err := prompt.Confirm(fmt.Sprintf("Mark pull request #%d ready for review?", pr.Number))
		if err != nil {
			return err
		}
		if res.Cancelled || !res.Confirmed {
			l.Println("Aborted")
			return nil
		}
	}

	if _, err := api.MarkReady(ctx, pr, name); err != nil {
		return err
	}
	l.Println(styles.Done(fmt.Sprintf("Pull request #%d is ready for review", pr.Number)))
	return nil
}
