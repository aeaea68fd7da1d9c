package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"

	"github.com/raphi011/itg/internal/branch"
	"github.com/raphi011/itg/internal/git"
	"github.com/raphi011/itg/internal/github"
	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
	"github.com/raphi011/itg/internal/ui/prompt"
	"github.com/raphi011/itg/internal/ui/styles"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New(errors.CodeInvalidInput, "aborted")

func runCreateIssue(ctx context.Context, opts issueOptions) error {
	l := log.FromContext(ctx)
	dir := workDirFrom(ctx)

	title, err := issueTitle(ctx, opts.title)
	if err != nil {
		return err
	}

	api, err := apiFrom(ctx)
	if err != nil {
		return err
	}

	label, err := resolveLabel(ctx, api, opts)
	if err != nil {
		return err
	}

	from, err := resolveFrom(ctx, api, opts.from)
	if err != nil {
		return err
	}
	if from == "" {
		if from, err = git.CurrentBranch(dir); err != nil {
			return fmt.Errorf("cannot determine base branch (use --from): %w", err)
		}
	}

	l.Printf("Creating issue %q, labeled %q\n", title, label)

	var assignee string
	if !opts.detached {
		viewer, err := api.Viewer(ctx)
		if err != nil {
			return err
		}
		l.Printf("Assigning issue to %s\n", viewer.Login)
		assignee = viewer.ID
	}

	issue, err := api.CreateIssue(ctx, title, []string{label}, assignee)
	if err != nil {
		return err
	}
	l.Println(styles.Done(fmt.Sprintf("Created issue #%d", issue.Number)))

	name := branch.Name(title, issue.Number)
	l.Printf("Creating branch %q based on %q\n", name, from)
	if err := git.Fetch(ctx, dir, from); err != nil {
		return err
	}
	if err := git.CreateRemoteBranch(ctx, dir, from, name); err != nil {
		return err
	}

	if !opts.detached {
		if err := switchBranch(ctx, dir, name); err != nil {
			return err
		}
	}

	repo, err := api.Repo(ctx)
	if err != nil {
		return err
	}
	if _, err := api.UpdateIssue(ctx, issue.ID, branch.Description(repo.URL, name), ""); err != nil {
		return fmt.Errorf("failed to link branch to issue #%d: %w", issue.Number, err)
	}

	if opts.copy {
		copyToClipboard(ctx, name)
	}
	if issue.URL != "" {
		output.FromContext(ctx).Println(issue.URL)
	}
	return nil
}

// issueTitle returns title, asking for one on a terminal when it is empty.
func issueTitle(ctx context.Context, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title != "" {
		return title, nil
	}
	if !canPrompt(ctx) {
		return "", errors.New(errors.CodeInvalidInput, "an issue title is required")
	}

	res, err := prompt.TextInput("Issue title", "Fix login page", true)
	if err != nil {
		return "", err
	}
	if res.Cancelled {
		return "", ErrAborted
	}
	if title = strings.TrimSpace(res.Value); title == "" {
		return "", errors.New(errors.CodeInvalidInput, "an issue title is required")
	}
	return title, nil
}

// resolveLabel picks the issue label from the flags. A custom label must
// exist in the repository.
func resolveLabel(ctx context.Context, api *github.API, opts issueOptions) (string, error) {
	cfg := configFrom(ctx)

	switch {
	case opts.custom == "" && opts.bug:
		return cfg.Labels.Bug, nil
	case opts.custom == "":
		return cfg.Labels.Feature, nil
	case opts.custom == cfg.Labels.Bug || opts.custom == cfg.Labels.Feature:
		log.FromContext(ctx).Println(styles.Warn(fmt.Sprintf(
			"--custom %s needs a label lookup; use --bug, and %q is the default", opts.custom, cfg.Labels.Feature)))
	}

	labels, err := api.Labels(ctx)
	if err != nil {
		return "", err
	}
	names := github.LabelNames(labels)
	if slices.Contains(names, opts.custom) {
		return opts.custom, nil
	}

	if canPrompt(ctx) {
		res, err := prompt.Select(fmt.Sprintf("Label %q does not exist. Pick one:", opts.custom), names)
		if err != nil {
			return "", err
		}
		if res.Cancelled {
			return "", ErrAborted
		}
		return res.Value, nil
	}

	msg := fmt.Sprintf("label %q does not exist", opts.custom)
	if suggestions := prompt.Suggest(opts.custom, names, 3); len(suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean %s?", quoteList(suggestions))
	} else {
		msg += fmt.Sprintf(", pick one of: %s", strings.Join(names, ", "))
	}
	return "", errors.New(errors.CodeInvalidInput, msg)
}

// resolveFrom maps --from to a branch: the base branch by name, or the
// branch of the given issue. Empty means the current branch.
func resolveFrom(ctx context.Context, api *github.API, from string) (string, error) {
	cfg := configFrom(ctx)

	switch {
	case from == "":
		return "", nil
	case from == cfg.BaseBranch:
		return from, nil
	case branch.ValidateNumber(from):
		name, _, err := issueBranch(ctx, api, from)
		return name, err
	default:
		return "", errors.Newf(errors.CodeInvalidInput, "--from must be an issue number or %q, got %q", cfg.BaseBranch, from)
	}
}

// issueBranch looks up an issue by number and returns its branch name.
func issueBranch(ctx context.Context, api *github.API, number string) (string, github.Issue, error) {
	if !branch.ValidateNumber(number) {
		return "", github.Issue{}, errors.Newf(errors.CodeInvalidInput, "%q is not an issue number", number)
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return "", github.Issue{}, errors.Wrapf(err, errors.CodeInvalidInput, "invalid issue number %q", number)
	}

	issue, err := api.Issue(ctx, n, false)
	if err != nil {
		return "", github.Issue{}, fmt.Errorf("failed to get issue #%d: %w", n, err)
	}
	return branch.Name(issue.Title, issue.Number), issue, nil
}

// currentIssue returns the issue number and name of the checked out branch.
func currentIssue(ctx context.Context) (number, name string, err error) {
	name, err = git.CurrentBranch(workDirFrom(ctx))
	if err != nil {
		return "", "", err
	}
	number, err = branch.IssueNumber(name)
	if err != nil {
		return "", "", err
	}
	return number, name, nil
}

// switchBranch checks out the remote branch name, stashing uncommitted
// changes around the checkout.
func switchBranch(ctx context.Context, dir, name string) error {
	l := log.FromContext(ctx)
	l.Printf("Checking out %s\n", name)

	if err := git.Fetch(ctx, dir, name); err != nil {
		return err
	}

	stashed, err := git.Stash(ctx, dir)
	if err != nil {
		return err
	}
	if stashed > 0 {
		l.Printf("Stashed %d uncommitted change(s)\n", stashed)
	}

	checkoutErr := git.CheckoutTrack(ctx, dir, name)

	if stashed > 0 {
		if err := git.StashPop(ctx, dir); err != nil {
			return fmt.Errorf("failed to restore stashed changes (run 'git stash pop'): %w", err)
		}
	}
	return checkoutErr
}

func runOpenIssue(ctx context.Context, number string) error {
	l := log.FromContext(ctx)
	dir := workDirFrom(ctx)

	api, err := apiFrom(ctx)
	if err != nil {
		return err
	}

	name, issue, err := issueBranch(ctx, api, number)
	if err != nil {
		return err
	}

	l.Printf("Checking out %q associated with issue #%d\n", name, issue.Number)

	if !git.RemoteBranchExists(ctx, dir, name) {
		return errors.Newf(errors.CodeNotFound, "remote branch %q does not exist", name)
	}

	if git.LocalBranchExists(ctx, dir, name) {
		if err := git.Checkout(ctx, dir, name); err != nil {
			return fmt.Errorf("%w (stash your changes and try again)", err)
		}
		if err := git.Pull(ctx, dir, name); err != nil {
			return err
		}
	} else {
		if err := git.Fetch(ctx, dir, name); err != nil {
			return err
		}
		if err := git.CheckoutTrack(ctx, dir, name); err != nil {
			return fmt.Errorf("%w (stash your changes and try again)", err)
		}
	}

	viewer, err := api.Viewer(ctx)
	if err != nil {
		return err
	}
	if _, err := api.UpdateIssue(ctx, issue.ID, "", viewer.ID); err != nil {
		return err
	}
	l.Println(styles.Done(fmt.Sprintf("Assigned issue #%d to %s", issue.Number, viewer.Login)))
	return nil
}

func runCloseIssue(ctx context.Context, number, reason string) error {
	if number == "" {
		n, _, err := currentIssue(ctx)
		if err != nil {
			return err
		}
		number = n
	}

	api, err := apiFrom(ctx)
	if err != nil {
		return err
	}

	_, issue, err := issueBranch(ctx, api, number)
	if err != nil {
		return err
	}
	if _, err := api.CloseIssue(ctx, issue.ID, reason); err != nil {
		return err
	}

	log.FromContext(ctx).Println(styles.Done(fmt.Sprintf("Closed issue #%d", issue.Number)))
	return nil
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = strconv.Quote(s)
	}
	return strings.Join(quoted, ", ")
}
