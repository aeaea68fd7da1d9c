package github

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jmgilman/go/errors"

	"github.com/raphi011/itg/internal/cache"
	"github.com/raphi011/itg/internal/log"
)

// Cache keys for memoized lookups.
const (
	KeyRepo   = "REPO"
	KeyUser   = "USER"
	KeyLabels = "LABELS"
)

// IssueKey is the cache key of an issue looked up without labels.
func IssueKey(number int) string { return "ISSUE_" + strconv.Itoa(number) }

// PullRequestKey is the cache key of the open pull request for branch.
func PullRequestKey(branch string) string { return "PR_" + branch }

// RepoLocator returns owner and name of the GitHub repository to work on.
type RepoLocator func() (owner, name string, err error)

// API is the cache-first GitHub API used by the commands.
type API struct {
	client Querier
	cache  *cache.Store
	locate RepoLocator

	owner, name string
}

// NewAPI returns an API that reads through store before querying client.
// locate is called at most once, on the first repository-scoped request.
func NewAPI(client Querier, store *cache.Store, locate RepoLocator) *API {
	return &API{client: client, cache: store, locate: locate}
}

func (a *API) repoVars(ctx context.Context, extra map[string]any) (map[string]any, error) {
	if a.owner == "" {
		owner, name, err := a.locate()
		if err != nil {
			return nil, err
		}
		a.owner, a.name = owner, name
		log.FromContext(ctx).Debug("resolved repository", "owner", owner, "name", name)
	}

	vars := map[string]any{"owner": a.owner, "name": a.name}
	for k, v := range extra {
		vars[k] = v
	}
	return vars, nil
}

func (a *API) queryRepo(ctx context.Context, query string, extra map[string]any, out any) error {
	vars, err := a.repoVars(ctx, extra)
	if err != nil {
		return err
	}
	return a.client.Query(ctx, query, vars, out)
}

// Repo returns the repository behind origin.
func (a *API) Repo(ctx context.Context) (Repository, error) {
	return cache.Remember(ctx, a.cache, KeyRepo, func(ctx context.Context) (Repository, error) {
		var data struct {
			Repository *Repository `json:"repository"`
		}
		if err := a.queryRepo(ctx, repoQuery, nil, &data); err != nil {
			return Repository{}, err
		}
		if data.Repository == nil {
			return Repository{}, errors.Newf(errors.CodeNotFound, "repository %s/%s not found", a.owner, a.name)
		}
		return *data.Repository, nil
	})
}

// Viewer returns the authenticated user.
func (a *API) Viewer(ctx context.Context) (User, error) {
	return cache.Remember(ctx, a.cache, KeyUser, func(ctx context.Context) (User, error) {
		var data struct {
			Viewer User `json:"viewer"`
		}
		if err := a.client.Query(ctx, viewerQuery, nil, &data); err != nil {
			return User{}, err
		}
		return data.Viewer, nil
	})
}

// Issue returns issue number. Lookups without labels are cached; with
// labels the issue is always fetched and never cached.
func (a *API) Issue(ctx context.Context, number int, withLabels bool) (Issue, error) {
	if withLabels {
		return a.fetchIssue(ctx, number, true)
	}
	return cache.Remember(ctx, a.cache, IssueKey(number), func(ctx context.Context) (Issue, error) {
		return a.fetchIssue(ctx, number, false)
	})
}

func (a *API) fetchIssue(ctx context.Context, number int, withLabels bool) (Issue, error) {
	type labelNodes struct {
		Nodes []Label `json:"nodes"`
	}
	var data struct {
		Repository struct {
			Issue *struct {
				Issue
				Labels *labelNodes `json:"labels"`
			} `json:"issue"`
		} `json:"repository"`
	}

	query := issueQuery
	if withLabels {
		query = issueWithLabelsQuery
	}
	if err := a.queryRepo(ctx, query, map[string]any{"number": number}, &data); err != nil {
		return Issue{}, err
	}

	found := data.Repository.Issue
	if found == nil {
		return Issue{}, errors.Newf(errors.CodeNotFound, "issue #%d not found", number)
	}
	issue := found.Issue
	if found.Labels != nil {
		issue.Labels = found.Labels.Nodes
	}
	return issue, nil
}

// PullRequest returns the most recent open pull request whose head is
// branch, or nil when there is none. Only found pull requests are cached.
func (a *API) PullRequest(ctx context.Context, branch string) (*PullRequest, error) {
	key := PullRequestKey(branch)
	if pr, ok, err := cache.GetAs[PullRequest](ctx, a.cache, key); err != nil || ok {
		if ok {
			return &pr, nil
		}
		return nil, err
	}

	var data struct {
		Repository struct {
			PullRequests struct {
				Nodes []PullRequest `json:"nodes"`
			} `json:"pullRequests"`
		} `json:"repository"`
	}
	if err := a.queryRepo(ctx, pullRequestQuery, map[string]any{"branch": branch}, &data); err != nil {
		return nil, err
	}

	nodes := data.Repository.PullRequests.Nodes
	if len(nodes) == 0 {
		return nil, nil
	}
	pr, err := cache.Put(ctx, a.cache, key, nodes[0])
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

// Labels returns the first 50 labels of the repository.
func (a *API) Labels(ctx context.Context) ([]Label, error) {
	return cache.Remember(ctx, a.cache, KeyLabels, func(ctx context.Context) ([]Label, error) {
		var data struct {
			Repository struct {
				Labels struct {
					Nodes []Label `json:"nodes"`
				} `json:"labels"`
			} `json:"repository"`
		}
		if err := a.queryRepo(ctx, labelsQuery, nil, &data); err != nil {
			return nil, err
		}
		return data.Repository.Labels.Nodes, nil
	})
}

// Label looks name up in the cached label list first and asks GitHub
// otherwise. Returns nil when the label does not exist.
func (a *API) Label(ctx context.Context, name string) (*Label, error) {
	labels, ok, err := cache.GetAs[[]Label](ctx, a.cache, KeyLabels)
	if err != nil {
		return nil, err
	}
	if ok {
		for _, l := range labels {
			if l.Name == name {
				return &l, nil
			}
		}
	}

	var data struct {
		Repository struct {
			Label *Label `json:"label"`
		} `json:"repository"`
	}
	if err := a.queryRepo(ctx, labelQuery, map[string]any{"label": name}, &data); err != nil {
		return nil, err
	}
	return data.Repository.Label, nil
}

func (a *API) labelIDs(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		label, err := a.Label(ctx, name)
		if err != nil {
			return nil, err
		}
		if label == nil {
			return nil, errors.Newf(errors.CodeNotFound, "label %q does not exist", name)
		}
		ids = append(ids, label.ID)
	}
	return ids, nil
}

// CreateIssue creates an issue labeled with labels and, if assignee is
// non-empty, assigned to that user id.
func (a *API) CreateIssue(ctx context.Context, title string, labels []string, assignee string) (Issue, error) {
	repo, err := a.Repo(ctx)
	if err != nil {
		return Issue{}, err
	}
	ids, err := a.labelIDs(ctx, labels)
	if err != nil {
		return Issue{}, err
	}

	input := map[string]any{
		"repositoryId": repo.ID,
		"title":        title,
		"labelIds":     ids,
	}
	if assignee != "" {
		input["assigneeIds"] = []string{assignee}
	}

	var data struct {
		CreateIssue struct {
			Issue Issue `json:"issue"`
		} `json:"createIssue"`
	}
	if err := a.client.Query(ctx, createIssueMutation, map[string]any{"input": input}, &data); err != nil {
		return Issue{}, fmt.Errorf("create issue: %w", err)
	}
	return data.CreateIssue.Issue, nil
}

// UpdateIssue sets the body and assignee where non-empty and reopens the issue.
func (a *API) UpdateIssue(ctx context.Context, id, body, assignee string) (Issue, error) {
	input := map[string]any{"id": id, "state": "OPEN"}
	if body != "" {
		input["body"] = body
	}
	if assignee != "" {
		input["assigneeIds"] = []string{assignee}
	}

	var data struct {
		UpdateIssue struct {
			Issue Issue `json:"issue"`
		} `json:"updateIssue"`
	}
	if err := a.client.Query(ctx, updateIssueMutation, map[string]any{"input": input}, &data); err != nil {
		return Issue{}, fmt.Errorf("update issue: %w", err)
	}
	return data.UpdateIssue.Issue, nil
}

// CloseIssue closes the issue and leaves reason as a comment when given.
func (a *API) CloseIssue(ctx context.Context, id, reason string) (Issue, error) {
	var data struct {
		CloseIssue struct {
			Issue Issue `json:"issue"`
		} `json:"closeIssue"`
	}
	if err := a.client.Query(ctx, closeIssueMutation, map[string]any{"input": map[string]any{"issueId": id}}, &data); err != nil {
		return Issue{}, fmt.Errorf("close issue: %w", err)
	}
	if reason != "" {
		if err := a.CommentIssue(ctx, id, reason); err != nil {
			return Issue{}, err
		}
	}
	return data.CloseIssue.Issue, nil
}

// CommentIssue adds a comment to an issue or pull request.
func (a *API) CommentIssue(ctx context.Context, id, body string) error {
	input := map[string]any{"subjectId": id, "body": body}
	if err := a.client.Query(ctx, addCommentMutation, map[string]any{"input": input}, nil); err != nil {
		return fmt.Errorf("comment: %w", err)
	}
	return nil
}

// CreatePullRequest opens a pull request for issue titled after it, whose
// body closes the issue on merge.
func (a *API) CreatePullRequest(ctx context.Context, issue Issue, opts PullRequestOptions) (PullRequest, error) {
	repo, err := a.Repo(ctx)
	if err != nil {
		return PullRequest{}, err
	}

	input := map[string]any{
		"repositoryId": repo.ID,
		"baseRefName":  opts.Base,
		"headRefName":  opts.Head,
		"title":        issue.Title,
		"body":         fmt.Sprintf("Close #%d", issue.Number),
		"draft":        opts.Draft,
	}

	var data struct {
		CreatePullRequest struct {
			PullRequest PullRequest `json:"pullRequest"`
		} `json:"createPullRequest"`
	}
	if err := a.client.Query(ctx, createPullRequestMutation, map[string]any{"input": input}, &data); err != nil {
		return PullRequest{}, fmt.Errorf("create pull request: %w", err)
	}
	return data.CreatePullRequest.PullRequest, nil
}

// UpdatePullRequest sets labels (by name) and assignee on a pull request.
func (a *API) UpdatePullRequest(ctx context.Context, id string, labels []string, assignee string) (PullRequest, error) {
	ids, err := a.labelIDs(ctx, labels)
	if err != nil {
		return PullRequest{}, err
	}

	input := map[string]any{"pullRequestId": id, "labelIds": ids}
	if assignee != "" {
		input["assigneeIds"] = []string{assignee}
	}

	var data struct {
		UpdatePullRequest struct {
			PullRequest PullRequest `json:"pullRequest"`
		} `json:"updatePullRequest"`
	}
	if err := a.client.Query(ctx, updatePullRequestMutation, map[string]any{"input": input}, &data); err != nil {
		return PullRequest{}, fmt.Errorf("update pull request: %w", err)
	}
	return data.UpdatePullRequest.PullRequest, nil
}

// MarkReady marks a draft pull request ready for review and refreshes the
// cached entry for branch.
func (a *API) MarkReady(ctx context.Context, pr PullRequest, branch string) (PullRequest, error) {
	var data struct {
		MarkReady struct {
			PullRequest PullRequest `json:"pullRequest"`
		} `json:"markPullRequestReadyForReview"`
	}
	input := map[string]any{"pullRequestId": pr.ID}
	if err := a.client.Query(ctx, markReadyMutation, map[string]any{"input": input}, &data); err != nil {
		return PullRequest{}, fmt.Errorf("mark ready for review: %w", err)
	}

	ready := data.MarkReady.PullRequest
	if ready.ID == "" {
		ready = pr
	}
	ready.IsDraft = false
	return cache.Put(ctx, a.cache, PullRequestKey(branch), ready)
}
