package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/raphi011/itg/internal/cache"
	"github.com/raphi011/itg/internal/config"
	"github.com/raphi011/itg/internal/git"
	"github.com/raphi011/itg/internal/github"
	"github.com/raphi011/itg/internal/log"
	"github.com/raphi011/itg/internal/output"
)

// fakeGitHub is an in-memory GitHub answering the GraphQL documents the
// API sends. Operations are matched in order, mutations first.
type fakeGitHub struct {
	repo   github.Repository
	viewer github.User
	labels []github.Label
	issues map[int]*github.Issue
	prs    map[string]*github.PullRequest // by head branch
	next   int

	ops    []string
	inputs map[string][]map[string]any // mutation -> inputs
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		repo:   github.Repository{ID: "R_1", Name: "api", URL: "https://github.com/acme/api"},
		viewer: github.User{ID: "U_1", Login: "alice"},
		labels: []github.Label{
			{ID: "L_bug", Name: "bug"},
			{ID: "L_feat", Name: "feature"},
			{ID: "L_docs", Name: "documentation"},
		},
		issues: make(map[int]*github.Issue),
		prs:    make(map[string]*github.PullRequest),
		next:   100,
		inputs: make(map[string][]map[string]any),
	}
}

// addIssue registers an existing issue.
func (f *fakeGitHub) addIssue(number int, title string, labels ...string) *github.Issue {
	issue := &github.Issue{
		ID:     fmt.Sprintf("I_%d", number),
		Number: number,
		Title:  title,
		URL:    fmt.Sprintf("%s/issues/%d", f.repo.URL, number),
	}
	for _, name := range labels {
		for _, l := range f.labels {
			if l.Name == name {
				issue.Labels = append(issue.Labels, l)
			}
		}
	}
	f.issues[number] = issue
	return issue
}

func (f *fakeGitHub) count(op string) int {
	n := 0
	for _, o := range f.ops {
		if o == op {
			n++
		}
	}
	return n
}

func (f *fakeGitHub) lastInput(op string) map[string]any {
	in := f.inputs[op]
	if len(in) == 0 {
		return nil
	}
	return in[len(in)-1]
}

func (f *fakeGitHub) Query(_ context.Context, query string, vars map[string]any, out any) error {
	op, data, err := f.answer(query, vars)
	f.ops = append(f.ops, op)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeGitHub) answer(query string, vars map[string]any) (string, any, error) {
	input, _ := vars["input"].(map[string]any)

	for _, op := range []string{
		"createIssue", "updateIssue", "closeIssue", "addComment",
		"createPullRequest", "updatePullRequest", "markPullRequestReadyForReview",
	} {
		if strings.Contains(query, op+"(") {
			f.inputs[op] = append(f.inputs[op], input)
			data, err := f.mutate(op, input)
			return op, data, err
		}
	}

	switch {
	case strings.Contains(query, "labels(first: 10)"), strings.Contains(query, "issue(number"):
		issue, ok := f.issues[vars["number"].(int)]
		if !ok {
			return "issue", map[string]any{"repository": map[string]any{"issue": nil}}, nil
		}
		node := map[string]any{"id": issue.ID, "number": issue.Number, "title": issue.Title, "url": issue.URL}
		if strings.Contains(query, "labels(first: 10)") {
			node["labels"] = map[string]any{"nodes": issue.Labels}
		}
		return "issue", map[string]any{"repository": map[string]any{"issue": node}}, nil
	case strings.Contains(query, "pullRequests("):
		nodes := []github.PullRequest{}
		if pr, ok := f.prs[vars["branch"].(string)]; ok {
			nodes = append(nodes, *pr)
		}
		return "pullRequests", map[string]any{"repository": map[string]any{"pullRequests": map[string]any{"nodes": nodes}}}, nil
	case strings.Contains(query, "labels(first: 50)"):
		return "labels", map[string]any{"repository": map[string]any{"labels": map[string]any{"nodes": f.labels}}}, nil
	case strings.Contains(query, "label(name"):
		for _, l := range f.labels {
			if l.Name == vars["label"] {
				return "label", map[string]any{"repository": map[string]any{"label": l}}, nil
			}
		}
		return "label", map[string]any{"repository": map[string]any{"label": nil}}, nil
	case strings.Contains(query, "viewer"):
		return "viewer", map[string]any{"viewer": f.viewer}, nil
	case strings.Contains(query, "{ id name url }"):
		return "repository", map[string]any{"repository": f.repo}, nil
	}
	return "unknown", nil, fmt.Errorf("unexpected query: %s", query)
}

func (f *fakeGitHub) mutate(op string, input map[string]any) (any, error) {
	switch op {
	case "createIssue":
		f.next++
		issue := f.addIssue(f.next, input["title"].(string))
		return map[string]any{"createIssue": map[string]any{"issue": issue}}, nil
	case "updateIssue", "closeIssue":
		id, _ := input["id"].(string)
		if op == "closeIssue" {
			id, _ = input["issueId"].(string)
		}
		for _, issue := range f.issues {
			if issue.ID == id {
				return map[string]any{op: map[string]any{"issue": issue}}, nil
			}
		}
		return nil, fmt.Errorf("issue %s not found", id)
	case "addComment":
		return map[string]any{"addComment": map[string]any{"clientMutationId": nil}}, nil
	case "createPullRequest":
		f.next++
		pr := &github.PullRequest{
			ID:      fmt.Sprintf("PR_%d", f.next),
			Number:  f.next,
			URL:     fmt.Sprintf("%s/pull/%d", f.repo.URL, f.next),
			IsDraft: input["draft"].(bool),
		}
		f.prs[input["headRefName"].(string)] = pr
		return map[string]any{"createPullRequest": map[string]any{"pullRequest": pr}}, nil
	default: // updatePullRequest, markPullRequestReadyForReview
		for _, pr := range f.prs {
			if pr.ID == input["pullRequestId"] {
				if op == "markPullRequestReadyForReview" {
					pr.IsDraft = false
				}
				return map[string]any{op: map[string]any{"pullRequest": pr}}, nil
			}
		}
		return nil, fmt.Errorf("pull request %v not found", input["pullRequestId"])
	}
}

// testEnv carries what a command run needs and captures its output.
type testEnv struct {
	ctx    context.Context
	dir    string
	gh     *fakeGitHub
	store  *cache.Store
	cfg    *config.Config
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T, dir string) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.BaseBranch = "main"

	env := &testEnv{
		dir:    dir,
		gh:     newFakeGitHub(),
		cfg:    &cfg,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	env.store = newStore(env.cfg, dir)

	api := github.NewAPI(env.gh, env.store, func() (string, string, error) { return "acme", "api", nil })

	ctx := context.Background()
	ctx = log.WithLogger(ctx, log.New(env.stderr, false, false))
	ctx = output.WithPrinter(ctx, env.stdout)
	ctx = config.WithConfig(ctx, env.cfg)
	ctx = withWorkDir(ctx, dir)
	ctx = withStore(ctx, env.store)
	ctx = withAPI(ctx, api)
	env.ctx = withoutPrompts(ctx)
	return env
}

// run executes cmd with args in the test environment.
func (e *testEnv) run(cmd *cobra.Command, args ...string) error {
	cmd.SetContext(e.ctx)
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	return cmd.Execute()
}

// resolveTempDir returns t.TempDir() with symlinks resolved (macOS /var).
func resolveTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return dir
}

// runGit runs git in dir and returns its trimmed output.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupTestRepo creates a clone of a bare origin with an initial commit
// on main pushed. Returns the clone's path.
func setupTestRepo(t *testing.T) string {
	t.Helper()

	root := resolveTempDir(t)
	origin := filepath.Join(root, "origin.git")
	repo := filepath.Join(root, "repo")

	runGit(t, root, "init", "--bare", origin)
	runGit(t, root, "clone", "--quiet", origin, repo)

	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
		{"checkout", "-b", "main"},
	} {
		runGit(t, repo, args...)
	}

	if err := os.WriteFile(filepath.Join(repo, "README.md"), []byte("# api\n"), 0o644); err != nil {
		t.Fatalf("failed to write README: %v", err)
	}
	runGit(t, repo, "add", "README.md")
	runGit(t, repo, "commit", "-m", "Initial commit")
	runGit(t, repo, "push", "--quiet", "-u", "origin", "main")

	return repo
}

// pushBranch creates branch on origin from main without checking it out.
func pushBranch(t *testing.T, repo, branch string) {
	t.Helper()
	runGit(t, repo, "push", "--quiet", "origin", "main:refs/heads/"+branch)
}

func currentBranch(t *testing.T, repo string) string {
	t.Helper()
	name, err := git.CurrentBranch(repo)
	if err != nil {
		t.Fatalf("CurrentBranch() error = %v", err)
	}
	return name
}

func remoteBranches(t *testing.T, repo string) []string {
	t.Helper()
	var names []string
	for _, line := range strings.Split(runGit(t, repo, "ls-remote", "--heads", "origin"), "\n") {
		if _, ref, ok := strings.Cut(line, "\t"); ok {
			names = append(names, strings.TrimPrefix(ref, "refs/heads/"))
		}
	}
	slices.Sort(names)
	return names
}
