package github

// Repository identifies the GitHub repository behind the origin remote.
type Repository struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// User is the authenticated viewer.
type User struct {
	ID    string `json:"id"`
	Login string `json:"login"`
}

// Label is a repository label.
type Label struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is the subset of issue fields itg works with.
// Labels is only populated when requested.
type Issue struct {
	ID     string  `json:"id"`
	Number int     `json:"number"`
	Title  string  `json:"title"`
	URL    string  `json:"url,omitempty"`
	Labels []Label `json:"labels,omitempty"`
}

// PullRequest is the subset of pull request fields itg works with.
type PullRequest struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	URL     string `json:"url"`
	IsDraft bool   `json:"isDraft"`
}

// PullRequestOptions configures CreatePullRequest.
type PullRequestOptions struct {
	Base  string // branch to merge into
	Head  string // branch with the changes
	Draft bool
}

// LabelNames returns the names of labels.
func LabelNames(labels []Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}
