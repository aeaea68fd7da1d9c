package github

const (
	repoQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) { id name url }
}`

	viewerQuery = `query { viewer { id login } }`

	issueQuery = `query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) { id number title url }
  }
}`

	issueWithLabelsQuery = `query($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) { id number title url labels(first: 10) { nodes { id name } } }
  }
}`

	pullRequestQuery = `query($owner: String!, $name: String!, $branch: String!) {
  repository(owner: $owner, name: $name) {
    pullRequests(headRefName: $branch, last: 1, states: OPEN) { nodes { id number url isDraft } }
  }
}`

	labelsQuery = `query($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    labels(first: 50) { nodes { id name } }
  }
}`

	labelQuery = `query($owner: String!, $name: String!, $label: String!) {
  repository(owner: $owner, name: $name) {
    label(name: $label) { id name }
  }
}`

	createIssueMutation = `mutation($input: CreateIssueInput!) {
  createIssue(input: $input) { issue { id number title url } }
}`

	updateIssueMutation = `mutation($input: UpdateIssueInput!) {
  updateIssue(input: $input) { issue { id number title url } }
}`

	closeIssueMutation = `mutation($input: CloseIssueInput!) {
  closeIssue(input: $input) { issue { id number title url } }
}`

	addCommentMutation = `mutation($input: AddCommentInput!) {
  addComment(input: $input) { clientMutationId }
}`

	createPullRequestMutation = `mutation($input: CreatePullRequestInput!) {
  createPullRequest(input: $input) { pullRequest { id number url isDraft } }
}`

	updatePullRequestMutation = `mutation($input: UpdatePullRequestInput!) {
  updatePullRequest(input: $input) { pullRequest { id number url isDraft } }
}`

	markReadyMutation = `mutation($input: MarkPullRequestReadyForReviewInput!) {
  markPullRequestReadyForReview(input: $input) { pullRequest { id number url isDraft } }
}`
)
