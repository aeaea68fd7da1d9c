// Package github talks to GitHub's GraphQL API.
//
// [Client] posts GraphQL documents through go-github's authenticated HTTP
// client, so token handling, GitHub Enterprise base URLs and rate limit
// errors behave like the REST client. Responses carrying an errors array
// are mapped to coded errors (NOT_FOUND, FORBIDDEN, ...).
//
// [API] wraps a [Querier] with the per-repository response cache: read
// lookups (repository, viewer, labels, issues without labels, open pull
// requests) are remembered under fixed keys, mutations always go to GitHub.
package github
