package github

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/go-github/v67/github"
	"github.com/jmgilman/go/errors"
)

// Querier runs a GraphQL document and decodes its data into out.
type Querier interface {
	Query(ctx context.Context, query string, vars map[string]any, out any) error
}

// Client sends GraphQL requests through go-github's transport.
type Client struct {
	gh       *github.Client
	endpoint string
}

type clientConfig struct {
	token   string
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*clientConfig) error

// WithToken sets the token used for authentication.
func WithToken(token string) Option {
	return func(cfg *clientConfig) error {
		if token == "" {
			err := errors.New(errors.CodeInvalidInput, "token cannot be empty")
			return errors.WithContext(err, "field", "token")
		}
		cfg.token = token
		return nil
	}
}

// WithBaseURL points the client at a GitHub Enterprise server, e.g.
// https://github.example.com/api/v3/.
func WithBaseURL(url string) Option {
	return func(cfg *clientConfig) error {
		cfg.baseURL = url
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.http = c
		return nil
	}
}

// NewClient creates a GraphQL client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	gh := github.NewClient(cfg.http)
	if cfg.token != "" {
		gh = gh.WithAuthToken(cfg.token)
	}
	if cfg.baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(cfg.baseURL, cfg.baseURL)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "invalid API URL %q", cfg.baseURL)
		}
	}

	return &Client{gh: gh, endpoint: graphqlEndpoint(gh.BaseURL.String())}, nil
}

// graphqlEndpoint derives the GraphQL URL from a REST base URL.
// Enterprise servers serve REST under /api/v3/ and GraphQL at /api/graphql.
func graphqlEndpoint(base string) string {
	if strings.HasSuffix(base, "/api/v3/") {
		return strings.TrimSuffix(base, "v3/") + "graphql"
	}
	return base + "graphql"
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Query implements Querier.
func (c *Client) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	req, err := c.gh.NewRequest(http.MethodPost, c.endpoint, graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to build GraphQL request")
	}

	var body graphqlResponse
	resp, err := c.gh.Do(ctx, req, &body)
	if err != nil {
		return wrapError(err, resp, "GraphQL request failed")
	}

	if len(body.Errors) > 0 {
		return graphqlErrors(body.Errors)
	}
	if out == nil || len(body.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(body.Data, out); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to decode GraphQL response")
	}
	return nil
}

// graphqlErrors folds the errors array of a response into one error,
// coded by the first error's type.
func graphqlErrors(errs []graphqlError) error {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}

	code := errors.CodeExecutionFailed
	switch errs[0].Type {
	case "NOT_FOUND":
		code = errors.CodeNotFound
	case "FORBIDDEN", "INSUFFICIENT_SCOPES":
		code = errors.CodeForbidden
	case "RATE_LIMITED":
		code = errors.CodeRateLimit
	case "UNPROCESSABLE":
		code = errors.CodeInvalidInput
	}
	return errors.New(code, strings.Join(msgs, "; "))
}

// wrapError classifies a transport error by HTTP status.
func wrapError(err error, resp *github.Response, message string) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return errors.Wrap(err, errors.CodeRateLimit, message)
	}

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		statusCode = ghErr.Response.StatusCode
	}

	if statusCode == 0 {
		return errors.Wrap(err, errors.CodeNetwork, message)
	}

	var code errors.ErrorCode
	switch {
	case statusCode == http.StatusNotFound:
		code = errors.CodeNotFound
	case statusCode == http.StatusUnauthorized:
		code = errors.CodeUnauthorized
	case statusCode == http.StatusForbidden:
		code = errors.CodeForbidden
	case statusCode == http.StatusTooManyRequests:
		code = errors.CodeRateLimit
	case statusCode == http.StatusBadRequest, statusCode == http.StatusUnprocessableEntity:
		code = errors.CodeInvalidInput
	case statusCode >= 500:
		code = errors.CodeNetwork
	default:
		code = errors.CodeInternal
	}
	return errors.Wrap(err, code, message)
}
