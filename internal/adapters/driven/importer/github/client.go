package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client wraps the go-github client with pagination and rate limiting.
type Client struct {
	gh      *gh.Client
	limiter *rateLimiter
}

// NewClient creates a GitHub client with a static access token.
// Works for both PAT and OAuth access tokens.
func NewClient(ctx context.Context, token string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	return &Client{
		gh:      gh.NewClient(tc),
		limiter: newRateLimiter(),
	}
}

// NewClientWithHTTPClient creates a GitHub client over a custom
// http.Client, used by tests to point at a stub server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("setting base URL: %w", err)
		}
	}
	return &Client{
		gh:      client,
		limiter: newRateLimiter(),
	}, nil
}

// ValidateToken checks the token by fetching the authenticated user.
func (c *Client) ValidateToken(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	user, resp, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("validate token: %w", err)
	}
	c.update(resp)
	return user.GetLogin(), nil
}

// ListIssues returns all issues for a repository, pull requests
// included; GitHub's issues endpoint reports both.
func (c *Client) ListIssues(ctx context.Context, owner, repo string, since time.Time) ([]*gh.Issue, error) {
	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	if !since.IsZero() {
		opts.Since = since
	}

	var all []*gh.Issue
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list issues: %w", err)
		}
		c.update(resp)
		all = append(all, issues...)

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	return all, nil
}

// ListIssueComments returns all comments on one issue or pull request.
func (c *Client) ListIssueComments(ctx context.Context, owner, repo string, number int) ([]*gh.IssueComment, error) {
	opts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []*gh.IssueComment
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		comments, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("list comments for #%d: %w", number, err)
		}
		c.update(resp)
		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.ListOptions.Page = resp.NextPage
	}

	return all, nil
}

func (c *Client) update(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.limiter.UpdateFromResponse(resp.Response)
}
