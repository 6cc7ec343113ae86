package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v68/github"
)

// Client defines the GitHub API methods used by this application.
type Client interface {
	SearchRepositories(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error)
}

// realClient wraps the go-github client to implement Client.
type realClient struct {
	inner *gh.Client
}

// NewClient creates an unauthenticated GitHub API client on top of httpClient.
// A non-empty baseURL points the client at a GitHub Enterprise or test server.
func NewClient(httpClient *http.Client, baseURL string) (Client, error) {
	inner := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing API base URL: %w", err)
		}
		inner.BaseURL = u
	}
	return &realClient{inner: inner}, nil
}

func (c *realClient) SearchRepositories(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
	return c.inner.Search.Repositories(ctx, query, opts)
}
