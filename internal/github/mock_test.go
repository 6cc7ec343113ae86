package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v68/github"
)

// mockClient implements Client for testing.
type mockClient struct {
	searchReposFn func(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error)
}

func (m *mockClient) SearchRepositories(ctx context.Context, query string, opts *gh.SearchOptions) (*gh.RepositoriesSearchResult, *gh.Response, error) {
	return m.searchReposFn(ctx, query, opts)
}

// okResponse returns a *gh.Response for a successful call.
func okResponse() *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: 200},
	}
}

// statusResponse returns a *gh.Response carrying the given status code.
func statusResponse(code int) *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: code},
	}
}

// makeRepo builds a search hit for owner/name.
func makeRepo(owner, name string, stars int) *gh.Repository {
	return &gh.Repository{
		FullName:        gh.Ptr(owner + "/" + name),
		HTMLURL:         gh.Ptr("https://github.com/" + owner + "/" + name),
		StargazersCount: gh.Ptr(stars),
		ForksCount:      gh.Ptr(stars / 10),
		Description:     gh.Ptr("repo " + name),
	}
}

// makePage builds n hits named with the given prefix.
func makePage(prefix string, n int) []*gh.Repository {
	repos := make([]*gh.Repository, 0, n)
	for i := 0; i < n; i++ {
		repos = append(repos, makeRepo("owner", fmt.Sprintf("%s-%03d", prefix, i), 1000-i))
	}
	return repos
}

func searchResult(total int, repos []*gh.Repository) *gh.RepositoriesSearchResult {
	return &gh.RepositoriesSearchResult{Total: gh.Ptr(total), Repositories: repos}
}

// sleepRecorder replaces Collector.Sleep and remembers every requested pause.
type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return ctx.Err()
}

func newTestCollector(client Client) (*Collector, *sleepRecorder) {
	rec := &sleepRecorder{}
	c := NewCollector(client, nil)
	c.Sleep = rec.sleep
	return c, rec
}
