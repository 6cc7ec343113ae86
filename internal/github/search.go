package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	gh "github.com/google/go-github/v68/github"
	"go.uber.org/zap"
)

const (
	// MaxPageSize is the largest per_page the search API accepts.
	MaxPageSize = 100

	DefaultPageDelay           = 2 * time.Second
	DefaultRateLimitBackoff    = 60 * time.Second
	DefaultMaxRateLimitRetries = 10
)

// BuildQuery returns the search expression for keyword with more than minStars stars.
func BuildQuery(keyword string, minStars int) string {
	return fmt.Sprintf("%s in:name,description,topics stars:>%d", keyword, minStars)
}

// Collector walks the repository search pages for a query.
type Collector struct {
	Client Client
	Logger *zap.Logger

	PageSize  int
	PageDelay time.Duration
	// RateLimitBackoff is the fixed pause after a throttled response.
	RateLimitBackoff time.Duration
	// MaxRateLimitRetries caps consecutive throttled attempts on one page.
	// Zero retries until the deadline.
	MaxRateLimitRetries int

	// Sleep blocks for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewCollector creates a Collector with the default paging and backoff policy.
func NewCollector(client Client, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		Client:              client,
		Logger:              logger,
		PageSize:            MaxPageSize,
		PageDelay:           DefaultPageDelay,
		RateLimitBackoff:    DefaultRateLimitBackoff,
		MaxRateLimitRetries: DefaultMaxRateLimitRetries,
		Sleep:               sleepContext,
	}
}

// Collect fetches pages for q until the cap, the deadline, an error or an
// empty page stops it. Whatever was gathered up to that point is returned.
func (c *Collector) Collect(ctx context.Context, q Query) Result {
	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	query := BuildQuery(q.Keyword, q.MinStars)
	log := c.Logger.With(zap.String("query", query), zap.Int("max_results", q.MaxResults))

	res := Result{Reason: StopCapReached}
	page := 1
	retries := 0

	for len(res.Records) < q.MaxResults {
		if ctx.Err() != nil {
			res.Reason = StopDeadline
			break
		}

		pr := c.fetchPage(ctx, query, page)
		switch pr.outcome {
		case outcomeCanceled:
			res.Reason = StopDeadline
		case outcomeRateLimited:
			retries++
			if c.MaxRateLimitRetries > 0 && retries > c.MaxRateLimitRetries {
				res.Reason = StopRateLimited
				res.Err = pr.err
				break
			}
			log.Warn("Rate limited, backing off",
				zap.Int("page", page),
				zap.Int("attempt", retries),
				zap.Duration("backoff", c.RateLimitBackoff))
			if err := c.sleep(ctx, c.RateLimitBackoff); err != nil {
				res.Reason = StopDeadline
				break
			}
			continue
		case outcomeHTTPError:
			res.Reason = StopHTTPError
			res.Err = pr.err
		case outcomeDecodeError:
			res.Reason = StopDecodeError
			res.Err = pr.err
		case outcomeTransport:
			res.Reason = StopTransport
			res.Err = pr.err
		case outcomeOK:
			retries = 0
			res.Total = pr.total
			if len(pr.items) == 0 {
				res.Reason = StopExhausted
				break
			}
			room := q.MaxResults - len(res.Records)
			items := pr.items
			if len(items) > room {
				items = items[:room]
			}
			for _, item := range items {
				res.Records = append(res.Records, RecordFromRepository(item))
			}
			res.Pages++
			log.Debug("Fetched page",
				zap.Int("page", page),
				zap.Int("items", len(items)),
				zap.Int("collected", len(res.Records)),
				zap.Int("total", pr.total))
			if len(res.Records) >= q.MaxResults {
				res.Reason = StopCapReached
				break
			}
			page++
			if err := c.sleep(ctx, c.PageDelay); err != nil {
				res.Reason = StopDeadline
				break
			}
			continue
		}
		break
	}

	fields := []zap.Field{
		zap.Int("collected", len(res.Records)),
		zap.Int("pages", res.Pages),
		zap.Stringer("reason", res.Reason),
	}
	if res.Err != nil {
		log.Warn("Collection stopped", append(fields, zap.Error(res.Err))...)
	} else {
		log.Info("Collection finished", fields...)
	}
	return res
}

func (c *Collector) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep == nil {
		return sleepContext(ctx, d)
	}
	return c.Sleep(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type pageOutcome int

const (
	outcomeOK pageOutcome = iota
	outcomeRateLimited
	outcomeHTTPError
	outcomeDecodeError
	outcomeTransport
	outcomeCanceled
)

type pageResult struct {
	outcome pageOutcome
	total   int
	items   []*gh.Repository
	err     error
}

func (c *Collector) fetchPage(ctx context.Context, query string, page int) pageResult {
	opts := &gh.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: c.PageSize,
		},
	}
	result, resp, err := c.Client.SearchRepositories(ctx, query, opts)
	return classify(ctx, result, resp, err)
}

// classify reduces one search call to a single outcome for the paging loop.
func classify(ctx context.Context, result *gh.RepositoriesSearchResult, resp *gh.Response, err error) pageResult {
	if err == nil {
		if result == nil {
			return pageResult{outcome: outcomeOK}
		}
		return pageResult{outcome: outcomeOK, total: result.GetTotal(), items: result.Repositories}
	}

	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return pageResult{outcome: outcomeCanceled, err: err}
	}

	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return pageResult{outcome: outcomeRateLimited, err: err}
	}

	status := 0
	if resp != nil && resp.Response != nil {
		status = resp.StatusCode
	}
	switch {
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return pageResult{outcome: outcomeRateLimited, err: err}
	case status >= 200 && status < 300:
		return pageResult{outcome: outcomeDecodeError, err: fmt.Errorf("decoding search page: %w", err)}
	case status != 0:
		return pageResult{outcome: outcomeHTTPError, err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return pageResult{outcome: outcomeDecodeError, err: fmt.Errorf("decoding search page: %w", err)}
	}
	return pageResult{outcome: outcomeTransport, err: err}
}
