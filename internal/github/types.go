package github

import (
	"encoding/gob"
	"time"

	gh "github.com/google/go-github/v68/github"
)

func init() {
	gob.Register([]Record{})
}

// Record is one matched repository as kept for export.
type Record struct {
	FullName    string
	URL         string
	Stars       int
	Forks       int
	Description string
}

// RecordFromRepository converts a search hit into a Record.
func RecordFromRepository(r *gh.Repository) Record {
	return Record{
		FullName:    r.GetFullName(),
		URL:         r.GetHTMLURL(),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Description: r.GetDescription(),
	}
}

// Query describes one collection run.
type Query struct {
	Keyword    string
	MinStars   int
	MaxResults int
	// Timeout bounds the whole run. Zero means the caller's context alone decides.
	Timeout time.Duration
}

// StopReason says why a collection run ended.
type StopReason int

const (
	StopCapReached StopReason = iota
	StopDeadline
	StopHTTPError
	StopDecodeError
	StopExhausted
	StopTransport
	StopRateLimited
)

func (r StopReason) String() string {
	switch r {
	case StopCapReached:
		return "cap reached"
	case StopDeadline:
		return "deadline exceeded"
	case StopHTTPError:
		return "http error"
	case StopDecodeError:
		return "decode error"
	case StopExhausted:
		return "no more results"
	case StopTransport:
		return "transport error"
	case StopRateLimited:
		return "rate limit retries exhausted"
	default:
		return "unknown"
	}
}

// Partial reports whether the run ended before the upstream data or the cap ran out.
func (r StopReason) Partial() bool {
	return r != StopCapReached && r != StopExhausted
}

// Result is what a collection run produced.
type Result struct {
	Records []Record
	// Total is the upstream total_count from the last successful page.
	Total  int
	Pages  int
	Reason StopReason
	// Err holds the terminal cause for transport, http, decode and rate-limit stops.
	Err error
}
