package github

import (
	"testing"

	gh "github.com/google/go-github/v68/github"
)

func TestRecordFromRepository(t *testing.T) {
	r := RecordFromRepository(makeRepo("alice", "tool", 420))
	want := Record{
		FullName:    "alice/tool",
		URL:         "https://github.com/alice/tool",
		Stars:       420,
		Forks:       42,
		Description: "repo tool",
	}
	if r != want {
		t.Errorf("got %+v, want %+v", r, want)
	}
}

func TestRecordFromRepository_NilDescription(t *testing.T) {
	r := RecordFromRepository(&gh.Repository{FullName: gh.Ptr("bob/empty")})
	if r.Description != "" {
		t.Errorf("description = %q, want empty", r.Description)
	}
	if r.Stars != 0 || r.Forks != 0 {
		t.Errorf("counts = %d/%d, want 0/0", r.Stars, r.Forks)
	}
}

func TestStopReason_Partial(t *testing.T) {
	tests := []struct {
		reason StopReason
		want   bool
	}{
		{StopCapReached, false},
		{StopExhausted, false},
		{StopDeadline, true},
		{StopHTTPError, true},
		{StopDecodeError, true},
		{StopTransport, true},
		{StopRateLimited, true},
	}
	for _, tt := range tests {
		if got := tt.reason.Partial(); got != tt.want {
			t.Errorf("%v.Partial() = %v, want %v", tt.reason, got, tt.want)
		}
	}
}

func TestStopReason_String(t *testing.T) {
	if got := StopDeadline.String(); got != "deadline exceeded" {
		t.Errorf("got %q", got)
	}
	if got := StopReason(99).String(); got != "unknown" {
		t.Errorf("got %q", got)
	}
}
