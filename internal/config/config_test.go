package config

import (
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"STARSCAN_KEYWORD", "STARSCAN_MIN_STARS", "STARSCAN_MAX_RESULTS", "STARSCAN_TIMEOUT",
		"STARSCAN_OUTPUT_PREFIX", "STARSCAN_OUTPUT_DIR", "STARSCAN_RATE_LIMIT_RETRIES",
		"STARSCAN_CACHE_FILE", "STARSCAN_CACHE_TTL", "STARSCAN_NO_CACHE", "STARSCAN_DEBUG",
		"DEBUG", "GITHUB_API_URL", "S3_BUCKET_NAME", "S3_OBJECT_KEY", "AWS_REGION",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvironment_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnvironment()
	if cfg.Keyword != "" {
		t.Errorf("expected empty keyword, got %q", cfg.Keyword)
	}
	if cfg.MinStars != 100 {
		t.Errorf("MinStars = %d, want 100", cfg.MinStars)
	}
	if cfg.MaxResults != 1000 {
		t.Errorf("MaxResults = %d, want 1000", cfg.MaxResults)
	}
	if cfg.Timeout != 30*time.Minute {
		t.Errorf("Timeout = %v, want 30m", cfg.Timeout)
	}
	if cfg.OutputPrefix != "github_repos" {
		t.Errorf("OutputPrefix = %q", cfg.OutputPrefix)
	}
	if cfg.RateLimitRetries != 10 {
		t.Errorf("RateLimitRetries = %d, want 10", cfg.RateLimitRetries)
	}
	if cfg.DebugMode {
		t.Error("expected DebugMode false by default")
	}
	if cfg.NoCache {
		t.Error("expected NoCache false by default")
	}
	if cfg.CacheFile == "" {
		t.Error("expected non-empty CacheFile")
	}
}

func TestFromEnvironment_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STARSCAN_KEYWORD", "terraform")
	t.Setenv("STARSCAN_MIN_STARS", "250")
	t.Setenv("STARSCAN_MAX_RESULTS", "40")
	t.Setenv("STARSCAN_TIMEOUT", "90s")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	t.Setenv("S3_BUCKET_NAME", "reports")

	cfg := FromEnvironment()
	if cfg.Keyword != "terraform" || cfg.MinStars != 250 || cfg.MaxResults != 40 {
		t.Errorf("got keyword=%q min=%d max=%d", cfg.Keyword, cfg.MinStars, cfg.MaxResults)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.APIURL != "https://ghe.example.com/api/v3/" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.S3Bucket != "reports" {
		t.Errorf("S3Bucket = %q", cfg.S3Bucket)
	}
}

func TestFromEnvironment_DebugMode(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("DEBUG="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEBUG", tt.val)
			cfg := FromEnvironment()
			if cfg.DebugMode != tt.want {
				t.Errorf("DEBUG=%q → DebugMode=%v, want %v", tt.val, cfg.DebugMode, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{Keyword: "go", MinStars: 0, MaxResults: 1, Timeout: time.Second}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no keyword", func(c *Config) { c.Keyword = "  " }, "keyword"},
		{"negative stars", func(c *Config) { c.MinStars = -1 }, "min stars"},
		{"zero cap", func(c *Config) { c.MaxResults = 0 }, "max results"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"negative retries", func(c *Config) { c.RateLimitRetries = -2 }, "retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}
