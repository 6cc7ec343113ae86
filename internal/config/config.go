package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Keyword    string
	MinStars   int
	MaxResults int
	Timeout    time.Duration

	OutputPrefix string
	OutputDir    string

	APIURL           string
	RateLimitRetries int
	DebugMode        bool
	CacheFile        string
	CacheTTL         time.Duration
	NoCache          bool

	S3Bucket    string
	S3ObjectKey string
	AWSRegion   string
}

const envPrefix = "STARSCAN"

// FromEnvironment creates a Config from environment variables. Search
// settings use the STARSCAN_ prefix; DEBUG, GITHUB_API_URL and the AWS
// variables are read as-is.
func FromEnvironment() Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("keyword", "")
	v.SetDefault("min_stars", 100)
	v.SetDefault("max_results", 1000)
	v.SetDefault("timeout", 30*time.Minute)
	v.SetDefault("output_prefix", "github_repos")
	v.SetDefault("output_dir", ".")
	v.SetDefault("rate_limit_retries", 10)
	v.SetDefault("cache_file", "/tmp/starscan-cache.gob")
	v.SetDefault("cache_ttl", 4*time.Hour)

	_ = v.BindEnv("debug", "DEBUG", envPrefix+"_DEBUG")
	_ = v.BindEnv("no_cache", envPrefix+"_NO_CACHE")
	_ = v.BindEnv("api_url", "GITHUB_API_URL")
	_ = v.BindEnv("s3_bucket", "S3_BUCKET_NAME")
	_ = v.BindEnv("s3_object_key", "S3_OBJECT_KEY")
	_ = v.BindEnv("aws_region", "AWS_REGION")

	return Config{
		Keyword:          v.GetString("keyword"),
		MinStars:         v.GetInt("min_stars"),
		MaxResults:       v.GetInt("max_results"),
		Timeout:          v.GetDuration("timeout"),
		OutputPrefix:     v.GetString("output_prefix"),
		OutputDir:        v.GetString("output_dir"),
		APIURL:           v.GetString("api_url"),
		RateLimitRetries: v.GetInt("rate_limit_retries"),
		DebugMode:        truthy(v.GetString("debug")),
		CacheFile:        v.GetString("cache_file"),
		CacheTTL:         v.GetDuration("cache_ttl"),
		NoCache:          truthy(v.GetString("no_cache")),
		S3Bucket:         v.GetString("s3_bucket"),
		S3ObjectKey:      v.GetString("s3_object_key"),
		AWSRegion:        v.GetString("aws_region"),
	}
}

// truthy treats anything other than "", "0" and "false" as enabled.
func truthy(s string) bool {
	return s != "" && s != "0" && strings.ToLower(s) != "false"
}

// Validate checks the search settings of c.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Keyword) == "" {
		errs = append(errs, errors.New("keyword is required"))
	}
	if c.MinStars < 0 {
		errs = append(errs, errors.New("min stars must not be negative"))
	}
	if c.MaxResults <= 0 {
		errs = append(errs, errors.New("max results must be positive"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.RateLimitRetries < 0 {
		errs = append(errs, errors.New("rate limit retries must not be negative"))
	}
	return errors.Join(errs...)
}
