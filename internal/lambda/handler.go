package lambda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stahnma/gh-starscan/internal/commands"
	"github.com/stahnma/gh-starscan/internal/format"
	ghub "github.com/stahnma/gh-starscan/internal/github"
	"go.uber.org/zap"
)

// Event is the Lambda payload. Missing fields fall back to the app config.
type Event struct {
	Keyword    string `json:"keyword"`
	MinStars   *int   `json:"min_stars,omitempty"`
	MaxResults *int   `json:"max_results,omitempty"`
	Timeout    string `json:"timeout,omitempty"`
}

// Uploader is the part of the S3 client the handler needs.
type Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Handler runs a search and uploads the CSV report to S3.
type Handler struct {
	App      *commands.App
	Uploader Uploader
	Now      func() time.Time
}

// NewHandler returns a Lambda handler function bound to app. A nil uploader
// is replaced by an S3 client built from the default AWS config on first use.
func NewHandler(app *commands.App, uploader Uploader) func(context.Context, Event) (string, error) {
	h := &Handler{App: app, Uploader: uploader, Now: time.Now}
	return h.Handle
}

// Handle processes one invocation and returns the JSON run summary.
func (h *Handler) Handle(ctx context.Context, event Event) (string, error) {
	cfg := h.App.Config
	if event.Keyword != "" {
		cfg.Keyword = event.Keyword
	}
	if event.MinStars != nil {
		cfg.MinStars = *event.MinStars
	}
	if event.MaxResults != nil {
		cfg.MaxResults = *event.MaxResults
	}
	if event.Timeout != "" {
		d, err := time.ParseDuration(event.Timeout)
		if err != nil {
			return "", fmt.Errorf("parsing timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if cfg.S3Bucket == "" || cfg.S3ObjectKey == "" {
		return "", errors.New("S3_BUCKET_NAME and S3_OBJECT_KEY environment variables must be set")
	}

	started := h.Now()
	records, summary, err := h.App.Search(ctx, ghub.Query{
		Keyword:    cfg.Keyword,
		MinStars:   cfg.MinStars,
		MaxResults: cfg.MaxResults,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		return "", fmt.Errorf("search: %w", err)
	}

	if len(records) > 0 {
		var body bytes.Buffer
		if err := format.WriteCSV(&body, records); err != nil {
			return "", fmt.Errorf("rendering csv: %w", err)
		}

		uploader, err := h.uploader(ctx, cfg.AWSRegion)
		if err != nil {
			return "", err
		}
		key := objectKey(cfg.S3ObjectKey, started)
		_, err = uploader.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(cfg.S3Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body.Bytes()),
			ContentType: aws.String("text/csv; charset=utf-8"),
		})
		if err != nil {
			return "", fmt.Errorf("failed to upload report to S3: %w", err)
		}
		summary.File = "s3://" + cfg.S3Bucket + "/" + key
		if h.App.Logger != nil {
			h.App.Logger.Info("Uploaded report", zap.String("bucket", cfg.S3Bucket), zap.String("key", key), zap.Int("count", len(records)))
		}
	}

	var out bytes.Buffer
	if err := format.WriteJSON(&out, summary); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.String()), nil
}

func (h *Handler) uploader(ctx context.Context, region string) (Uploader, error) {
	if h.Uploader != nil {
		return h.Uploader, nil
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	h.Uploader = s3.NewFromConfig(cfg)
	return h.Uploader, nil
}

// objectKey fills a "%s" placeholder in the key template with the run timestamp.
func objectKey(template string, t time.Time) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, t.Format("20060102_150405"))
	}
	return template
}
