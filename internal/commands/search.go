package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-starscan/internal/cache"
	"github.com/stahnma/gh-starscan/internal/format"
	ghub "github.com/stahnma/gh-starscan/internal/github"
	"go.uber.org/zap"
)

// Summary describes one search run.
type Summary struct {
	Keyword    string `json:"keyword"`
	MinStars   int    `json:"min_stars"`
	MaxResults int    `json:"max_results"`
	Count      int    `json:"count"`
	TotalCount int    `json:"total_count"`
	Pages      int    `json:"pages"`
	StopReason string `json:"stop_reason"`
	Partial    bool   `json:"partial"`
	Cached     bool   `json:"cached"`
	Error      string `json:"error,omitempty"`
	File       string `json:"file,omitempty"`
}

func (a *App) newSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [keyword] [flags]",
		Short: "Search repositories and export matches to a CSV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, args)
		},
	}
	cmd.Flags().StringP("keyword", "k", a.Config.Keyword, "Keyword matched against name, description and topics")
	cmd.Flags().IntP("min-stars", "s", a.Config.MinStars, "Only repositories with more stars than this")
	cmd.Flags().IntP("max-results", "n", a.Config.MaxResults, "Maximum number of repositories to collect")
	cmd.Flags().DurationP("timeout", "t", a.Config.Timeout, "Overall time limit for the search")
	cmd.Flags().String("output-prefix", a.Config.OutputPrefix, "Base name of the CSV file")
	cmd.Flags().StringP("output-dir", "o", a.Config.OutputDir, "Directory for the CSV file")
	cmd.Flags().Bool("json", false, "Print a JSON run summary")
	return cmd
}

func (a *App) runSearch(cmd *cobra.Command, args []string) error {
	cfg := a.Config
	cfg.Keyword, _ = cmd.Flags().GetString("keyword")
	if len(args) == 1 {
		cfg.Keyword = args[0]
	}
	cfg.MinStars, _ = cmd.Flags().GetInt("min-stars")
	cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	prefix, _ := cmd.Flags().GetString("output-prefix")
	dir, _ := cmd.Flags().GetString("output-dir")
	jsonOut, _ := cmd.Flags().GetBool("json")
	if err := cfg.Validate(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	started := a.now()
	fmt.Fprintf(w, "Searching for %q with more than %d stars (up to %d results)...\n", cfg.Keyword, cfg.MinStars, cfg.MaxResults)

	records, summary, err := a.Search(cmd.Context(), ghub.Query{
		Keyword:    cfg.Keyword,
		MinStars:   cfg.MinStars,
		MaxResults: cfg.MaxResults,
		Timeout:    cfg.Timeout,
	})
	if err != nil {
		return err
	}

	if summary.Partial {
		if summary.Error != "" {
			fmt.Fprintf(w, "Search stopped early (%s): %s\n", summary.StopReason, summary.Error)
		} else {
			fmt.Fprintf(w, "Search stopped early (%s) after %d repositories.\n", summary.StopReason, summary.Count)
		}
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "No repositories matched %q with more than %d stars.\n", cfg.Keyword, cfg.MinStars)
	} else {
		path := filepath.Join(dir, format.FileName(prefix, started))
		if err := format.ExportFile(path, records); err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}
		summary.File = path
		fmt.Fprintf(w, "Exported %d repositories to %s\n", len(records), path)
	}

	if jsonOut {
		return format.WriteJSON(w, summary)
	}
	return nil
}

// Search runs one collection for q, serving complete results from the cache
// when allowed. Page-level failures are reported in the summary, not as errors.
func (a *App) Search(ctx context.Context, q ghub.Query) ([]ghub.Record, Summary, error) {
	summary := Summary{
		Keyword:    q.Keyword,
		MinStars:   q.MinStars,
		MaxResults: q.MaxResults,
	}
	if ctx == nil {
		ctx = context.Background()
	}

	key := cache.SearchKey(q.Keyword, q.MinStars, q.MaxResults)
	if !a.Config.NoCache {
		if val, found := a.Cache.Get(key); found {
			if records, ok := val.([]ghub.Record); ok {
				a.logger().Debug("Cache hit", zap.String("key", key))
				summary.Count = len(records)
				summary.Cached = true
				summary.StopReason = "cached"
				return records, summary, nil
			}
		}
		a.logger().Debug("Cache miss", zap.String("key", key))
	}

	if err := a.ensureClient(); err != nil {
		return nil, summary, err
	}

	collector := ghub.NewCollector(a.GHClient, a.logger())
	collector.MaxRateLimitRetries = a.Config.RateLimitRetries
	if a.Sleep != nil {
		collector.Sleep = a.Sleep
	}

	start := time.Now()
	res := collector.Collect(ctx, q)
	a.logger().Info("Search finished",
		zap.String("keyword", q.Keyword),
		zap.Int("count", len(res.Records)),
		zap.Duration("elapsed", time.Since(start)))

	summary.Count = len(res.Records)
	summary.TotalCount = res.Total
	summary.Pages = res.Pages
	summary.StopReason = res.Reason.String()
	summary.Partial = res.Reason.Partial()
	if res.Err != nil {
		summary.Error = res.Err.Error()
	}

	if !a.Config.NoCache && !summary.Partial {
		a.Cache.Set(key, res.Records)
	}
	return res.Records, summary, nil
}
