package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/stahnma/gh-starscan/internal/cache"
	"github.com/stahnma/gh-starscan/internal/config"
	ghub "github.com/stahnma/gh-starscan/internal/github"
	"github.com/stahnma/gh-starscan/internal/logging"
	"go.uber.org/zap"
)

// App holds shared application state.
type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Cache    *cache.Cache
	GHClient ghub.Client
	GitSHA   string
	GitDirty string

	// Sleep overrides the collector's pause between pages and after throttling.
	Sleep func(ctx context.Context, d time.Duration) error
	// Now stamps export file names.
	Now func() time.Time
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, logger *zap.Logger, gitSHA, gitDirty string) (*App, error) {
	c, err := cache.LoadFromFile(cfg.CacheFile, cfg.CacheTTL, logger)
	if err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Cache:    c,
		GitSHA:   gitSHA,
		GitDirty: gitDirty,
		Now:      time.Now,
	}, nil
}

// ensureClient creates the GitHub client if it doesn't exist.
func (a *App) ensureClient() error {
	if a.GHClient != nil {
		return nil
	}
	client, err := ghub.NewClient(&http.Client{}, a.Config.APIURL)
	if err != nil {
		return err
	}
	a.GHClient = client
	return nil
}

func (a *App) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// SaveCache saves the cache to disk if caching is enabled.
func (a *App) SaveCache() error {
	if !a.Config.NoCache {
		return a.Cache.SaveToFile(a.Config.CacheFile)
	}
	return nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   os.Args[0],
		Short: "Search GitHub repositories by keyword and stars and export them as CSV.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("debug") {
				return nil
			}
			logger, err := logging.New(a.Config.DebugMode)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			a.Logger = logger
			return nil
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&a.Config.NoCache, "no-cache", a.Config.NoCache, "Disable caching")
	rootCmd.PersistentFlags().BoolVar(&a.Config.DebugMode, "debug", a.Config.DebugMode, "Debug logging")

	rootCmd.AddCommand(a.newSearchCommand())
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())

	return rootCmd
}
