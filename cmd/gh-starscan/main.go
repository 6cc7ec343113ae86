package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/stahnma/gh-starscan/internal/commands"
	"github.com/stahnma/gh-starscan/internal/config"
	lambdapkg "github.com/stahnma/gh-starscan/internal/lambda"
	"github.com/stahnma/gh-starscan/internal/logging"
	"go.uber.org/zap"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg := config.FromEnvironment()

	logger, err := logging.New(cfg.DebugMode)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	app, err := commands.NewApp(cfg, logger, GitSHA, GitDirty)
	if err != nil {
		logger.Fatal("Error initializing application", zap.Error(err))
	}

	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		awslambda.Start(lambdapkg.NewHandler(app, nil))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := app.NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if err := app.SaveCache(); err != nil {
		logger.Error("Error saving cache", zap.Error(err))
	}
}
