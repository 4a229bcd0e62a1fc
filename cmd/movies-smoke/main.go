package main

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/movies/internal/smoketest"
	"github.com/okian/movies/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumMovies   = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg     smoketest.Config
		logFile string
	)

	cmd := &cobra.Command{
		Use:   "movies-smoke",
		Short: "Drive a running movies server end to end",
		Long: `Creates random movies against a running movies server, then reads, filters,
patches and deletes them, checking every response.`,
		Example: `  movies-smoke --movies 1000 --workers 16
  movies-smoke --url http://localhost:1234 --output smoke_movies.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			closeLog, err := smoketest.SetupLogging(logFile, cfg.Verbose)
			if err != nil {
				cmd.PrintErrln("failed to setup logging:", err)
				return err
			}
			defer func() { _ = closeLog() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
			defer cancel()

			if _, err := smoketest.Run(ctx, &cfg); err != nil {
				logger.Get().Error(ctx, "smoke test failed", logger.Error(err))
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseURL, "url", "http://localhost:1234", "Base URL of the service")
	flags.IntVar(&cfg.NumMovies, "movies", defaultNumMovies, "Number of movies to create")
	flags.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
	flags.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	flags.StringVar(&cfg.Origin, "origin", smoketest.DefaultOrigin, "Origin header to send; must be allow-listed")
	flags.StringVar(&cfg.OutputFile, "output", "", "Write the created movies to this JSON file (usable as a seed file)")
	flags.StringVar(&logFile, "log", "", `Also log to this file ("auto" picks a timestamped name)`)
	flags.BoolVar(&cfg.Verbose, "verbose", false, "Log every failed request")
	return cmd
}
