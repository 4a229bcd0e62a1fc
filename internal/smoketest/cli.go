package smoketest

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/movies/pkg/logger"
)

// SetupLogging initialises the logger to write to stdout and, when logFile
// is non-empty or "auto", to a file. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	if logFile == "" {
		if err := logger.Init(logger.WithWriter(os.Stdout)); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		setVerbosity(verbose)
		return func() error { return nil }, nil
	}

	if logFile == "auto" {
		logFile = "smoke_log_" + time.Now().Format("20060102_150405") + ".log"
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	setVerbosity(verbose)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file.Close, nil
}

func setVerbosity(verbose bool) {
	if verbose {
		_ = logger.SetLevelString("debug")
	}
}
