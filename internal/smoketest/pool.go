package smoketest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/movies/pkg/logger"
)

// runPool calls fn for every index in [0, n) on workers goroutines and
// returns how many calls failed. Progress is logged at most once per
// ProgressInterval.
func runPool(ctx context.Context, cfg *Config, phase string, n int, fn func(ctx context.Context, i int) error) int {
	log := logger.Named("smoketest")
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	var (
		done, failed atomic.Int64
		lastReport   atomic.Int64
		wg           sync.WaitGroup
	)
	indexChan := make(chan int, workers*WorkerChannelMultiplier)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				if err := fn(ctx, i); err != nil {
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, phase+" failed", logger.Int("index", i), logger.Error(err))
					}
				}
				total := done.Add(1)

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(ProgressInterval) && lastReport.CompareAndSwap(last, now) {
					log.Info(ctx, phase+" progress",
						logger.Int("done", int(total)),
						logger.Int("of", n),
						logger.Int("failed", int(failed.Load())))
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Indices never handed out because ctx ended count as failures.
	if missing := n - int(done.Load()); missing > 0 {
		failed.Add(int64(missing))
	}
	return int(failed.Load())
}
