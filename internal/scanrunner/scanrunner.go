// Package scanrunner evaluates multiple scenario files concurrently at the
// CLI layer, bounded by a worker semaphore. This is the same shape as the
// teacher's internal/probes.RunLiveProbes fan-out (a buffered-channel
// semaphore plus a WaitGroup and a mutex-guarded results slice, with a
// per-item panic recovered rather than allowed to crash the batch) adapted
// from live-probing multiple agents to evaluating multiple RunInput
// scenarios. engine.Evaluate itself stays synchronous and sequential; only
// this CLI-layer batch driver runs concurrently.
package scanrunner

import (
	"context"
	"fmt"
	"sync"

	"github.com/thinkwright/sentryguard/internal/guardmodel"
)

// Result is the outcome of evaluating one scenario path.
type Result struct {
	Path    string
	Verdict guardmodel.Verdict
	Err     error
}

// RunConfig bounds the batch driver's concurrency.
type RunConfig struct {
	Concurrency int
}

// ProgressCallback is invoked after each scenario finishes, in completion
// order (not necessarily input order).
type ProgressCallback func(done, total int, path string)

// Loader loads a scenario's policy, evaluates it, and returns the Verdict.
// Each scenario resolves its own policy (auto-discovery is directory
// relative), so Loader takes only a path, not a shared Engine.
type Loader func(ctx context.Context, path string) (guardmodel.Verdict, error)

// Run evaluates every path concurrently, bounded by cfg.Concurrency
// (default 1, i.e. sequential), and returns one Result per path in the same
// order as paths. A panic while loading or evaluating one path becomes an
// error on that path's Result rather than aborting the batch.
func Run(ctx context.Context, paths []string, load Loader, cfg RunConfig, progress ProgressCallback) []Result {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	results := make([]Result, len(paths))
	sem := make(chan struct{}, cfg.Concurrency)

	var mu sync.Mutex
	var wg sync.WaitGroup
	completed := 0
	total := len(paths)

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					mu.Lock()
					results[i] = Result{Path: path, Err: fmt.Errorf("panic evaluating %s: %v", path, r)}
					completed++
					if progress != nil {
						progress(completed, total, path)
					}
					mu.Unlock()
				}
			}()

			verdict, err := load(ctx, path)

			mu.Lock()
			results[i] = Result{Path: path, Verdict: verdict, Err: err}
			completed++
			if progress != nil {
				progress(completed, total, path)
			}
			mu.Unlock()
		}(i, path)
	}

	wg.Wait()
	return results
}
