// Package rescan periodically re-runs scans for a fixed set of brands so
// known imposters get their last-seen data refreshed and new ones surface.
package rescan

import (
	"context"
	"log"
	"sync"
	"time"

	"brandguard/internal/ports"
)

// Triggerer runs one scan to completion.
type Triggerer interface {
	Trigger(ctx context.Context, req ports.ScanRequest) (ports.ScanSummary, error)
}

// Run starts a dispatcher that queues every brand once per interval and
// workers that scan them. It returns once ctx is done and in-flight scans have
// finished. A brand still queued from the previous tick is not queued again.
func Run(ctx context.Context, scanner Triggerer, brandIDs []string, concurrency int, interval time.Duration) {
	if concurrency < 1 || interval <= 0 || len(brandIDs) == 0 {
		return
	}
	jobsCh := make(chan string, len(brandIDs))
	var (
		mu      sync.Mutex
		pending = make(map[string]bool, len(brandIDs))
	)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for _, id := range brandIDs {
					mu.Lock()
					skip := pending[id]
					pending[id] = true
					mu.Unlock()
					if skip {
						continue
					}
					jobsCh <- id
				}
			}
		}
	}()

	// workers
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for id := range jobsCh {
				mu.Lock()
				delete(pending, id)
				mu.Unlock()
				if ctx.Err() != nil {
					continue
				}
				sum, err := scanner.Trigger(ctx, ports.ScanRequest{BrandID: id})
				if err != nil {
					log.Printf("[rescan] worker %d: brand %s: %v", idx, id, err)
					continue
				}
				log.Printf("[rescan] worker %d: brand %s scan %s %s (%d candidates, %d new)",
					idx, id, sum.Scan.ID, sum.Scan.Status, len(sum.Candidates), sum.Scan.NewImposters)
			}
		}(i)
	}
	wg.Wait()
}
