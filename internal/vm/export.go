package vm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rtm0/precip/internal/precip"
)

// Inserter accepts one batch of observations.
type Inserter interface {
	Insert(ctx context.Context, points []precip.ObservationPoint) error
}

// Export splits points into batches of recsPerInsert and inserts them with
// up to concurrency requests in flight. Failed batches are logged and
// reported together; the others are still sent. It returns the number of
// points in batches that were accepted.
func Export(ctx context.Context, logger *slog.Logger, ins Inserter, points []precip.ObservationPoint, concurrency, recsPerInsert int) (int, error) {
	batchCh := make(chan []precip.ObservationPoint)
	progressCh := make(chan int)
	errCh := make(chan error, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var errs []error
			for batch := range batchCh {
				if err := ins.Insert(ctx, batch); err != nil {
					logger.Error("Could not insert batch", "first", batch[0].Period.String(), "size", len(batch), "err", err)
					errs = append(errs, err)
					continue
				}
				progressCh <- len(batch)
			}
			errCh <- errors.Join(errs...)
		}()
	}

	done := make(chan int)
	go func() {
		var inserted int
		total := float64(len(points))
		start := time.Now()
		for n := range progressCh {
			inserted += n
			percent := fmt.Sprintf("%.2f%%", 100*float64(inserted)/total)
			duration := time.Since(start).Round(time.Second)
			logger.Info("progress", "inserted", percent, "in", duration)
		}
		done <- inserted
	}()

	n := len(points)
	for begin := 0; begin < n; begin += recsPerInsert {
		limit := min(begin+recsPerInsert, n)
		batchCh <- points[begin:limit]
	}
	close(batchCh)
	wg.Wait()
	close(progressCh)
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return <-done, errors.Join(errs...)
}
