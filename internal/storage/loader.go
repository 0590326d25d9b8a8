// This file implements a generic, batched loader that feeds rows to a
// backend's bulk-insert primitive (CopyFn) in fixed-size batches.
//
// Logging: on every successful flush, a concise progress line is emitted
// with running totals and instantaneous rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations
// should insert the provided rows (aligned to 'columns' order) and return
// the number of rows reported as inserted. The function should be safe for
// repeated calls and cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into batches of size batchSize and calls copyFn
// for each non-empty batch. It returns the total number of rows reported by
// copyFn and the first error encountered.
func LoadBatches(
	ctx context.Context,
	table string,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		start       = time.Now()
		lastFlushTS = start
	)

	for off := 0; off < len(rows); off += batchSize {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		end := off + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		n, err := copyFn(ctx, columns, rows[off:end])
		total += n
		if err != nil {
			log.Printf("loader: %s: batch failed after=%d total=%d err=%v", table, n, total, err)
			return total, err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(n) / sinceLast.Seconds()
		}
		log.Printf(
			"loader: %s batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			table, batches, rps, n, total, now.Sub(start).Truncate(time.Millisecond),
		)
		lastFlushTS = now
	}
	return total, nil
}
