// This file implements the extract stage: listing a source tree, reading its
// objects with a bounded worker pool, and decoding each JSON record into the
// typed raw schema. Malformed records are counted and skipped, never fatal.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"lakeetl/internal/datasource"
	jsonparser "lakeetl/internal/parser/json"
	"lakeetl/internal/schema"
	"lakeetl/pkg/records"
)

// DefaultFetchWorkers bounds concurrent object reads when the pipeline does
// not configure runtime.fetch_workers.
const DefaultFetchWorkers = 4

// extractSongs reads every object in the catalog tree and decodes it into
// SongRecords. Malformed records are counted on stats and skipped.
func extractSongs(ctx context.Context, store datasource.ObjectStore, workers int, stats *counters, agg *errAgg) ([]schema.SongRecord, error) {
	var (
		mu  sync.Mutex
		out []schema.SongRecord
	)
	err := forEachObject(ctx, store, workers, &stats.songObjects, func(name string, recs []records.Record) {
		rows := make([]schema.SongRecord, 0, len(recs))
		for _, rec := range recs {
			s, err := schema.DecodeSong(rec)
			if err != nil {
				stats.malformed.Add(1)
				agg.add(fmt.Sprintf("%s: %v", name, err))
				continue
			}
			rows = append(rows, s)
		}
		mu.Lock()
		out = append(out, rows...)
		mu.Unlock()
		stats.songRecords.Add(int64(len(rows)))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// extractLogs reads every object in the activity tree and decodes it into
// LogEvents.
func extractLogs(ctx context.Context, store datasource.ObjectStore, workers int, stats *counters, agg *errAgg) ([]schema.LogEvent, error) {
	var (
		mu  sync.Mutex
		out []schema.LogEvent
	)
	err := forEachObject(ctx, store, workers, &stats.logObjects, func(name string, recs []records.Record) {
		rows := make([]schema.LogEvent, 0, len(recs))
		for _, rec := range recs {
			e, err := schema.DecodeLog(rec)
			if err != nil {
				stats.malformed.Add(1)
				agg.add(fmt.Sprintf("%s: %v", name, err))
				continue
			}
			rows = append(rows, e)
		}
		mu.Lock()
		out = append(out, rows...)
		mu.Unlock()
		stats.logRecords.Add(int64(len(rows)))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forEachObject lists the store once and fans the objects out to a worker
// pool. Each object is fully read and parsed before handle is called with
// its records. The first read or parse failure cancels the remaining
// workers and is returned.
//
// Result order does not matter downstream: every table builder is a pure
// function of its full input relation, so worker interleaving cannot change
// the output tables.
func forEachObject(
	ctx context.Context,
	store datasource.ObjectStore,
	workers int,
	objectCount *atomic.Int64,
	handle func(name string, recs []records.Record),
) error {
	objects, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list objects: %w", err)
	}
	// Stable processing order keeps run logs reproducible.
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name() < objects[j].Name() })

	if workers <= 0 {
		workers = DefaultFetchWorkers
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, obj := range objects {
		obj := obj
		g.Go(func() error {
			recs, err := readObject(ctx, obj)
			if err != nil {
				return err
			}
			objectCount.Add(1)
			handle(obj.Name(), recs)
			return nil
		})
	}
	return g.Wait()
}

// readObject opens one object and parses every JSON record in it.
func readObject(ctx context.Context, obj datasource.Object) ([]records.Record, error) {
	rc, err := obj.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", obj.Name(), err)
	}
	defer rc.Close()

	recs, err := jsonparser.DecodeAll(rc, jsonparser.Options{AllowArrays: true})
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", obj.Name(), err)
	}
	return recs, nil
}
