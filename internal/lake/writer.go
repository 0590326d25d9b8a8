package lake

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"lakeetl/internal/star"
)

// Writer persists star tables under a local output root, one directory per
// table. Each table write is all-or-nothing: rows go to a staging
// directory first, which replaces the previous table directory in a single
// rename. A failed run leaves the previous output untouched; partitions
// from two runs never interleave.
type Writer struct {
	root string
}

// NewWriter returns a Writer rooted at the output destination.
func NewWriter(root string) *Writer { return &Writer{root: root} }

// WriteAll persists the five tables. Tables are independent directories;
// a failure stops at the first table that cannot be replaced.
func (w *Writer) WriteAll(ctx context.Context, t star.Tables) error {
	if err := writeTable(ctx, w.root, SongsTable, t.Songs, songPartition); err != nil {
		return err
	}
	if err := writeTable(ctx, w.root, ArtistsTable, t.Artists, nil); err != nil {
		return err
	}
	if err := writeTable(ctx, w.root, UsersTable, t.Users, nil); err != nil {
		return err
	}
	if err := writeTable(ctx, w.root, TimeTable, t.Time, timePartition); err != nil {
		return err
	}
	return writeTable(ctx, w.root, SongPlaysTable, t.SongPlays, playPartition)
}

// writeTable stages and swaps in one table. partition maps a row to its
// relative partition path; nil means unpartitioned. An empty row set still
// replaces the table with an empty directory, honoring replace-on-write
// for empty inputs.
func writeTable[T any](ctx context.Context, root, table string, rows []T, partition func(T) string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	target := filepath.Join(root, table)
	staging := filepath.Join(root, ".staging."+table)
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("lake: clear staging for %s: %w", table, err)
	}
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("lake: create staging for %s: %w", table, err)
	}

	groups := make(map[string][]T)
	for _, row := range rows {
		key := ""
		if partition != nil {
			key = partition(row)
		}
		groups[key] = append(groups[key], row)
	}

	for part, group := range groups {
		dir := staging
		if part != "" {
			dir = filepath.Join(staging, filepath.FromSlash(part))
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("lake: create partition %s/%s: %w", table, part, err)
			}
		}
		if err := writeParquet(filepath.Join(dir, "part-00000.parquet"), group); err != nil {
			return fmt.Errorf("lake: write %s/%s: %w", table, part, err)
		}
	}

	if err := swapIn(target, staging); err != nil {
		return fmt.Errorf("lake: replace %s: %w", table, err)
	}
	return nil
}

func writeParquet[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	pw := parquet.NewGenericWriter[T](f)
	if _, err := pw.Write(rows); err != nil {
		f.Close()
		return err
	}
	if err := pw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// swapIn atomically replaces target with staging. The previous output is
// parked next to the target until the new directory is in place, then
// removed; on rename failure the previous output is restored.
func swapIn(target, staging string) error {
	previous := target + ".previous"
	if err := os.RemoveAll(previous); err != nil {
		return err
	}
	hadPrevious := false
	if _, err := os.Stat(target); err == nil {
		hadPrevious = true
		if err := os.Rename(target, previous); err != nil {
			return err
		}
	}
	if err := os.Rename(staging, target); err != nil {
		if hadPrevious {
			_ = os.Rename(previous, target)
		}
		return err
	}
	return os.RemoveAll(previous)
}
