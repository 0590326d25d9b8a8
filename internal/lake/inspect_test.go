package lake

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lakeetl/internal/star"
)

func mustMkdir(t *testing.T, root, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestInspectReportsTablesAndPartitions(t *testing.T) {
	root := t.TempDir()
	nov := time.Date(2018, 11, 15, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2018, 12, 1, 0, 0, 0, 0, time.UTC)

	tables := star.Tables{
		Songs: []star.Song{
			{SongID: "S1", ArtistID: "A1", Year: 2018},
		},
		Time: []star.TimeRow{
			{StartTime: nov, Year: 2018, Month: 11, Day: 15, Week: 46, Weekday: 4},
			{StartTime: dec, Year: 2018, Month: 12, Day: 1, Week: 48, Weekday: 6},
		},
	}
	if err := NewWriter(root).WriteAll(context.Background(), tables); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	reports, err := Inspect(root)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(reports) != 5 {
		t.Fatalf("tables reported = %d, want 5", len(reports))
	}

	byName := map[string]TableReport{}
	for _, r := range reports {
		byName[r.Table] = r
	}

	if r := byName[TimeTable]; r.Rows != 2 || len(r.Partitions) != 2 {
		t.Errorf("time report = %+v, want 2 rows in 2 partitions", r)
	} else {
		if r.Partitions[0].Path != "year=2018/month=11" || r.Partitions[0].Rows != 1 {
			t.Errorf("first time partition = %+v", r.Partitions[0])
		}
	}
	if r := byName[SongsTable]; r.Rows != 1 || r.Files != 1 {
		t.Errorf("songs report = %+v", r)
	}
	// Empty tables still appear, with no rows or partitions.
	if r := byName[UsersTable]; r.Rows != 0 || len(r.Partitions) != 0 {
		t.Errorf("users report = %+v", r)
	}
}

func TestInspectSkipsParkedDirs(t *testing.T) {
	root := t.TempDir()
	if err := NewWriter(root).WriteAll(context.Background(), star.Tables{}); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	// Simulate a crashed writer leaving transient directories around.
	for _, dir := range []string{".staging.songs", "songs.previous"} {
		mustMkdir(t, root, dir)
	}

	reports, err := Inspect(root)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	for _, r := range reports {
		if r.Table == ".staging.songs" || r.Table == "songs.previous" {
			t.Errorf("transient dir reported as table: %q", r.Table)
		}
	}
	if len(reports) != 5 {
		t.Errorf("tables reported = %d, want 5", len(reports))
	}
}
