// Package lake persists the star schema as a directory tree of parquet
// files with Hive-style partition paths (e.g. year=2018/month=11).
//
// Partition keys follow the expected filter predicates of analytical
// queries: songs by (year, artist_id), time and song_plays by (year,
// month); artists and users are small full-scan dimensions and stay
// unpartitioned.
package lake

import (
	"fmt"
	"path"
	"strings"

	"lakeetl/internal/star"
)

// Table directory names under the output root.
const (
	SongsTable     = "songs"
	ArtistsTable   = "artists"
	UsersTable     = "users"
	TimeTable      = "time"
	SongPlaysTable = "song_plays"
)

// pathSafe keeps partition values usable as directory names. Natural keys
// in the catalog are alphanumeric; this only guards against surprises.
var pathSafe = strings.NewReplacer("/", "_", "\\", "_", "=", "_", "\x00", "_")

func partValue(v string) string {
	if v == "" {
		return "__HIVE_DEFAULT_PARTITION__"
	}
	return pathSafe.Replace(v)
}

// songPartition returns the relative partition path for a songs row.
func songPartition(s star.Song) string {
	return path.Join(
		fmt.Sprintf("year=%d", s.Year),
		"artist_id="+partValue(s.ArtistID),
	)
}

// timePartition returns the relative partition path for a time row.
func timePartition(t star.TimeRow) string {
	return path.Join(
		fmt.Sprintf("year=%d", t.Year),
		fmt.Sprintf("month=%d", t.Month),
	)
}

// playPartition returns the relative partition path for a song_plays row.
// Year and month are carried on the row, derived from start_time.
func playPartition(p star.SongPlay) string {
	return path.Join(
		fmt.Sprintf("year=%d", p.Year),
		fmt.Sprintf("month=%d", p.Month),
	)
}
