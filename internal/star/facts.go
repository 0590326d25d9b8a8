package star

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/unicode/norm"

	"lakeetl/internal/schema"
)

// canon brings a string to NFC form so that catalog and log spellings of
// the same title compare equal byte-for-byte. Equality stays exact; no
// case folding or trimming happens here.
func canon(s string) string { return norm.NFC.String(s) }

// matchKey builds the composite lookup key for the song/artist resolution:
// exact equality on title, artist name, and duration.
func matchKey(title, artist string, duration float64) string {
	return canon(title) + "\x1f" + canon(artist) + "\x1f" +
		strconv.FormatFloat(duration, 'f', -1, 64)
}

// foreignKeys is the resolved pair for one (title, artist, duration) triple.
type foreignKeys struct {
	songID   string
	artistID string
}

// buildLookup indexes songs joined with their artist's name. When two
// catalog rows carry the same triple, the smallest song_id wins so the
// resolution is deterministic.
func buildLookup(songs []Song, artists []Artist) map[string]foreignKeys {
	nameByArtist := make(map[string]string, len(artists))
	for _, a := range artists {
		nameByArtist[a.ArtistID] = a.Name
	}

	lookup := make(map[string]foreignKeys, len(songs))
	for _, s := range songs {
		name, ok := nameByArtist[s.ArtistID]
		if !ok {
			continue
		}
		key := matchKey(s.Title, name, s.Duration)
		if cur, dup := lookup[key]; dup && cur.songID <= s.SongID {
			continue
		}
		lookup[key] = foreignKeys{songID: s.SongID, artistID: s.ArtistID}
	}
	return lookup
}

// BuildSongPlays derives the fact table: one row per playback event, in
// (ts, session_id) order.
//
// Foreign keys resolve by exact equality of the event's song title, artist
// name, and length against the songs/artists join. An unmatched event
// keeps its row with nil song_id/artist_id — playbacks are never dropped,
// whatever the join outcome.
//
// The surrogate id is a hash of (session_id, ts, ordinal-within-pair), not
// a shared counter, so id assignment is reproducible and safe under
// partitioned execution. Ordinal disambiguates the rare case of two
// playbacks in the same session on the same millisecond.
func BuildSongPlays(events []schema.LogEvent, songs []Song, artists []Artist) []SongPlay {
	lookup := buildLookup(songs, artists)

	plays := make([]schema.LogEvent, 0, len(events))
	for _, e := range events {
		if e.IsPlayback() {
			plays = append(plays, e)
		}
	}
	sort.SliceStable(plays, func(i, j int) bool {
		if plays[i].TS != plays[j].TS {
			return plays[i].TS < plays[j].TS
		}
		return plays[i].SessionID < plays[j].SessionID
	})

	ordinals := make(map[[2]int64]int, len(plays))
	out := make([]SongPlay, 0, len(plays))
	for _, e := range plays {
		pair := [2]int64{e.SessionID, e.TS}
		n := ordinals[pair]
		ordinals[pair] = n + 1

		row := SongPlay{
			SongplayID: surrogateID(e.SessionID, e.TS, n),
			StartTime:  e.Time(),
			UserID:     e.UserID,
			Level:      e.Level,
			SessionID:  e.SessionID,
			Location:   e.Location,
			UserAgent:  e.UserAgent,
			Year:       int32(e.Time().Year()),
			Month:      int32(e.Time().Month()),
		}
		if fk, ok := lookup[matchKey(e.Song, e.Artist, e.Length)]; ok {
			songID, artistID := fk.songID, fk.artistID
			row.SongID = &songID
			row.ArtistID = &artistID
		}
		out = append(out, row)
	}
	return out
}

func surrogateID(sessionID, ts int64, ordinal int) int64 {
	return int64(xxh3.HashString(fmt.Sprintf("%d\x1f%d\x1f%d", sessionID, ts, ordinal)))
}
