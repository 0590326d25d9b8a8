package star

import (
	"sort"
	"strconv"
	"strings"

	"lakeetl/internal/schema"
)

// Dimension dedup policy: when the same natural key appears more than once,
// the most complete row (most non-empty attributes) wins; ties break by
// comparing a canonical byte encoding of the row. Both criteria are
// order-independent, so the result is identical for any permutation of the
// input — reruns and parallel reads cannot flip the winner.

// encodeFields joins field values into a single comparable key using an
// unlikely separator, with nil mapped to a distinct marker.
func encodeFields(fields ...string) string {
	return strings.Join(fields, "\x1f")
}

func encodeFloatPtr(f *float64) string {
	if f == nil {
		return "\x00"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func encodeFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// pickWinner reports whether candidate should replace current, given their
// completeness scores and canonical encodings.
func pickWinner(candScore, curScore int, candEnc, curEnc string) bool {
	if candScore != curScore {
		return candScore > curScore
	}
	return candEnc > curEnc
}

// BuildSongs projects the catalog onto the songs dimension and
// deduplicates by song_id.
func BuildSongs(catalog []schema.SongRecord) []Song {
	winners := make(map[string]Song, len(catalog))
	encs := make(map[string]string, len(catalog))

	for _, rec := range catalog {
		row := Song{
			SongID:   rec.SongID,
			Title:    rec.Title,
			ArtistID: rec.ArtistID,
			Year:     rec.Year,
			Duration: rec.Duration,
		}
		score := 0
		if row.Title != "" {
			score++
		}
		if row.Year != 0 {
			score++
		}
		if row.Duration != 0 {
			score++
		}
		enc := encodeFields(row.Title, row.ArtistID,
			strconv.Itoa(int(row.Year)), encodeFloat(row.Duration))

		cur, exists := winners[row.SongID]
		if !exists || pickWinner(score, songScore(cur), enc, encs[row.SongID]) {
			winners[row.SongID] = row
			encs[row.SongID] = enc
		}
	}

	out := make([]Song, 0, len(winners))
	for _, row := range winners {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SongID < out[j].SongID })
	return out
}

func songScore(s Song) int {
	score := 0
	if s.Title != "" {
		score++
	}
	if s.Year != 0 {
		score++
	}
	if s.Duration != 0 {
		score++
	}
	return score
}

// BuildArtists projects the catalog onto the artists dimension and
// deduplicates by artist_id. The same artist appears once per song in the
// catalog, often with coordinates on some records and not others, which is
// why the most-complete policy matters here.
func BuildArtists(catalog []schema.SongRecord) []Artist {
	winners := make(map[string]Artist, len(catalog))
	encs := make(map[string]string, len(catalog))

	for _, rec := range catalog {
		row := Artist{
			ArtistID:  rec.ArtistID,
			Name:      rec.ArtistName,
			Location:  rec.ArtistLocation,
			Latitude:  rec.ArtistLatitude,
			Longitude: rec.ArtistLongitude,
		}
		enc := encodeFields(row.Name, row.Location,
			encodeFloatPtr(row.Latitude), encodeFloatPtr(row.Longitude))

		cur, exists := winners[row.ArtistID]
		if !exists || pickWinner(artistScore(row), artistScore(cur), enc, encs[row.ArtistID]) {
			winners[row.ArtistID] = row
			encs[row.ArtistID] = enc
		}
	}

	out := make([]Artist, 0, len(winners))
	for _, row := range winners {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtistID < out[j].ArtistID })
	return out
}

func artistScore(a Artist) int {
	score := 0
	if a.Name != "" {
		score++
	}
	if a.Location != "" {
		score++
	}
	if a.Latitude != nil {
		score++
	}
	if a.Longitude != nil {
		score++
	}
	return score
}

// BuildUsers projects the activity log onto the users dimension and
// deduplicates by user_id, keeping the attribute set of the user's latest
// event. Every event is an eligible observation, not just playbacks: the
// subscription level can change on any page. Events without a user_id
// (logged-out traffic) carry no profile and are skipped.
func BuildUsers(events []schema.LogEvent) []User {
	type slot struct {
		row User
		ts  int64
		enc string
	}
	winners := make(map[string]slot, len(events))

	for _, e := range events {
		if e.UserID == "" {
			continue
		}
		s := slot{
			row: User{
				UserID:    e.UserID,
				FirstName: e.FirstName,
				LastName:  e.LastName,
				Gender:    e.Gender,
				Level:     e.Level,
			},
			ts:  e.TS,
			enc: encodeFields(e.FirstName, e.LastName, e.Gender, e.Level),
		}
		cur, exists := winners[e.UserID]
		switch {
		case !exists:
			winners[e.UserID] = s
		case s.ts > cur.ts:
			winners[e.UserID] = s
		case s.ts == cur.ts && s.enc > cur.enc:
			// Two events on the same millisecond; break the tie on content
			// so the winner does not depend on input order.
			winners[e.UserID] = s
		}
	}

	out := make([]User, 0, len(winners))
	for _, s := range winners {
		out = append(out, s.row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// BuildTime derives the time dimension: one row per distinct playback
// timestamp, regardless of how many events share it. Output is sorted by
// start_time.
func BuildTime(events []schema.LogEvent) []TimeRow {
	seen := make(map[int64]struct{}, len(events))
	var out []TimeRow
	for _, e := range events {
		if !e.IsPlayback() {
			continue
		}
		if _, dup := seen[e.TS]; dup {
			continue
		}
		seen[e.TS] = struct{}{}
		out = append(out, newTimeRow(e.Time()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}
