// Package star builds the analytical star schema from decoded raw records:
// four dimension tables (songs, artists, users, time) and the song_plays
// fact table.
//
// Every builder is a pure function over its full input relation. Nothing
// here reads or writes storage, and no builder shares state with another,
// so the four dimensions can be computed concurrently and any builder can
// be re-run on identical input to produce an identical table.
package star

import "time"

// Song is one row of the songs dimension, keyed by the natural song_id.
type Song struct {
	SongID   string  `parquet:"song_id" db:"song_id"`
	Title    string  `parquet:"title" db:"title"`
	ArtistID string  `parquet:"artist_id" db:"artist_id"`
	Year     int32   `parquet:"year" db:"year"`
	Duration float64 `parquet:"duration" db:"duration"`
}

// Artist is one row of the artists dimension, keyed by artist_id.
// Coordinates stay nil when the catalog has none for the artist.
type Artist struct {
	ArtistID  string   `parquet:"artist_id" db:"artist_id"`
	Name      string   `parquet:"name" db:"name"`
	Location  string   `parquet:"location" db:"location"`
	Latitude  *float64 `parquet:"latitude,optional" db:"latitude"`
	Longitude *float64 `parquet:"longitude,optional" db:"longitude"`
}

// User is one row of the users dimension, keyed by user_id. Level reflects
// the user's most recent event at build time.
type User struct {
	UserID    string `parquet:"user_id" db:"user_id"`
	FirstName string `parquet:"first_name" db:"first_name"`
	LastName  string `parquet:"last_name" db:"last_name"`
	Gender    string `parquet:"gender" db:"gender"`
	Level     string `parquet:"level" db:"level"`
}

// TimeRow is one row of the time dimension: a distinct playback timestamp
// broken out into calendar attributes. Week is the ISO week number and
// Weekday follows Go's convention (0 = Sunday).
type TimeRow struct {
	StartTime time.Time `parquet:"start_time,timestamp(millisecond)" db:"start_time"`
	Hour      int32     `parquet:"hour" db:"hour"`
	Day       int32     `parquet:"day" db:"day"`
	Week      int32     `parquet:"week" db:"week"`
	Month     int32     `parquet:"month" db:"month"`
	Year      int32     `parquet:"year" db:"year"`
	Weekday   int32     `parquet:"weekday" db:"weekday"`
}

// SongPlay is one row of the song_plays fact table: a single playback
// event. SongID and ArtistID are nil when the event did not match the
// catalog. Year and Month duplicate the start_time calendar fields so the
// writer can partition without a join.
type SongPlay struct {
	SongplayID int64     `parquet:"songplay_id" db:"songplay_id"`
	StartTime  time.Time `parquet:"start_time,timestamp(millisecond)" db:"start_time"`
	UserID     string    `parquet:"user_id" db:"user_id"`
	Level      string    `parquet:"level" db:"level"`
	SongID     *string   `parquet:"song_id,optional" db:"song_id"`
	ArtistID   *string   `parquet:"artist_id,optional" db:"artist_id"`
	SessionID  int64     `parquet:"session_id" db:"session_id"`
	Location   string    `parquet:"location" db:"location"`
	UserAgent  string    `parquet:"user_agent" db:"user_agent"`
	Year       int32     `parquet:"year" db:"year"`
	Month      int32     `parquet:"month" db:"month"`
}

// Tables bundles one full build of the star schema.
type Tables struct {
	Songs     []Song
	Artists   []Artist
	Users     []User
	Time      []TimeRow
	SongPlays []SongPlay
}

// newTimeRow derives the calendar attributes of a distinct timestamp.
func newTimeRow(t time.Time) TimeRow {
	_, week := t.ISOWeek()
	return TimeRow{
		StartTime: t,
		Hour:      int32(t.Hour()),
		Day:       int32(t.Day()),
		Week:      int32(week),
		Month:     int32(t.Month()),
		Year:      int32(t.Year()),
		Weekday:   int32(t.Weekday()),
	}
}
