// Package schema declares the raw input schemas and decodes generic parsed
// records into them.
//
// The source JSON is schemaless; this package is the boundary where dynamic
// typing ends. Every downstream stage works with these structs, so a record
// that fails structural decoding never reaches the table builders.
package schema

import "time"

// SongRecord is one document from the song catalog tree.
type SongRecord struct {
	SongID          string
	Title           string
	ArtistID        string
	ArtistName      string
	ArtistLocation  string
	ArtistLatitude  *float64
	ArtistLongitude *float64
	Year            int32
	Duration        float64
}

// LogEvent is one document from the user activity log tree. Only events
// with Page == PageNextSong represent a playback; all events still carry
// user profile fields.
type LogEvent struct {
	UserID    string
	FirstName string
	LastName  string
	Gender    string
	Level     string
	Song      string
	Artist    string
	Length    float64
	Page      string
	TS        int64 // epoch milliseconds
	SessionID int64
	Location  string
	UserAgent string
}

// PageNextSong is the page value marking a playback event.
const PageNextSong = "NextSong"

// IsPlayback reports whether the event is a song playback.
func (e LogEvent) IsPlayback() bool { return e.Page == PageNextSong }

// Time converts the epoch-millisecond event timestamp to UTC.
func (e LogEvent) Time() time.Time { return time.UnixMilli(e.TS).UTC() }
