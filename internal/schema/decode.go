package schema

import (
	"errors"
	"fmt"

	"lakeetl/pkg/records"
)

// ErrMalformed marks records that do not satisfy the declared schema.
// Callers count and skip these; they are never fatal for a run.
var ErrMalformed = errors.New("malformed record")

// DecodeSong converts a parsed catalog record into a SongRecord.
//
// song_id and artist_id are the natural keys of the derived dimensions and
// must be present; every other field tolerates absence. Latitude and
// longitude stay nil when the source has no coordinates (JSON null).
func DecodeSong(rec records.Record) (SongRecord, error) {
	s := SongRecord{
		SongID:         rec.String("song_id"),
		Title:          rec.String("title"),
		ArtistID:       rec.String("artist_id"),
		ArtistName:     rec.String("artist_name"),
		ArtistLocation: rec.String("artist_location"),
	}
	if s.SongID == "" {
		return SongRecord{}, fmt.Errorf("%w: missing song_id", ErrMalformed)
	}
	if s.ArtistID == "" {
		return SongRecord{}, fmt.Errorf("%w: song %s: missing artist_id", ErrMalformed, s.SongID)
	}
	if lat, ok := rec.Float("artist_latitude"); ok {
		s.ArtistLatitude = &lat
	}
	if lon, ok := rec.Float("artist_longitude"); ok {
		s.ArtistLongitude = &lon
	}
	// The catalog serializes year as a number; 0 means unknown.
	if y, ok := rec.Int("year"); ok {
		s.Year = int32(y)
	}
	if d, ok := rec.Float("duration"); ok {
		s.Duration = d
	}
	return s, nil
}

// DecodeLog converts a parsed activity record into a LogEvent.
//
// ts is required: without a timestamp the event can join neither the time
// dimension nor the fact table. user_id may legitimately be empty
// (logged-out traffic), so it is not validated here.
func DecodeLog(rec records.Record) (LogEvent, error) {
	ts, ok := rec.Int("ts")
	if !ok || ts <= 0 {
		return LogEvent{}, fmt.Errorf("%w: missing or invalid ts", ErrMalformed)
	}
	e := LogEvent{
		UserID:    rec.String("userId"),
		FirstName: rec.String("firstName"),
		LastName:  rec.String("lastName"),
		Gender:    rec.String("gender"),
		Level:     rec.String("level"),
		Song:      rec.String("song"),
		Artist:    rec.String("artist"),
		Page:      rec.String("page"),
		TS:        ts,
		Location:  rec.String("location"),
		UserAgent: rec.String("userAgent"),
	}
	if l, ok := rec.Float("length"); ok {
		e.Length = l
	}
	if sid, ok := rec.Int("sessionId"); ok {
		e.SessionID = sid
	}
	return e, nil
}
