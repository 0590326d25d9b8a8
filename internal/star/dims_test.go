package star

import (
	"reflect"
	"testing"
	"time"

	"lakeetl/internal/schema"
)

func song(id, title, artistID, artistName string, year int32, dur float64) schema.SongRecord {
	return schema.SongRecord{
		SongID:     id,
		Title:      title,
		ArtistID:   artistID,
		ArtistName: artistName,
		Year:       year,
		Duration:   dur,
	}
}

func play(userID, level, songTitle, artistName string, length float64, ts, session int64) schema.LogEvent {
	return schema.LogEvent{
		UserID:    userID,
		Level:     level,
		Song:      songTitle,
		Artist:    artistName,
		Length:    length,
		Page:      schema.PageNextSong,
		TS:        ts,
		SessionID: session,
	}
}

func TestBuildSongsDeduplicates(t *testing.T) {
	catalog := []schema.SongRecord{
		song("S1", "Alpha", "A1", "Band", 1982, 200.5),
		song("S1", "Alpha", "A1", "Band", 1982, 200.5),
		song("S2", "Beta", "A1", "Band", 0, 100),
	}
	got := BuildSongs(catalog)
	if len(got) != 2 {
		t.Fatalf("got %d songs, want 2", len(got))
	}
	if got[0].SongID != "S1" || got[1].SongID != "S2" {
		t.Errorf("order = %s,%s", got[0].SongID, got[1].SongID)
	}
}

func TestBuildSongsMostCompleteWins(t *testing.T) {
	sparse := song("S1", "Alpha", "A1", "Band", 0, 0)
	full := song("S1", "Alpha", "A1", "Band", 1982, 200.5)

	forward := BuildSongs([]schema.SongRecord{sparse, full})
	backward := BuildSongs([]schema.SongRecord{full, sparse})
	if !reflect.DeepEqual(forward, backward) {
		t.Fatalf("winner depends on input order: %v vs %v", forward, backward)
	}
	if forward[0].Year != 1982 {
		t.Errorf("year = %d, want the complete row to win", forward[0].Year)
	}
}

func TestBuildArtistsDeduplicates(t *testing.T) {
	lat, lon := 35.1, -90.0
	withCoords := schema.SongRecord{
		SongID: "S1", ArtistID: "A1", ArtistName: "Band",
		ArtistLocation: "Memphis, TN", ArtistLatitude: &lat, ArtistLongitude: &lon,
	}
	withoutCoords := schema.SongRecord{SongID: "S2", ArtistID: "A1", ArtistName: "Band"}

	for name, catalog := range map[string][]schema.SongRecord{
		"coords first": {withCoords, withoutCoords},
		"coords last":  {withoutCoords, withCoords},
	} {
		got := BuildArtists(catalog)
		if len(got) != 1 {
			t.Fatalf("%s: got %d artists, want 1", name, len(got))
		}
		if got[0].Latitude == nil || *got[0].Latitude != lat {
			t.Errorf("%s: latitude = %v, want the complete row to win", name, got[0].Latitude)
		}
	}
}

func TestBuildUsersLatestLevelWins(t *testing.T) {
	events := []schema.LogEvent{
		{UserID: "42", FirstName: "Kim", LastName: "Lee", Gender: "F", Level: "free", Page: "Home", TS: 1000},
		{UserID: "42", FirstName: "Kim", LastName: "Lee", Gender: "F", Level: "paid", Page: "Upgrade", TS: 5000},
	}
	for name, in := range map[string][]schema.LogEvent{
		"chronological": {events[0], events[1]},
		"reversed":      {events[1], events[0]},
	} {
		got := BuildUsers(in)
		if len(got) != 1 {
			t.Fatalf("%s: got %d users, want 1", name, len(got))
		}
		if got[0].Level != "paid" {
			t.Errorf("%s: level = %q, want paid", name, got[0].Level)
		}
	}
}

func TestBuildUsersObservesNonPlaybackEvents(t *testing.T) {
	// Profile visible on a Home page view only; still one users row.
	got := BuildUsers([]schema.LogEvent{
		{UserID: "7", FirstName: "Sam", Level: "free", Page: "Home", TS: 100},
	})
	if len(got) != 1 || got[0].FirstName != "Sam" {
		t.Fatalf("got %v", got)
	}
}

func TestBuildUsersSkipsAnonymous(t *testing.T) {
	got := BuildUsers([]schema.LogEvent{
		{UserID: "", Page: "Home", TS: 100},
		{UserID: "9", Level: "free", Page: "Home", TS: 100},
	})
	if len(got) != 1 || got[0].UserID != "9" {
		t.Fatalf("got %v", got)
	}
}

func TestBuildTimeDerivation(t *testing.T) {
	// 2023-03-15 14:30:00 UTC, a Wednesday in ISO week 11.
	ts := time.Date(2023, 3, 15, 14, 30, 0, 0, time.UTC).UnixMilli()
	got := BuildTime([]schema.LogEvent{play("1", "free", "x", "y", 1, ts, 10)})
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	row := got[0]
	want := TimeRow{
		StartTime: time.UnixMilli(ts).UTC(),
		Hour:      14, Day: 15, Week: 11, Month: 3, Year: 2023,
		Weekday: int32(time.Wednesday),
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %+v, want %+v", row, want)
	}
}

func TestBuildTimeDistinctTimestamps(t *testing.T) {
	// Two playbacks on the same millisecond, one on another; non-playback
	// events contribute nothing.
	events := []schema.LogEvent{
		play("1", "free", "x", "y", 1, 1000, 10),
		play("2", "free", "x", "y", 1, 1000, 11),
		play("1", "free", "x", "y", 1, 2000, 10),
		{UserID: "1", Page: "Home", TS: 3000},
	}
	got := BuildTime(events)
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if !got[0].StartTime.Before(got[1].StartTime) {
		t.Error("rows not sorted by start_time")
	}
}

func TestBuildersTolerateEmptyInput(t *testing.T) {
	if got := BuildSongs(nil); len(got) != 0 {
		t.Errorf("BuildSongs(nil) = %v", got)
	}
	if got := BuildArtists(nil); len(got) != 0 {
		t.Errorf("BuildArtists(nil) = %v", got)
	}
	if got := BuildUsers(nil); len(got) != 0 {
		t.Errorf("BuildUsers(nil) = %v", got)
	}
	if got := BuildTime(nil); len(got) != 0 {
		t.Errorf("BuildTime(nil) = %v", got)
	}
}

func TestBuildDimensionsIdempotent(t *testing.T) {
	catalog := []schema.SongRecord{
		song("S1", "Alpha", "A1", "Band", 1982, 200.5),
		song("S2", "Beta", "A2", "Duo", 1990, 150),
		song("S2", "Beta", "A2", "Duo", 0, 150),
	}
	shuffled := []schema.SongRecord{catalog[2], catalog[0], catalog[1]}

	if !reflect.DeepEqual(BuildSongs(catalog), BuildSongs(shuffled)) {
		t.Error("BuildSongs not permutation-invariant")
	}
	if !reflect.DeepEqual(BuildArtists(catalog), BuildArtists(shuffled)) {
		t.Error("BuildArtists not permutation-invariant")
	}
}
