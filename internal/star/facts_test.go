package star

import (
	"testing"
	"time"

	"lakeetl/internal/schema"
)

func fixtureDims() ([]Song, []Artist) {
	songs := []Song{
		{SongID: "S1", Title: "Alpha", ArtistID: "A1", Year: 1982, Duration: 200.5},
		{SongID: "S2", Title: "Beta", ArtistID: "A2", Year: 1990, Duration: 150},
	}
	artists := []Artist{
		{ArtistID: "A1", Name: "Band"},
		{ArtistID: "A2", Name: "Duo"},
	}
	return songs, artists
}

func TestBuildSongPlaysResolvesForeignKeys(t *testing.T) {
	songs, artists := fixtureDims()
	events := []schema.LogEvent{
		play("26", "paid", "Alpha", "Band", 200.5, 1542241826796, 583),
	}
	got := BuildSongPlays(events, songs, artists)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	row := got[0]
	if row.SongID == nil || *row.SongID != "S1" {
		t.Errorf("song_id = %v, want S1", row.SongID)
	}
	if row.ArtistID == nil || *row.ArtistID != "A1" {
		t.Errorf("artist_id = %v, want A1", row.ArtistID)
	}
	if row.UserID != "26" || row.Level != "paid" || row.SessionID != 583 {
		t.Errorf("copied attributes wrong: %+v", row)
	}
	if row.StartTime != time.UnixMilli(1542241826796).UTC() {
		t.Errorf("start_time = %v", row.StartTime)
	}
	if row.Year != 2018 || row.Month != 11 {
		t.Errorf("partition fields = %d/%d", row.Year, row.Month)
	}
}

func TestBuildSongPlaysUnresolvedMatchKeepsRow(t *testing.T) {
	songs, artists := fixtureDims()
	events := []schema.LogEvent{
		play("26", "free", "Unknown Song", "Unknown Artist", 123.4, 1000, 1),
	}
	got := BuildSongPlays(events, songs, artists)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1 (unmatched events must not be dropped)", len(got))
	}
	if got[0].SongID != nil || got[0].ArtistID != nil {
		t.Errorf("foreign keys = %v/%v, want nil/nil", got[0].SongID, got[0].ArtistID)
	}
}

func TestBuildSongPlaysRequiresAllThreePredicates(t *testing.T) {
	songs, artists := fixtureDims()
	cases := map[string]schema.LogEvent{
		"wrong title":    play("1", "free", "Alphaa", "Band", 200.5, 1000, 1),
		"wrong artist":   play("1", "free", "Alpha", "Bandit", 200.5, 1000, 1),
		"wrong duration": play("1", "free", "Alpha", "Band", 200.0, 1000, 1),
	}
	for name, e := range cases {
		got := BuildSongPlays([]schema.LogEvent{e}, songs, artists)
		if len(got) != 1 {
			t.Fatalf("%s: got %d rows", name, len(got))
		}
		if got[0].SongID != nil {
			t.Errorf("%s: matched, want unresolved", name)
		}
	}
}

func TestBuildSongPlaysCompleteness(t *testing.T) {
	songs, artists := fixtureDims()
	events := []schema.LogEvent{
		play("1", "free", "Alpha", "Band", 200.5, 1000, 1),
		play("2", "free", "nope", "nope", 1, 2000, 2),
		{UserID: "1", Page: "Home", TS: 3000}, // not a playback
		play("3", "paid", "Beta", "Duo", 150, 4000, 3),
	}
	got := BuildSongPlays(events, songs, artists)
	if len(got) != 3 {
		t.Fatalf("got %d rows, want one per NextSong event (3)", len(got))
	}
}

func TestBuildSongPlaysSurrogateIDs(t *testing.T) {
	songs, artists := fixtureDims()
	// Same session, same millisecond: ordinal must keep ids distinct.
	events := []schema.LogEvent{
		play("1", "free", "Alpha", "Band", 200.5, 1000, 7),
		play("1", "free", "Beta", "Duo", 150, 1000, 7),
		play("2", "free", "Alpha", "Band", 200.5, 2000, 8),
	}
	first := BuildSongPlays(events, songs, artists)
	ids := make(map[int64]struct{})
	for _, p := range first {
		if _, dup := ids[p.SongplayID]; dup {
			t.Fatalf("duplicate songplay_id %d", p.SongplayID)
		}
		ids[p.SongplayID] = struct{}{}
	}

	// Re-running on a permuted input assigns the same id set.
	permuted := []schema.LogEvent{events[2], events[0], events[1]}
	second := BuildSongPlays(permuted, songs, artists)
	if len(second) != len(first) {
		t.Fatalf("rerun produced %d rows, want %d", len(second), len(first))
	}
	for _, p := range second {
		if _, ok := ids[p.SongplayID]; !ok {
			t.Errorf("rerun id %d not in first run", p.SongplayID)
		}
	}
}

func TestBuildSongPlaysEmptyDimensions(t *testing.T) {
	events := []schema.LogEvent{play("1", "free", "Alpha", "Band", 200.5, 1000, 1)}
	got := BuildSongPlays(events, nil, nil)
	if len(got) != 1 || got[0].SongID != nil {
		t.Fatalf("got %v, want one unresolved row", got)
	}
}

func TestVerifyPassesOnBuiltTables(t *testing.T) {
	catalog := []schema.SongRecord{
		song("S1", "Alpha", "A1", "Band", 1982, 200.5),
		song("S2", "Beta", "A2", "Duo", 1990, 150),
	}
	events := []schema.LogEvent{
		play("1", "free", "Alpha", "Band", 200.5, 1000, 1),
		play("2", "free", "nope", "nope", 1, 2000, 2),
	}
	tables := Tables{
		Songs:   BuildSongs(catalog),
		Artists: BuildArtists(catalog),
		Users:   BuildUsers(events),
		Time:    BuildTime(events),
	}
	tables.SongPlays = BuildSongPlays(events, tables.Songs, tables.Artists)
	if err := Verify(tables); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyCatchesDuplicateKey(t *testing.T) {
	tables := Tables{Songs: []Song{{SongID: "S1"}, {SongID: "S1"}}}
	if err := Verify(tables); err == nil {
		t.Fatal("Verify accepted duplicate song_id")
	}
}

func TestVerifyCatchesDanglingReference(t *testing.T) {
	missing := "S9"
	tables := Tables{
		Time: []TimeRow{newTimeRow(time.UnixMilli(1000).UTC())},
		SongPlays: []SongPlay{{
			SongplayID: 1,
			StartTime:  time.UnixMilli(1000).UTC(),
			SongID:     &missing,
		}},
	}
	if err := Verify(tables); err == nil {
		t.Fatal("Verify accepted dangling song_id")
	}
}
