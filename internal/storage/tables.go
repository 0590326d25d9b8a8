package storage

import "lakeetl/internal/star"

// ColType is a backend-neutral column type; each backend maps it to its own
// SQL type in DDL.
type ColType int

const (
	TypeText ColType = iota
	TypeInteger
	TypeBigint
	TypeReal
	TypeTimestamp
)

// Column describes one warehouse column.
type Column struct {
	Name       string
	Type       ColType
	NotNull    bool
	PrimaryKey bool
}

// TableSpec describes one warehouse table.
type TableSpec struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the column order used for loads.
func (t TableSpec) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// StarTables returns the warehouse DDL specs for the five star tables,
// mirroring the parquet schemas.
func StarTables() []TableSpec {
	return []TableSpec{
		{Name: "songs", Columns: []Column{
			{Name: "song_id", Type: TypeText, NotNull: true, PrimaryKey: true},
			{Name: "title", Type: TypeText},
			{Name: "artist_id", Type: TypeText, NotNull: true},
			{Name: "year", Type: TypeInteger},
			{Name: "duration", Type: TypeReal},
		}},
		{Name: "artists", Columns: []Column{
			{Name: "artist_id", Type: TypeText, NotNull: true, PrimaryKey: true},
			{Name: "name", Type: TypeText},
			{Name: "location", Type: TypeText},
			{Name: "latitude", Type: TypeReal},
			{Name: "longitude", Type: TypeReal},
		}},
		{Name: "users", Columns: []Column{
			{Name: "user_id", Type: TypeText, NotNull: true, PrimaryKey: true},
			{Name: "first_name", Type: TypeText},
			{Name: "last_name", Type: TypeText},
			{Name: "gender", Type: TypeText},
			{Name: "level", Type: TypeText},
		}},
		{Name: "time", Columns: []Column{
			{Name: "start_time", Type: TypeTimestamp, NotNull: true, PrimaryKey: true},
			{Name: "hour", Type: TypeInteger},
			{Name: "day", Type: TypeInteger},
			{Name: "week", Type: TypeInteger},
			{Name: "month", Type: TypeInteger},
			{Name: "year", Type: TypeInteger},
			{Name: "weekday", Type: TypeInteger},
		}},
		{Name: "song_plays", Columns: []Column{
			{Name: "songplay_id", Type: TypeBigint, NotNull: true, PrimaryKey: true},
			{Name: "start_time", Type: TypeTimestamp, NotNull: true},
			{Name: "user_id", Type: TypeText},
			{Name: "level", Type: TypeText},
			{Name: "song_id", Type: TypeText},
			{Name: "artist_id", Type: TypeText},
			{Name: "session_id", Type: TypeBigint},
			{Name: "location", Type: TypeText},
			{Name: "user_agent", Type: TypeText},
			{Name: "year", Type: TypeInteger},
			{Name: "month", Type: TypeInteger},
		}},
	}
}

// Rows flattens every star table into load-ready column/row pairs, keyed
// by table name and aligned with StarTables column order.
func Rows(t star.Tables) map[string][][]any {
	out := make(map[string][][]any, 5)

	songs := make([][]any, len(t.Songs))
	for i, s := range t.Songs {
		songs[i] = []any{s.SongID, s.Title, s.ArtistID, s.Year, s.Duration}
	}
	out["songs"] = songs

	artists := make([][]any, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = []any{a.ArtistID, a.Name, a.Location, a.Latitude, a.Longitude}
	}
	out["artists"] = artists

	users := make([][]any, len(t.Users))
	for i, u := range t.Users {
		users[i] = []any{u.UserID, u.FirstName, u.LastName, u.Gender, u.Level}
	}
	out["users"] = users

	times := make([][]any, len(t.Time))
	for i, tr := range t.Time {
		times[i] = []any{tr.StartTime, tr.Hour, tr.Day, tr.Week, tr.Month, tr.Year, tr.Weekday}
	}
	out["time"] = times

	plays := make([][]any, len(t.SongPlays))
	for i, p := range t.SongPlays {
		plays[i] = []any{
			p.SongplayID, p.StartTime, p.UserID, p.Level,
			p.SongID, p.ArtistID, p.SessionID, p.Location, p.UserAgent,
			p.Year, p.Month,
		}
	}
	out["song_plays"] = plays

	return out
}
