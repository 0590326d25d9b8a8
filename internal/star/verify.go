package star

import "fmt"

// Verify checks the structural invariants of a built star schema:
// unique keys in every table and referential soundness of the fact rows.
//
// A violation means a builder defect, not bad input — unmatched events and
// empty inputs are absorbed upstream — so callers treat a non-nil error as
// fatal for the run.
func Verify(t Tables) error {
	songIDs := make(map[string]struct{}, len(t.Songs))
	for _, s := range t.Songs {
		if _, dup := songIDs[s.SongID]; dup {
			return fmt.Errorf("star: duplicate song_id %q", s.SongID)
		}
		songIDs[s.SongID] = struct{}{}
	}

	artistIDs := make(map[string]struct{}, len(t.Artists))
	for _, a := range t.Artists {
		if _, dup := artistIDs[a.ArtistID]; dup {
			return fmt.Errorf("star: duplicate artist_id %q", a.ArtistID)
		}
		artistIDs[a.ArtistID] = struct{}{}
	}

	userIDs := make(map[string]struct{}, len(t.Users))
	for _, u := range t.Users {
		if _, dup := userIDs[u.UserID]; dup {
			return fmt.Errorf("star: duplicate user_id %q", u.UserID)
		}
		userIDs[u.UserID] = struct{}{}
	}

	times := make(map[int64]struct{}, len(t.Time))
	for _, tr := range t.Time {
		ms := tr.StartTime.UnixMilli()
		if _, dup := times[ms]; dup {
			return fmt.Errorf("star: duplicate time start_time %v", tr.StartTime)
		}
		times[ms] = struct{}{}
	}

	playIDs := make(map[int64]struct{}, len(t.SongPlays))
	for _, p := range t.SongPlays {
		if _, dup := playIDs[p.SongplayID]; dup {
			return fmt.Errorf("star: duplicate songplay_id %d", p.SongplayID)
		}
		playIDs[p.SongplayID] = struct{}{}

		if p.SongID != nil {
			if _, ok := songIDs[*p.SongID]; !ok {
				return fmt.Errorf("star: songplay %d references unknown song_id %q", p.SongplayID, *p.SongID)
			}
		}
		if p.ArtistID != nil {
			if _, ok := artistIDs[*p.ArtistID]; !ok {
				return fmt.Errorf("star: songplay %d references unknown artist_id %q", p.SongplayID, *p.ArtistID)
			}
		}
		if _, ok := times[p.StartTime.UnixMilli()]; !ok {
			return fmt.Errorf("star: songplay %d start_time %v missing from time dimension", p.SongplayID, p.StartTime)
		}
	}
	return nil
}
