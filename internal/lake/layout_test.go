package lake

import (
	"testing"
	"time"

	"lakeetl/internal/star"
)

func TestSongPartition(t *testing.T) {
	got := songPartition(star.Song{SongID: "S1", ArtistID: "ARJIE2Y", Year: 1982})
	if got != "year=1982/artist_id=ARJIE2Y" {
		t.Errorf("songPartition = %q", got)
	}
}

func TestSongPartitionUnknownYear(t *testing.T) {
	got := songPartition(star.Song{SongID: "S1", ArtistID: "A1", Year: 0})
	if got != "year=0/artist_id=A1" {
		t.Errorf("songPartition = %q", got)
	}
}

func TestTimePartition(t *testing.T) {
	row := star.TimeRow{
		StartTime: time.Date(2018, 11, 15, 0, 0, 0, 0, time.UTC),
		Year:      2018, Month: 11,
	}
	if got := timePartition(row); got != "year=2018/month=11" {
		t.Errorf("timePartition = %q", got)
	}
}

func TestPlayPartition(t *testing.T) {
	row := star.SongPlay{Year: 2018, Month: 3}
	if got := playPartition(row); got != "year=2018/month=3" {
		t.Errorf("playPartition = %q", got)
	}
}

func TestPartValueEscapes(t *testing.T) {
	if got := partValue("a/b=c"); got != "a_b_c" {
		t.Errorf("partValue = %q", got)
	}
	if got := partValue(""); got != "__HIVE_DEFAULT_PARTITION__" {
		t.Errorf("partValue empty = %q", got)
	}
}
