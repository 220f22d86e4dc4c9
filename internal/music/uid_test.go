package music

import (
	"testing"

	"github.com/google/uuid"

	"github.com/simonhull/musikr/internal/tag"
)

func TestUID_RoundTrip(t *testing.T) {
	mbid := uuid.MustParse("9e107d9d-372b-4b68-8c1d-3542a419d6aa")
	tests := []struct {
		name string
		uid  UID
		want string
	}{
		{"musicbrainz", MusicBrainzUID(ItemSong, mbid), "org.musicbrainz:a10b-9e107d9d-372b-4b68-8c1d-3542a419d6aa"},
		{"auxio", UID{namespace: NamespaceAuxio, item: ItemPlaylist, id: mbid}, "org.oxycblt.auxio:a107-9e107d9d-372b-4b68-8c1d-3542a419d6aa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.uid.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			parsed, ok := ParseUID(tt.want)
			if !ok || parsed != tt.uid {
				t.Errorf("ParseUID(%q) = %v, %v", tt.want, parsed, ok)
			}
		})
	}
}

func TestParseUID_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"org.oxycblt.auxio",
		"com.example:a10b-9e107d9d-372b-4b68-8c1d-3542a419d6aa",
		"org.musicbrainz:a10b",
		"org.musicbrainz:ffff-9e107d9d-372b-4b68-8c1d-3542a419d6aa",
		"org.musicbrainz:zz-9e107d9d-372b-4b68-8c1d-3542a419d6aa",
		"org.musicbrainz:a10b-not-a-uuid",
	} {
		if _, ok := ParseUID(s); ok {
			t.Errorf("ParseUID(%q) should fail", s)
		}
	}
}

func TestHashedUID_Deterministic(t *testing.T) {
	track := 3
	fill := func(name string) func(*Digest) {
		return func(d *Digest) {
			d.Text(name)
			d.Text("Abbey Road")
			d.Date(tag.ParseDate("1969-09-26"))
			d.Int(&track)
			d.Int(nil)
			d.Texts([]string{"The Beatles"})
		}
	}

	a := HashedUID(ItemSong, fill("Something"))
	b := HashedUID(ItemSong, fill("SOMETHING"))
	c := HashedUID(ItemSong, fill("Octopus's Garden"))
	if a != b {
		t.Error("hashing should be case-insensitive and deterministic")
	}
	if a == c {
		t.Error("different fields should hash differently")
	}
	if a.Namespace() != NamespaceAuxio || a.Item() != ItemSong {
		t.Errorf("unexpected uid %s", a)
	}
}

func TestDigest_AbsentFieldsShift(t *testing.T) {
	a := HashedUID(ItemAlbum, func(d *Digest) { d.Text(""); d.Text("x") })
	b := HashedUID(ItemAlbum, func(d *Digest) { d.Text("x") })
	if a == b {
		t.Error("an absent field should still affect the hash")
	}
}

func TestRandomUID(t *testing.T) {
	a, b := RandomUID(ItemPlaylist), RandomUID(ItemPlaylist)
	if a == b || a.IsZero() {
		t.Error("random UIDs should be unique and non-zero")
	}
	if (UID{}).String() != "" {
		t.Error("zero UID should render empty")
	}
}

func TestParseMBID(t *testing.T) {
	if ParseMBID("") != uuid.Nil || ParseMBID("garbage") != uuid.Nil {
		t.Error("invalid MBIDs should be Nil")
	}
	if ParseMBID("9e107d9d-372b-4b68-8c1d-3542a419d6aa") == uuid.Nil {
		t.Error("valid MBID rejected")
	}
}
