// Package music defines the stable identifiers shared by every music item.
package music

import (
	"crypto/sha256"
	"hash"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/simonhull/musikr/internal/tag"
)

// Namespace distinguishes locally derived identifiers from MusicBrainz ones.
type Namespace int

const (
	NamespaceAuxio Namespace = iota + 1
	NamespaceMusicBrainz
)

var namespaces = map[Namespace]string{
	NamespaceAuxio:       "org.oxycblt.auxio",
	NamespaceMusicBrainz: "org.musicbrainz",
}

func (n Namespace) String() string { return namespaces[n] }

// Item is the kind of music a UID identifies. The codes are persisted in
// playlists and must not change.
type Item int

const (
	ItemSong     Item = 0xA10B
	ItemAlbum    Item = 0xA10A
	ItemArtist   Item = 0xA109
	ItemGenre    Item = 0xA108
	ItemPlaylist Item = 0xA107
)

func (i Item) valid() bool {
	switch i {
	case ItemSong, ItemAlbum, ItemArtist, ItemGenre, ItemPlaylist:
		return true
	}
	return false
}

// UID is the stable identity of a music item. It is comparable and the zero
// value identifies nothing.
type UID struct {
	namespace Namespace
	item      Item
	id        uuid.UUID
}

// MusicBrainzUID wraps a MusicBrainz identifier.
func MusicBrainzUID(item Item, mbid uuid.UUID) UID {
	return UID{namespace: NamespaceMusicBrainz, item: item, id: mbid}
}

// RandomUID creates a local UID with a random UUID, used for playlists.
func RandomUID(item Item) UID {
	return UID{namespace: NamespaceAuxio, item: item, id: uuid.New()}
}

// HashedUID creates a local UID from the SHA-256 of whatever fill writes.
// Only the first 128 bits of the digest are kept.
func HashedUID(item Item, fill func(d *Digest)) UID {
	d := &Digest{h: sha256.New()}
	fill(d)
	var id uuid.UUID
	copy(id[:], d.h.Sum(nil))
	return UID{namespace: NamespaceAuxio, item: item, id: id}
}

// ParseUID parses the "<namespace>:<item-hex>-<uuid>" form written by
// String.
func ParseUID(s string) (UID, bool) {
	ns, rest, ok := strings.Cut(s, ":")
	if !ok {
		return UID{}, false
	}
	var namespace Namespace
	for n, name := range namespaces {
		if name == ns {
			namespace = n
		}
	}
	if namespace == 0 {
		return UID{}, false
	}

	code, id, ok := strings.Cut(rest, "-")
	if !ok {
		return UID{}, false
	}
	n, err := strconv.ParseInt(code, 16, 32)
	if err != nil || !Item(n).valid() {
		return UID{}, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return UID{}, false
	}
	return UID{namespace: namespace, item: Item(n), id: parsed}, true
}

func (u UID) String() string {
	if u.IsZero() {
		return ""
	}
	return u.namespace.String() + ":" + strconv.FormatInt(int64(u.item), 16) + "-" + u.id.String()
}

// IsZero reports whether u is the zero UID.
func (u UID) IsZero() bool { return u.namespace == 0 }

// Item returns the kind of item u identifies.
func (u UID) Item() Item { return u.item }

// Namespace returns where the identifier came from.
func (u UID) Namespace() Namespace { return u.namespace }

// UUID returns the underlying UUID.
func (u UID) UUID() uuid.UUID { return u.id }

// ParseMBID parses a MusicBrainz identifier, returning uuid.Nil when s is
// absent or malformed.
func ParseMBID(s string) uuid.UUID {
	if s == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Digest accumulates the fields hashed into a UID. Absent values write a
// single zero byte so that field boundaries still shift the hash.
type Digest struct {
	h hash.Hash
}

// Text writes s lowercased, or a zero byte when s is empty.
func (d *Digest) Text(s string) {
	if s == "" {
		d.h.Write([]byte{0})
		return
	}
	d.h.Write([]byte(strings.ToLower(s)))
}

// Texts writes every value. An empty list writes nothing.
func (d *Digest) Texts(values []string) {
	for _, s := range values {
		d.Text(s)
	}
}

// Int writes n as four little-endian bytes.
func (d *Digest) Int(n *int) {
	if n == nil {
		d.h.Write([]byte{0})
		return
	}
	v := uint32(*n)
	d.h.Write([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// Date writes the ISO-8601 form of date.
func (d *Digest) Date(date *tag.Date) {
	if date == nil {
		d.h.Write([]byte{0})
		return
	}
	d.h.Write([]byte(date.String()))
}
