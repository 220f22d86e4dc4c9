//go:build cgo

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/simonhull/musikr/internal/fs"
	"github.com/simonhull/musikr/internal/tag"
)

const schema = `
CREATE TABLE IF NOT EXISTS songs(
	path TEXT PRIMARY KEY,
	mime_type TEXT NOT NULL,
	size INTEGER NOT NULL,
	modified_ms INTEGER NOT NULL,
	added_ms INTEGER NOT NULL,
	touched_ns INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	bitrate_kbps INTEGER NOT NULL,
	sample_rate_hz INTEGER NOT NULL,
	musicbrainz_id TEXT NOT NULL,
	name TEXT NOT NULL,
	sort_name TEXT NOT NULL,
	track INTEGER,
	disc INTEGER,
	subtitle TEXT NOT NULL,
	date TEXT,
	album_musicbrainz_id TEXT NOT NULL,
	album_name TEXT NOT NULL,
	album_sort_name TEXT NOT NULL,
	release_types TEXT NOT NULL,
	artist_musicbrainz_ids TEXT NOT NULL,
	artist_names TEXT NOT NULL,
	artist_sort_names TEXT NOT NULL,
	album_artist_musicbrainz_ids TEXT NOT NULL,
	album_artist_names TEXT NOT NULL,
	album_artist_sort_names TEXT NOT NULL,
	genre_names TEXT NOT NULL,
	replaygain_track REAL,
	replaygain_album REAL,
	cover_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS songs_touched ON songs(touched_ns);`

const columns = `path, mime_type, size, modified_ms, added_ms, touched_ns,
	duration_ms, bitrate_kbps, sample_rate_hz,
	musicbrainz_id, name, sort_name, track, disc, subtitle, date,
	album_musicbrainz_id, album_name, album_sort_name, release_types,
	artist_musicbrainz_ids, artist_names, artist_sort_names,
	album_artist_musicbrainz_ids, album_artist_names, album_artist_sort_names,
	genre_names, replaygain_track, replaygain_album, cover_id`

// SQLite is a cache stored in a sqlite database.
type SQLite struct {
	db *sql.DB
}

// Open opens or creates the cache database at path.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Read(ctx context.Context, file fs.File) (Result, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM songs WHERE path = ?", file.Path)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{Status: Miss}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("read cache entry %s: %w", file.Path, err)
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE songs SET touched_ns = ? WHERE path = ?",
		time.Now().UnixNano(), file.Path); err != nil {
		return Result{}, fmt.Errorf("touch cache entry %s: %w", file.Path, err)
	}
	return resultFor(song, file), nil
}

func scanSong(row *sql.Row) (*Song, error) {
	var (
		song             Song
		touched          int64
		track, disc      sql.NullInt64
		date             sql.NullString
		rgTrack, rgAlbum sql.NullFloat64
		releaseTypes     string
		artistIDs        string
		artists          string
		artistSorts      string
		albumArtistIDs   string
		albumArtists     string
		albumArtistSorts string
		genres           string
	)
	t := &song.Tags
	err := row.Scan(
		&song.Path, &song.MIMEType, &song.Size, &song.ModifiedMs, &song.AddedMs, &touched,
		&song.Properties.DurationMs, &song.Properties.BitrateKbps, &song.Properties.SampleRateHz,
		&t.MusicBrainzID, &t.Name, &t.SortName, &track, &disc, &t.Subtitle, &date,
		&t.AlbumMusicBrainzID, &t.AlbumName, &t.AlbumSortName, &releaseTypes,
		&artistIDs, &artists, &artistSorts,
		&albumArtistIDs, &albumArtists, &albumArtistSorts,
		&genres, &rgTrack, &rgAlbum, &song.CoverID,
	)
	if err != nil {
		return nil, err
	}
	t.DurationMs = song.Properties.DurationMs
	t.Track = nullInt(track)
	t.Disc = nullInt(disc)
	if date.Valid {
		t.Date = tag.ParseDate(date.String)
	}
	t.ReleaseTypes = splitValues(releaseTypes)
	t.ArtistMusicBrainzIDs = splitValues(artistIDs)
	t.ArtistNames = splitValues(artists)
	t.ArtistSortNames = splitValues(artistSorts)
	t.AlbumArtistMusicBrainzIDs = splitValues(albumArtistIDs)
	t.AlbumArtistNames = splitValues(albumArtists)
	t.AlbumArtistSortNames = splitValues(albumArtistSorts)
	t.GenreNames = splitValues(genres)
	t.ReplayGainTrack = nullFloat(rgTrack)
	t.ReplayGainAlbum = nullFloat(rgAlbum)
	return &song, nil
}

func (s *SQLite) Write(ctx context.Context, song *Song) error {
	t := song.Tags
	var date sql.NullString
	if t.Date != nil {
		date = sql.NullString{String: t.Date.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO songs ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		song.Path, song.MIMEType, song.Size, song.ModifiedMs, song.AddedMs, time.Now().UnixNano(),
		song.Properties.DurationMs, song.Properties.BitrateKbps, song.Properties.SampleRateHz,
		t.MusicBrainzID, t.Name, t.SortName, t.Track, t.Disc, t.Subtitle, date,
		t.AlbumMusicBrainzID, t.AlbumName, t.AlbumSortName, joinValues(t.ReleaseTypes),
		joinValues(t.ArtistMusicBrainzIDs), joinValues(t.ArtistNames), joinValues(t.ArtistSortNames),
		joinValues(t.AlbumArtistMusicBrainzIDs), joinValues(t.AlbumArtistNames), joinValues(t.AlbumArtistSortNames),
		joinValues(t.GenreNames), t.ReplayGainTrack, t.ReplayGainAlbum, song.CoverID,
	)
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", song.Path, err)
	}
	return nil
}

func (s *SQLite) Cleanup(ctx context.Context, keep []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS kept(path TEXT PRIMARY KEY)"); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM kept"); err != nil {
		tx.Rollback()
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO kept (path) VALUES (?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, p := range keep {
		if _, err := stmt.ExecContext(ctx, p); err != nil {
			tx.Rollback()
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE path NOT IN (SELECT path FROM kept)"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clean cache: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) Prune(ctx context.Context, before time.Time) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM songs WHERE touched_ns < ?", before.UnixNano()); err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	return nil
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullFloat(f sql.NullFloat64) *float32 {
	if !f.Valid {
		return nil
	}
	v := float32(f.Float64)
	return &v
}
