//go:build cgo

package playlist

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/simonhull/musikr/internal/music"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlists(
	uid TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS playlist_songs(
	playlist_uid TEXT NOT NULL REFERENCES playlists(uid) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	song_uid TEXT NOT NULL,
	PRIMARY KEY (playlist_uid, position)
);`

// SQLiteStore keeps playlists in a sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the playlist database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open playlist db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create playlist schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Read(ctx context.Context) ([]PrePlaylist, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT uid, name FROM playlists ORDER BY created, rowid")
	if err != nil {
		return nil, err
	}
	var out []PrePlaylist
	for rows.Next() {
		var uid, name string
		if err := rows.Scan(&uid, &name); err != nil {
			rows.Close()
			return nil, err
		}
		parsed, ok := music.ParseUID(uid)
		if !ok {
			continue
		}
		out = append(out, PrePlaylist{UID: parsed, Name: name})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		songs, err := s.songs(ctx, out[i].UID)
		if err != nil {
			return nil, err
		}
		out[i].SongPointers = songs
	}
	return out, nil
}

func (s *SQLiteStore) songs(ctx context.Context, uid music.UID) ([]music.UID, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT song_uid FROM playlist_songs WHERE playlist_uid = ? ORDER BY position", uid.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var songs []music.UID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		if song, ok := music.ParseUID(raw); ok {
			songs = append(songs, song)
		}
	}
	return songs, rows.Err()
}

func (s *SQLiteStore) Create(ctx context.Context, p PrePlaylist) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO playlists (uid, name, created) VALUES (?, ?, strftime('%s','now'))
			 ON CONFLICT(uid) DO UPDATE SET name = excluded.name`,
			p.UID.String(), p.Name)
		if err != nil {
			return err
		}
		return writeSongs(ctx, tx, p.UID, p.SongPointers)
	})
}

func (s *SQLiteStore) Rename(ctx context.Context, uid music.UID, name string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE playlists SET name = ? WHERE uid = ?", name, uid.String())
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *SQLiteStore) Rewrite(ctx context.Context, uid music.UID, songs []music.UID) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM playlists WHERE uid = ?", uid.String()).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return writeSongs(ctx, tx, uid, songs)
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, uid music.UID) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_uid = ?", uid.String()); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM playlists WHERE uid = ?", uid.String())
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}

func (s *SQLiteStore) tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeSongs(ctx context.Context, tx *sql.Tx, uid music.UID, songs []music.UID) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_uid = ?", uid.String()); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO playlist_songs (playlist_uid, position, song_uid) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, song := range songs {
		if _, err := stmt.ExecContext(ctx, uid.String(), i, song.String()); err != nil {
			return err
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
