// Package store persists session state to SQLite. The session writes through
// on every playlist, history, volume, or mode mutation and loads once at
// startup; the schema is rewritten wholesale on each save, which is cheap at
// playlist scale and keeps the store crash-consistent.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/corvid/aria/internal/core"
	"github.com/corvid/aria/internal/history"
	"github.com/corvid/aria/internal/mode"
	"github.com/corvid/aria/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS playlist (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	path TEXT NOT NULL,
	display_name TEXT NOT NULL,
	rating INTEGER NOT NULL DEFAULT 0,
	favorite INTEGER NOT NULL DEFAULT 0,
	meta TEXT
);

CREATE TABLE IF NOT EXISTS history (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	path TEXT NOT NULL,
	display_name TEXT NOT NULL,
	rating INTEGER NOT NULL DEFAULT 0,
	favorite INTEGER NOT NULL DEFAULT 0,
	meta TEXT,
	play_count INTEGER NOT NULL,
	last_played_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const (
	keyCurrentIndex = "current_index"
	keyVolume       = "volume"
	keyMode         = "mode"
)

// SQLite implements session.Store over a local database file. The path can
// be ":memory:" for tests.
type SQLite struct {
	db *sql.DB
}

// Open connects to the database at path and creates the schema.
func Open(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// SavePlaylist rewrites the playlist table and the current index.
func (s *SQLite) SavePlaylist(tracks []core.Track, currentIndex int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM playlist`); err != nil {
		return err
	}
	for i, t := range tracks {
		meta, err := encodeMeta(t.Meta)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO playlist (id, position, path, display_name, rating, favorite, meta)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), i, t.Path, t.DisplayName, t.Rating, t.Favorite, meta,
		)
		if err != nil {
			return err
		}
	}
	if err := setSetting(tx, keyCurrentIndex, strconv.Itoa(currentIndex)); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveHistory rewrites the history table, most recent first.
func (s *SQLite) SaveHistory(entries []history.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM history`); err != nil {
		return err
	}
	for i, e := range entries {
		meta, err := encodeMeta(e.Track.Meta)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO history (id, position, path, display_name, rating, favorite, meta, play_count, last_played_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), i, e.Track.Path, e.Track.DisplayName,
			e.Track.Rating, e.Track.Favorite, meta, e.PlayCount, e.LastPlayedAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveVolume persists the volume percentage.
func (s *SQLite) SaveVolume(percent int) error {
	return setSettingDB(s.db, keyVolume, strconv.Itoa(percent))
}

// SaveMode persists the playback mode.
func (s *SQLite) SaveMode(m mode.Mode) error {
	return setSettingDB(s.db, keyMode, m.String())
}

// Load reads everything back. Missing settings fall back to zero values.
func (s *SQLite) Load() (*session.PersistedState, error) {
	st := &session.PersistedState{CurrentIndex: core.NoTrack}

	if v, ok, err := getSetting(s.db, keyCurrentIndex); err != nil {
		return nil, err
	} else if ok {
		if i, err := strconv.Atoi(v); err == nil {
			st.CurrentIndex = i
		}
	}
	if v, ok, err := getSetting(s.db, keyVolume); err != nil {
		return nil, err
	} else if ok {
		if i, err := strconv.Atoi(v); err == nil {
			st.Volume = i
		}
	}
	if v, ok, err := getSetting(s.db, keyMode); err != nil {
		return nil, err
	} else if ok {
		st.Mode = mode.Parse(v)
	}

	rows, err := s.db.Query(
		`SELECT path, display_name, rating, favorite, meta FROM playlist ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		st.Tracks = append(st.Tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hrows, err := s.db.Query(
		`SELECT path, display_name, rating, favorite, meta, play_count, last_played_at
		 FROM history ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer hrows.Close()
	for hrows.Next() {
		var (
			t         core.Track
			meta      sql.NullString
			playCount int
			playedAt  time.Time
		)
		if err := hrows.Scan(&t.Path, &t.DisplayName, &t.Rating, &t.Favorite, &meta, &playCount, &playedAt); err != nil {
			return nil, err
		}
		if t.Meta, err = decodeMeta(meta); err != nil {
			return nil, err
		}
		st.History = append(st.History, history.Entry{
			Track:        t,
			PlayCount:    playCount,
			LastPlayedAt: playedAt,
		})
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}

	return st, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanTrack(rows *sql.Rows) (core.Track, error) {
	var (
		t    core.Track
		meta sql.NullString
	)
	if err := rows.Scan(&t.Path, &t.DisplayName, &t.Rating, &t.Favorite, &meta); err != nil {
		return core.Track{}, err
	}
	var err error
	t.Meta, err = decodeMeta(meta)
	return t, err
}

func encodeMeta(m *core.TrackMetadata) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode metadata: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeMeta(s sql.NullString) (*core.TrackMetadata, error) {
	if !s.Valid {
		return nil, nil
	}
	m := &core.TrackMetadata{}
	if err := json.Unmarshal([]byte(s.String), m); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setSetting(e execer, key, value string) error {
	_, err := e.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

func setSettingDB(db *sql.DB, key, value string) error {
	return setSetting(db, key, value)
}

func getSetting(db *sql.DB, key string) (string, bool, error) {
	var v string
	err := db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Ensure SQLite implements session.Store
var _ session.Store = (*SQLite)(nil)
