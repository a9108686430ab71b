package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mreyes/reel-server/internal/models"
)

const schema = `
-- Anecdote corpus
CREATE TABLE IF NOT EXISTS anecdotes (
    id TEXT PRIMARY KEY,
    date TEXT NOT NULL,
    year INTEGER NOT NULL DEFAULT 0,
    title TEXT NOT NULL,
    story TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    narrator TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    media TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Persisted storyline builds; newest is the serving copy, older rows
-- are kept briefly for debugging
CREATE TABLE IF NOT EXISTS storyline_builds (
    build_id TEXT PRIMARY KEY,
    triggered_by TEXT NOT NULL,
    item_count INTEGER NOT NULL,
    payload TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_anecdotes_date ON anecdotes(date);
CREATE INDEX IF NOT EXISTS idx_builds_created ON storyline_builds(created_at DESC);
`

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(schema)
	if err != nil {
		return fmt.Errorf("executing migration: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// SaveAnecdote inserts a new anecdote
func (db *DB) SaveAnecdote(a models.Anecdote) error {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}
	media, err := json.Marshal(a.Media)
	if err != nil {
		return fmt.Errorf("encoding media: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = db.conn.Exec(`
		INSERT INTO anecdotes (id, date, year, title, story, notes, narrator, location, tags, media, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Date, a.Year, a.Title, a.Story, a.Notes, a.Narrator, a.Location, string(tags), string(media), now, now)
	return err
}

// UpdateAnecdote replaces an existing anecdote's fields, reporting whether
// a row with that id existed
func (db *DB) UpdateAnecdote(a models.Anecdote) (bool, error) {
	tags, err := json.Marshal(a.Tags)
	if err != nil {
		return false, fmt.Errorf("encoding tags: %w", err)
	}
	media, err := json.Marshal(a.Media)
	if err != nil {
		return false, fmt.Errorf("encoding media: %w", err)
	}
	result, err := db.conn.Exec(`
		UPDATE anecdotes
		SET date = ?, year = ?, title = ?, story = ?, notes = ?, narrator = ?, location = ?, tags = ?, media = ?, updated_at = ?
		WHERE id = ?
	`, a.Date, a.Year, a.Title, a.Story, a.Notes, a.Narrator, a.Location, string(tags), string(media),
		time.Now().UTC().Format(time.RFC3339), a.ID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// GetAnecdote returns a single anecdote, or nil when the id is unknown
func (db *DB) GetAnecdote(id string) (*models.Anecdote, error) {
	var a models.Anecdote
	var tags, media string
	err := db.conn.QueryRow(`
		SELECT id, date, year, title, story, notes, narrator, location, tags, media
		FROM anecdotes
		WHERE id = ?
	`, id).Scan(&a.ID, &a.Date, &a.Year, &a.Title, &a.Story, &a.Notes, &a.Narrator, &a.Location, &tags, &media)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tags), &a.Tags)
	_ = json.Unmarshal([]byte(media), &a.Media)
	return &a, nil
}

// ListAnecdotes returns the whole corpus ordered by date then id, the
// stable feed order the storyline engine expects
func (db *DB) ListAnecdotes() ([]models.Anecdote, error) {
	rows, err := db.conn.Query(`
		SELECT id, date, year, title, story, notes, narrator, location, tags, media
		FROM anecdotes
		ORDER BY date ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var anecdotes []models.Anecdote
	for rows.Next() {
		var a models.Anecdote
		var tags, media string
		if err := rows.Scan(&a.ID, &a.Date, &a.Year, &a.Title, &a.Story, &a.Notes, &a.Narrator, &a.Location, &tags, &media); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(tags), &a.Tags)
		_ = json.Unmarshal([]byte(media), &a.Media)
		anecdotes = append(anecdotes, a)
	}
	return anecdotes, rows.Err()
}

// DeleteAnecdote removes an anecdote, reporting whether it existed
func (db *DB) DeleteAnecdote(id string) (bool, error) {
	result, err := db.conn.Exec(`DELETE FROM anecdotes WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// CountAnecdotes returns the corpus size
func (db *DB) CountAnecdotes() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM anecdotes`).Scan(&n)
	return n, err
}

// SaveBuild persists one assembly run with its storylines as JSON
func (db *DB) SaveBuild(b models.Build) error {
	payload, err := json.Marshal(b.Storylines)
	if err != nil {
		return fmt.Errorf("encoding storylines: %w", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO storyline_builds (build_id, triggered_by, item_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, b.BuildID, b.Trigger, b.ItemCount, string(payload), b.CreatedAt)
	return err
}

// LatestBuild returns the most recent build, or nil when none exist
func (db *DB) LatestBuild() (*models.Build, error) {
	var b models.Build
	var payload string
	err := db.conn.QueryRow(`
		SELECT build_id, triggered_by, item_count, payload, created_at
		FROM storyline_builds
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&b.BuildID, &b.Trigger, &b.ItemCount, &payload, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &b.Storylines); err != nil {
		return nil, fmt.Errorf("decoding storylines: %w", err)
	}
	return &b, nil
}

// GetBuild returns one build by id, or nil when unknown
func (db *DB) GetBuild(buildID string) (*models.Build, error) {
	var b models.Build
	var payload string
	err := db.conn.QueryRow(`
		SELECT build_id, triggered_by, item_count, payload, created_at
		FROM storyline_builds
		WHERE build_id = ?
	`, buildID).Scan(&b.BuildID, &b.Trigger, &b.ItemCount, &payload, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(payload), &b.Storylines); err != nil {
		return nil, fmt.Errorf("decoding storylines: %w", err)
	}
	return &b, nil
}

// PruneBuilds deletes all but the newest N builds
func (db *DB) PruneBuilds(keep int) error {
	_, err := db.conn.Exec(`
		DELETE FROM storyline_builds
		WHERE build_id NOT IN (
			SELECT build_id FROM storyline_builds
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		)
	`, keep)
	return err
}
