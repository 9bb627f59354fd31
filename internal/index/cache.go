package index

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Get returns the cached PNG for key, or nil when there is none.
func (db *DB) Get(key string) ([]byte, error) {
	var png []byte
	err := db.conn.QueryRow("SELECT png FROM renders WHERE key = ?", key).Scan(&png)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return png, err
}

// Put stores a rendered PNG under key, replacing any previous entry.
func (db *DB) Put(key, engine, label, runID string, png []byte) error {
	_, err := db.conn.Exec(`
		INSERT INTO renders (key, engine, label, png, size, created_at, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			label = excluded.label,
			png = excluded.png,
			size = excluded.size,
			created_at = excluded.created_at,
			run_id = excluded.run_id
	`, key, engine, label, png, len(png), time.Now().Unix(), runID)
	return err
}

// Prune removes entries created before the cutoff and returns how many
// were removed.
func (db *DB) Prune(before time.Time) (int64, error) {
	res, err := db.conn.Exec("DELETE FROM renders WHERE created_at < ?", before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats summarises the cache contents.
type Stats struct {
	Entries int64
	Bytes   int64
	Runs    int64
}

func (db *DB) Stats() (Stats, error) {
	var s Stats
	err := db.conn.QueryRow("SELECT COUNT(*), COALESCE(SUM(size), 0) FROM renders").Scan(&s.Entries, &s.Bytes)
	if err != nil {
		return s, err
	}
	err = db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&s.Runs)
	return s, err
}

// Run is one recorded batch.
type Run struct {
	ID         string
	Deck       string
	Engine     string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Failed     int
	Cached     int
}

// StartRun records the start of a batch and returns its id.
func (db *DB) StartRun(deck, engine string) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec("INSERT INTO runs (id, deck, engine, started_at) VALUES (?, ?, ?, ?)",
		id, deck, engine, time.Now().Unix())
	if err != nil {
		return "", err
	}
	return id, nil
}

// FinishRun stores the outcome of a batch.
func (db *DB) FinishRun(id string, total, failed, cached int) error {
	_, err := db.conn.Exec("UPDATE runs SET finished_at = ?, total = ?, failed = ?, cached = ? WHERE id = ?",
		time.Now().Unix(), total, failed, cached, id)
	return err
}

// RecentRuns lists the latest runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT id, deck, engine, started_at, finished_at, total, failed, cached
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.Deck, &r.Engine, &started, &finished, &r.Total, &r.Failed, &r.Cached); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(started, 0)
		if finished > 0 {
			r.FinishedAt = time.Unix(finished, 0)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
