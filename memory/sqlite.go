package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	kindAgent     = "agent"
	kindStructure = "structure"
)

// SQLiteStore keeps one room's records in a sqlite database so a restarted
// sidecar resumes with the colony's memory intact.
type SQLiteStore struct {
	db   *sql.DB
	room string
}

// OpenSQLite opens (creating if needed) the database at path. Several rooms
// may share one file; records are scoped by room name.
func OpenSQLite(path, room string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, room: room}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		room TEXT NOT NULL,
		kind TEXT NOT NULL,
		key  TEXT NOT NULL,
		body TEXT NOT NULL,
		PRIMARY KEY (room, kind, key)
	);`)
	if err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, key, body FROM records WHERE room = ?`, s.room)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	t := NewTable()
	for rows.Next() {
		var kind, key, body string
		if err := rows.Scan(&kind, &key, &body); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("decode record %s/%s: %w", kind, key, err)
		}
		switch kind {
		case kindAgent:
			t.Agents[key] = rec
		case kindStructure:
			t.Structures[key] = rec
		}
	}
	return t, rows.Err()
}

// Save replaces the room's records with t in one transaction, so records
// pruned this tick disappear from disk too.
func (s *SQLiteStore) Save(ctx context.Context, t *Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE room = ?`, s.room); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (room, kind, key, body) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	write := func(kind string, recs map[string]Record) error {
		for key, rec := range recs {
			body, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("encode record %s/%s: %w", kind, key, err)
			}
			if _, err := stmt.ExecContext(ctx, s.room, kind, key, string(body)); err != nil {
				return fmt.Errorf("insert record %s/%s: %w", kind, key, err)
			}
		}
		return nil
	}
	if err := write(kindAgent, t.Agents); err != nil {
		return err
	}
	if err := write(kindStructure, t.Structures); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
