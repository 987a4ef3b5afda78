package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/property-cli/internal/config"
	"github.com/sells-group/property-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database. The ":memory:" DSN keeps everything in
// process memory; the pool is pinned to one connection so every query sees
// the same database.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	record     TEXT NOT NULL,
	postcode   TEXT,
	borough    TEXT,
	added_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS settings_history (
	version    INTEGER PRIMARY KEY,
	config     TEXT NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_properties_postcode ON properties(postcode);
CREATE INDEX IF NOT EXISTS idx_properties_borough ON properties(borough);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AddProperty(ctx context.Context, rec model.PropertyRecord) error {
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal property")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO properties (id, record, postcode, borough, added_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		rec.ID, string(recJSON), rec.Postcode, rec.Borough, time.Now().UTC(),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert property %s", rec.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLiteStore) GetProperty(ctx context.Context, id string) (*model.PropertyRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record FROM properties WHERE id = ?`, id)
	return scanProperty(row)
}

// ListProperties returns every property in insertion order.
func (s *SQLiteStore) ListProperties(ctx context.Context) ([]model.PropertyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM properties ORDER BY seq`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list properties")
	}
	defer rows.Close() //nolint:errcheck

	recs := []model.PropertyRecord{}
	for rows.Next() {
		r, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *r)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list properties iterate")
}

func (s *SQLiteStore) RemoveProperty(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete property %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CountProperties(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count properties")
}

func (s *SQLiteStore) AppendSettings(ctx context.Context, version uint64, cfg config.ScoringConfig) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal settings")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings_history (version, config, applied_at) VALUES (?, ?, ?)
		 ON CONFLICT(version) DO UPDATE SET config = excluded.config, applied_at = excluded.applied_at`,
		int64(version), string(cfgJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: append settings v%d", version)
}

// ListSettings returns the settings history, oldest first.
func (s *SQLiteStore) ListSettings(ctx context.Context) ([]SettingsEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT version, config, applied_at FROM settings_history ORDER BY version`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list settings")
	}
	defer rows.Close() //nolint:errcheck

	entries := []SettingsEntry{}
	for rows.Next() {
		var (
			e       SettingsEntry
			version int64
			cfgJSON string
		)
		if err := rows.Scan(&version, &cfgJSON, &e.AppliedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan settings")
		}
		if err := json.Unmarshal([]byte(cfgJSON), &e.Config); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal settings")
		}
		e.Version = uint64(version)
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: list settings iterate")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProperty(row scannable) (*model.PropertyRecord, error) {
	var recJSON string
	err := row.Scan(&recJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan property")
	}

	var r model.PropertyRecord
	if err := json.Unmarshal([]byte(recJSON), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal property")
	}
	return &r, nil
}
