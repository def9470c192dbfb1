package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const (
	kind2D = 2
	kind3D = 3
)

// SQLiteStore keeps documents for many ROMs in one database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS roms (
		key TEXT PRIMARY KEY,
		calibration_id TEXT NOT NULL DEFAULT '',
		calibration_id_pos INTEGER NOT NULL DEFAULT 0,
		file_size INTEGER NOT NULL DEFAULT 0,
		rom_type TEXT NOT NULL DEFAULT '',
		search_start INTEGER,
		search_last INTEGER,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tables (
		rom_key TEXT NOT NULL REFERENCES roms(key) ON DELETE CASCADE,
		kind INTEGER NOT NULL,
		location INTEGER NOT NULL,
		element_type TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		name_x TEXT NOT NULL DEFAULT '',
		unit_x TEXT NOT NULL DEFAULT '',
		name_y TEXT NOT NULL DEFAULT '',
		unit_y TEXT NOT NULL DEFAULT '',
		unit_z TEXT NOT NULL DEFAULT '',
		selected INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (rom_key, kind, location)
	);
	CREATE INDEX IF NOT EXISTS idx_tables_category ON tables(category);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (*Document, error) {
	var (
		doc         Document
		start, last sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT calibration_id, calibration_id_pos, file_size, rom_type, search_start, search_last
		FROM roms WHERE key = ?`, key).Scan(
		&doc.Rom.CalibrationID, &doc.Rom.CalibrationIDPos, &doc.Rom.FileSize, &doc.Rom.Type, &start, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to query rom: %w", err)
	}
	if start.Valid && last.Valid {
		doc.SearchRange = &SearchRange{Start: Address(start.Int64), Last: Address(last.Int64)}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, location, element_type, title, category, description,
			name_x, unit_x, name_y, unit_y, unit_z, selected
		FROM tables WHERE rom_key = ? ORDER BY kind, location`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind int
			e    Entry
		)
		if err := rows.Scan(&kind, &e.Location, &e.Type, &e.Title, &e.Category, &e.Description,
			&e.NameX, &e.UnitX, &e.NameY, &e.UnitY, &e.UnitZ, &e.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan table row: %w", err)
		}
		if kind == kind3D {
			doc.Tables3D = append(doc.Tables3D, e)
		} else {
			doc.Tables2D = append(doc.Tables2D, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tables: %w", err)
	}
	return &doc, nil
}

// Save replaces everything stored for key.
func (s *SQLiteStore) Save(ctx context.Context, key string, doc *Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var start, last sql.NullInt64
	if doc.SearchRange != nil {
		start = sql.NullInt64{Int64: int64(doc.SearchRange.Start), Valid: true}
		last = sql.NullInt64{Int64: int64(doc.SearchRange.Last), Valid: true}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO roms (key, calibration_id, calibration_id_pos, file_size, rom_type, search_start, search_last, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			calibration_id = excluded.calibration_id,
			calibration_id_pos = excluded.calibration_id_pos,
			file_size = excluded.file_size,
			rom_type = excluded.rom_type,
			search_start = excluded.search_start,
			search_last = excluded.search_last,
			updated_at = excluded.updated_at`,
		key, doc.Rom.CalibrationID, int64(doc.Rom.CalibrationIDPos), doc.Rom.FileSize, doc.Rom.Type,
		start, last, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store rom: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE rom_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear tables: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tables (rom_key, kind, location, element_type, title, category, description,
			name_x, unit_x, name_y, unit_y, unit_z, selected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	insert := func(kind int, entries []Entry) error {
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, key, kind, int64(e.Location), e.Type, e.Title, e.Category,
				e.Description, e.NameX, e.UnitX, e.NameY, e.UnitY, e.UnitZ, e.Selected); err != nil {
				return fmt.Errorf("failed to insert table 0x%X: %w", int(e.Location), err)
			}
		}
		return nil
	}
	if err := insert(kind2D, doc.Tables2D); err != nil {
		return err
	}
	if err := insert(kind3D, doc.Tables3D); err != nil {
		return err
	}
	return tx.Commit()
}

// Keys lists the stored ROM keys.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM roms ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roms: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
