package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// SQLiteStore implements CatalogStore using modernc.org/sqlite. It is
// the single-user / offline backend; Postgres is the hosted one.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	org_id      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	id          TEXT NOT NULL,
	label       TEXT NOT NULL,
	property_id TEXT NOT NULL DEFAULT '',
	space_id    TEXT NOT NULL DEFAULT '',
	position    INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (org_id, entity_type, id)
);

CREATE INDEX IF NOT EXISTS idx_catalog_entries_org_type
	ON catalog_entries (org_id, entity_type, position);
`

// Migrate creates the catalog schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteMigration); err != nil {
		return eris.Wrap(err, "sqlite: migrate")
	}
	return nil
}

// LoadEntries returns the full catalog for one organization in catalog
// order.
func (s *SQLiteStore) LoadEntries(ctx context.Context, orgID string) ([]model.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_id, entity_type, id, label, property_id, space_id, created_at
		FROM catalog_entries
		WHERE org_id = ?
		ORDER BY position`, orgID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load entries for org %s", orgID)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListEntries returns one entity type's entries in catalog order.
func (s *SQLiteStore) ListEntries(ctx context.Context, orgID string, t model.EntityType) ([]model.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT org_id, entity_type, id, label, property_id, space_id, created_at
		FROM catalog_entries
		WHERE org_id = ? AND entity_type = ?
		ORDER BY position`, orgID, string(t))
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s entries", string(t))
	}
	defer rows.Close()
	return scanEntries(rows)
}

// CreateEntry inserts a new catalog entry, assigning a uuid when the id
// is empty.
func (s *SQLiteStore) CreateEntry(ctx context.Context, e *model.CatalogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO catalog_entries (org_id, entity_type, id, label, property_id, space_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.OrgID, string(e.EntityType), e.ID, e.Label, e.PropertyID, e.SpaceID)
	if err != nil {
		return eris.Wrapf(err, "sqlite: create entry %s/%s", string(e.EntityType), e.Label)
	}
	return s.db.QueryRowContext(ctx, `
		SELECT created_at FROM catalog_entries
		WHERE org_id = ? AND entity_type = ? AND id = ?`,
		e.OrgID, string(e.EntityType), e.ID).Scan(&e.CreatedAt)
}

// DeleteEntry removes one entry by identity.
func (s *SQLiteStore) DeleteEntry(ctx context.Context, orgID string, t model.EntityType, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM catalog_entries
		WHERE org_id = ? AND entity_type = ? AND id = ?`,
		orgID, string(t), id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete entry %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: entry %s/%s not found", string(t), id)
	}
	return nil
}

// ImportEntries upserts entries one by one inside a transaction.
func (s *SQLiteStore) ImportEntries(ctx context.Context, entries []model.CatalogEntry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin import")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO catalog_entries (org_id, entity_type, id, label, property_id, space_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (org_id, entity_type, id) DO UPDATE SET
			label = excluded.label,
			property_id = excluded.property_id,
			space_id = excluded.space_id`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare import")
	}
	defer stmt.Close()

	var total int64
	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, e.OrgID, string(e.EntityType), id, e.Label, e.PropertyID, e.SpaceID); err != nil {
			return total, eris.Wrapf(err, "sqlite: import entry %s", e.Label)
		}
		total++
	}

	if err := tx.Commit(); err != nil {
		return total, eris.Wrap(err, "sqlite: commit import")
	}
	return total, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
