package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/db"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// PostgresStore implements CatalogStore using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS catalog_entries (
	org_id      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	id          TEXT NOT NULL,
	label       TEXT NOT NULL,
	property_id TEXT NOT NULL DEFAULT '',
	space_id    TEXT NOT NULL DEFAULT '',
	position    BIGSERIAL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (org_id, entity_type, id)
);

CREATE INDEX IF NOT EXISTS idx_catalog_entries_org_type
	ON catalog_entries (org_id, entity_type, position);
`

// Migrate creates the catalog schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

const selectEntryCols = `org_id, entity_type, id, label, property_id, space_id, created_at`

// LoadEntries returns the full catalog for one organization in catalog
// (insertion) order, so repeated snapshots tie-break identically.
func (s *PostgresStore) LoadEntries(ctx context.Context, orgID string) ([]model.CatalogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+selectEntryCols+`
		FROM catalog_entries
		WHERE org_id = $1
		ORDER BY position`, orgID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load entries for org %s", orgID)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListEntries returns one entity type's entries in catalog order.
func (s *PostgresStore) ListEntries(ctx context.Context, orgID string, t model.EntityType) ([]model.CatalogEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+selectEntryCols+`
		FROM catalog_entries
		WHERE org_id = $1 AND entity_type = $2
		ORDER BY position`, orgID, string(t))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s entries", string(t))
	}
	defer rows.Close()
	return scanEntries(rows)
}

// CreateEntry inserts a new catalog entry, assigning a uuid when the id
// is empty.
func (s *PostgresStore) CreateEntry(ctx context.Context, e *model.CatalogEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO catalog_entries (org_id, entity_type, id, label, property_id, space_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		e.OrgID, string(e.EntityType), e.ID, e.Label, e.PropertyID, e.SpaceID,
	).Scan(&e.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "postgres: create entry %s/%s", string(e.EntityType), e.Label)
	}
	return nil
}

// DeleteEntry removes one entry by identity.
func (s *PostgresStore) DeleteEntry(ctx context.Context, orgID string, t model.EntityType, id string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM catalog_entries
		WHERE org_id = $1 AND entity_type = $2 AND id = $3`,
		orgID, string(t), id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete entry %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: entry %s/%s not found", string(t), id)
	}
	return nil
}

// ImportEntries bulk-upserts entries via a temp table so re-importing
// the same file is idempotent.
func (s *PostgresStore) ImportEntries(ctx context.Context, entries []model.CatalogEntry) (int64, error) {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		rows[i] = []any{e.OrgID, string(e.EntityType), id, e.Label, e.PropertyID, e.SpaceID}
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "catalog_entries",
		Columns:      []string{"org_id", "entity_type", "id", "label", "property_id", "space_id"},
		ConflictKeys: []string{"org_id", "entity_type", "id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import entries")
	}
	return n, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// rowScanner matches both pgx.Rows and pgxmock rows.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanEntries(rows rowScanner) ([]model.CatalogEntry, error) {
	var out []model.CatalogEntry
	for rows.Next() {
		var (
			e  model.CatalogEntry
			et string
		)
		if err := rows.Scan(&e.OrgID, &et, &e.ID, &e.Label, &e.PropertyID, &e.SpaceID, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan entry")
		}
		e.EntityType = model.EntityType(et)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate entries")
	}
	return out, nil
}
