// Package store persists the per-organization entity catalog. The
// resolution pipeline never touches a store directly: callers load an
// immutable entry list here and hand the pipeline a snapshot built from
// it.
package store

import (
	"context"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// CatalogStore defines persistence operations for the entity catalog.
type CatalogStore interface {
	// LoadEntries returns every entry for the organization in stable
	// catalog order, ready for resolve.NewSnapshot.
	LoadEntries(ctx context.Context, orgID string) ([]model.CatalogEntry, error)

	// ListEntries returns one entity type's entries in catalog order.
	ListEntries(ctx context.Context, orgID string, t model.EntityType) ([]model.CatalogEntry, error)

	// CreateEntry inserts a new entry, assigning an id when empty.
	CreateEntry(ctx context.Context, e *model.CatalogEntry) error

	// DeleteEntry removes an entry by its identity.
	DeleteEntry(ctx context.Context, orgID string, t model.EntityType, id string) error

	// ImportEntries bulk-upserts entries; re-imports are idempotent.
	ImportEntries(ctx context.Context, entries []model.CatalogEntry) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
