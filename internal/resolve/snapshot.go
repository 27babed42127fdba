// Package resolve maps extracted candidate references onto canonical
// catalog records, or decides that it cannot, via an ordered cascade of
// resolution strategies.
package resolve

import (
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// Snapshot is a read-only, per-organization view of the catalog, built
// once per resolution batch. It preserves catalog order so repeated ties
// break reproducibly, and it is never mutated after construction, which
// makes concurrent resolution against it safe.
type Snapshot struct {
	byType map[model.EntityType][]model.CatalogEntry
	byID   map[model.EntityType]map[string]model.CatalogEntry
	total  int
}

// NewSnapshot indexes catalog entries by type and id, keeping input order
// within each type.
func NewSnapshot(entries []model.CatalogEntry) *Snapshot {
	s := &Snapshot{
		byType: make(map[model.EntityType][]model.CatalogEntry),
		byID:   make(map[model.EntityType]map[string]model.CatalogEntry),
		total:  len(entries),
	}
	for _, e := range entries {
		s.byType[e.EntityType] = append(s.byType[e.EntityType], e)
		ids := s.byID[e.EntityType]
		if ids == nil {
			ids = make(map[string]model.CatalogEntry)
			s.byID[e.EntityType] = ids
		}
		ids[e.ID] = e
	}
	return s
}

// Len returns the total number of entries in the snapshot.
func (s *Snapshot) Len() int { return s.total }

// FindCandidates returns the entries of the given type eligible under the
// scope, in catalog order. It performs no fuzzy logic.
func (s *Snapshot) FindCandidates(t model.EntityType, scope model.Scope) []model.CatalogEntry {
	entries := s.byType[t]
	if len(entries) == 0 {
		return nil
	}
	out := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.InScope(scope) {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds an entry of the given type by id, honoring the scope.
func (s *Snapshot) Lookup(t model.EntityType, id string, scope model.Scope) (model.CatalogEntry, bool) {
	e, ok := s.byID[t][id]
	if !ok || !e.InScope(scope) {
		return model.CatalogEntry{}, false
	}
	return e, true
}
