package model

import "time"

// CatalogEntry is one known entity belonging to an organization.
// Within one entity type and organization the ID is unique; the label
// is not guaranteed unique.
type CatalogEntry struct {
	ID         string     `json:"id"`
	OrgID      string     `json:"org_id"`
	EntityType EntityType `json:"entity_type"`
	Label      string     `json:"label"`
	PropertyID string     `json:"property_id,omitempty"`
	SpaceID    string     `json:"space_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at,omitempty"`
}

// InScope reports whether the entry is eligible under the given scope.
// Absent scope attributes do not filter.
func (e CatalogEntry) InScope(s Scope) bool {
	if s.PropertyID != "" && e.PropertyID != "" && e.PropertyID != s.PropertyID {
		return false
	}
	if s.SpaceID != "" && e.SpaceID != "" && e.SpaceID != s.SpaceID {
		return false
	}
	return true
}
