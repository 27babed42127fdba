package model

import "github.com/rotisserie/eris"

// EntityType identifies which catalog an extracted mention belongs to.
// The set is closed: resolution never disambiguates across types, so the
// type must be known before resolution starts.
type EntityType string

const (
	EntitySpace    EntityType = "space"
	EntityPerson   EntityType = "person"
	EntityTeam     EntityType = "team"
	EntityAsset    EntityType = "asset"
	EntityCategory EntityType = "category"
	EntityProperty EntityType = "property"
)

// AllEntityTypes lists every known entity type in a fixed order.
var AllEntityTypes = []EntityType{
	EntitySpace,
	EntityPerson,
	EntityTeam,
	EntityAsset,
	EntityCategory,
	EntityProperty,
}

// ParseEntityType validates a raw string against the closed type set.
func ParseEntityType(s string) (EntityType, error) {
	for _, t := range AllEntityTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", eris.Errorf("model: unknown entity type %q", s)
}

// Valid reports whether t is a member of the closed type set.
func (t EntityType) Valid() bool {
	_, err := ParseEntityType(string(t))
	return err == nil
}
