package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Ghost raw values are placeholder identifiers meaning "no real id yet".
// They must never reach the exact-identifier lookup.
const ghostPrefix = "ghost:"

var ghostLiterals = map[string]bool{
	"new":     true,
	"unknown": true,
}

// Scope narrows which catalog entries are eligible for a candidate.
// Empty fields mean "do not filter on this attribute".
type Scope struct {
	PropertyID string `json:"property_id,omitempty"`
	SpaceID    string `json:"space_id,omitempty"`
}

// CandidateReference is one proposed mention extracted from free text.
// It is created fresh per resolution request, immutable, and discarded
// once a verdict is produced.
type CandidateReference struct {
	EntityType EntityType `json:"entity_type"`
	Label      string     `json:"label"`
	RawValue   string     `json:"raw_value,omitempty"` // pre-resolved id, only trusted after exact lookup
	Scope      Scope      `json:"scope,omitempty"`
}

// Validate checks the boundary contract: a known entity type and a
// non-empty label. A failure here is a programming error in the caller,
// not a resolvable outcome.
func (c CandidateReference) Validate() error {
	if !c.EntityType.Valid() {
		return eris.Errorf("model: candidate has unknown entity type %q", string(c.EntityType))
	}
	if strings.TrimSpace(c.Label) == "" {
		return eris.New("model: candidate label is empty")
	}
	return nil
}

// HasUsableRawValue reports whether RawValue carries a real identifier,
// excluding empty strings and ghost placeholders.
func (c CandidateReference) HasUsableRawValue() bool {
	v := strings.TrimSpace(c.RawValue)
	if v == "" {
		return false
	}
	if strings.HasPrefix(v, ghostPrefix) {
		return false
	}
	return !ghostLiterals[strings.ToLower(v)]
}
