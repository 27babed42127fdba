package model

// VerdictStatus is the outcome class of resolving one candidate.
type VerdictStatus string

const (
	StatusResolved  VerdictStatus = "resolved"
	StatusAmbiguous VerdictStatus = "ambiguous"
	StatusMissing   VerdictStatus = "missing"
)

// MatchSource records which step produced a resolved verdict.
type MatchSource string

const (
	SourceExact MatchSource = "exact"
	SourceFuzzy MatchSource = "fuzzy"
)

// VerdictCandidate is one plausible match listed on an ambiguous verdict.
type VerdictCandidate struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	EntityType EntityType `json:"entity_type"`
	Similarity float64    `json:"similarity"`
}

// ResolutionVerdict is the pipeline's decision for one candidate.
// It is pure data: a catalog id is present only when Status is resolved.
// Ambiguous and missing verdicts must never be persisted as links.
type ResolutionVerdict struct {
	Status     VerdictStatus      `json:"status"`
	EntityType EntityType         `json:"entity_type"`
	EntityID   string             `json:"entity_id,omitempty"`
	Label      string             `json:"label"`
	Source     MatchSource        `json:"source,omitempty"`
	Confidence float64            `json:"confidence"`
	Candidates []VerdictCandidate `json:"candidates,omitempty"`
}

// Resolved reports whether the verdict carries a trusted catalog id.
func (v ResolutionVerdict) Resolved() bool {
	return v.Status == StatusResolved && v.EntityID != ""
}
