// Package classify maps resolution verdicts onto the suggestion states
// the task UI renders. The mapping is a hard contract: a verdict carries
// exactly the fields this classification needs and nothing more.
package classify

import (
	"github.com/rotisserie/eris"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// SuggestionState is the UI-facing classification of one verdict.
type SuggestionState string

const (
	// StateApplied is a passive fact: auto-applied, removable, and never
	// blocks submission.
	StateApplied SuggestionState = "applied"

	// StateBlocking must be settled by the user before the surrounding
	// record can be saved, and must never be silently persisted as
	// metadata.
	StateBlocking SuggestionState = "blocking"

	// StateOptional is a suggestion the user may ignore.
	StateOptional SuggestionState = "optional"
)

// Policy configures per-entity-type classification behavior.
type Policy struct {
	// BlockingRequired marks entity types whose unresolved state must
	// halt task submission, e.g. a mandatory assignee.
	BlockingRequired bool
}

// PolicySet holds the per-type policies. Types absent from the map fall
// back to a non-blocking policy.
type PolicySet map[model.EntityType]Policy

// DefaultPolicies treats an unresolved assignee as blocking and
// everything else as ignorable.
func DefaultPolicies() PolicySet {
	return PolicySet{
		model.EntityPerson: {BlockingRequired: true},
	}
}

// For returns the policy for an entity type.
func (p PolicySet) For(t model.EntityType) Policy {
	return p[t]
}

// Suggestion pairs a verdict with its classification.
type Suggestion struct {
	Verdict model.ResolutionVerdict `json:"verdict"`
	State   SuggestionState         `json:"state"`
}

// Blocks reports whether this suggestion prevents record submission.
func (s Suggestion) Blocks() bool { return s.State == StateBlocking }

// Suggest classifies one verdict under the given policy.
func Suggest(v model.ResolutionVerdict, policy Policy) (Suggestion, error) {
	switch v.Status {
	case model.StatusResolved:
		return Suggestion{Verdict: v, State: StateApplied}, nil
	case model.StatusAmbiguous, model.StatusMissing:
		if policy.BlockingRequired {
			return Suggestion{Verdict: v, State: StateBlocking}, nil
		}
		return Suggestion{Verdict: v, State: StateOptional}, nil
	default:
		return Suggestion{}, eris.Errorf("classify: unknown verdict status %q", string(v.Status))
	}
}

// SuggestAll classifies a batch of verdicts against a policy set,
// preserving order.
func SuggestAll(verdicts []model.ResolutionVerdict, policies PolicySet) ([]Suggestion, error) {
	out := make([]Suggestion, len(verdicts))
	for i, v := range verdicts {
		s, err := Suggest(v, policies.For(v.EntityType))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
