package resolve

import (
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/match"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

// Options holds the resolver tunables. The constants have no documented
// derivation, so they stay configurable rather than inlined.
type Options struct {
	// SimilarityThreshold is the minimum label similarity for a catalog
	// entry to count as a fuzzy match. Default 0.8.
	SimilarityThreshold float64

	// FuzzyConfidence is the flat confidence reported on a single-fuzzy
	// auto-acceptance. It communicates pipeline trust in the automatic
	// decision, not lexical closeness. Default 0.85.
	FuzzyConfidence float64
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: match.DefaultThreshold,
		FuzzyConfidence:     0.85,
	}
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = match.DefaultThreshold
	}
	if o.FuzzyConfidence <= 0 {
		o.FuzzyConfidence = 0.85
	}
	return o
}

// Resolver runs the resolution cascade for candidate references.
type Resolver struct {
	opts  Options
	steps []step
}

// step is one strategy in the cascade. It returns a non-nil verdict when
// it decides, nil to pass to the next strategy. New strategies (alias
// tables, abbreviation maps) slot into the list without restructuring
// control flow.
type step struct {
	name string
	run  func(rc *resolution) *model.ResolutionVerdict
}

// resolution carries per-candidate state through the cascade so the
// fuzzy and ambiguous strategies share one scoring pass.
type resolution struct {
	cand   model.CandidateReference
	snap   *Snapshot
	opts   Options
	scored []scoredEntry
	done   bool
}

type scoredEntry struct {
	entry      model.CatalogEntry
	similarity float64
}

// NewResolver builds a resolver with the standard four-strategy cascade:
// exact identifier, single fuzzy match, ambiguous set, missing.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		opts: opts.withDefaults(),
		steps: []step{
			{name: "exact_identifier", run: stepExactIdentifier},
			{name: "fuzzy_single", run: stepFuzzySingle},
			{name: "ambiguous", run: stepAmbiguous},
			{name: "missing", run: stepMissing},
		},
	}
}

// Resolve executes the cascade for one candidate against the snapshot.
// For a fixed candidate and snapshot the verdict is deterministic: no
// randomness, no clock, no I/O. Malformed candidates fail loudly; they
// are a caller bug, never a missing verdict.
func (r *Resolver) Resolve(cand model.CandidateReference, snap *Snapshot) (model.ResolutionVerdict, error) {
	if snap == nil {
		return model.ResolutionVerdict{}, eris.New("resolve: nil catalog snapshot")
	}
	if err := cand.Validate(); err != nil {
		return model.ResolutionVerdict{}, eris.Wrap(err, "resolve: invalid candidate")
	}

	rc := &resolution{cand: cand, snap: snap, opts: r.opts}
	for _, st := range r.steps {
		if v := st.run(rc); v != nil {
			zap.L().Debug("resolve: verdict",
				zap.String("step", st.name),
				zap.String("entity_type", string(cand.EntityType)),
				zap.String("label", cand.Label),
				zap.String("status", string(v.Status)),
			)
			return *v, nil
		}
	}

	// The missing strategy always decides; reaching here is a bug.
	return model.ResolutionVerdict{}, eris.New("resolve: no strategy produced a verdict")
}

// stepExactIdentifier trusts an extractor-supplied identifier when it
// points at a real catalog entry. An upstream resolution is never
// second-guessed by fuzzy logic, no matter how dissimilar the label is.
func stepExactIdentifier(rc *resolution) *model.ResolutionVerdict {
	if !rc.cand.HasUsableRawValue() {
		return nil
	}
	entry, ok := rc.snap.Lookup(rc.cand.EntityType, rc.cand.RawValue, rc.cand.Scope)
	if !ok {
		return nil
	}
	return &model.ResolutionVerdict{
		Status:     model.StatusResolved,
		EntityType: entry.EntityType,
		EntityID:   entry.ID,
		Label:      entry.Label,
		Source:     model.SourceExact,
		Confidence: 1.0,
	}
}

// stepFuzzySingle resolves when exactly one catalog entry clears the
// similarity threshold. Confidence is the flat auto-acceptance value,
// not the raw similarity score.
func stepFuzzySingle(rc *resolution) *model.ResolutionVerdict {
	matches := rc.matches()
	if len(matches) != 1 {
		return nil
	}
	m := matches[0]
	return &model.ResolutionVerdict{
		Status:     model.StatusResolved,
		EntityType: m.entry.EntityType,
		EntityID:   m.entry.ID,
		Label:      m.entry.Label,
		Source:     model.SourceFuzzy,
		Confidence: rc.opts.FuzzyConfidence,
	}
}

// stepAmbiguous refuses to guess between two or more passing entries.
// Candidates are ordered by descending similarity, ties broken by
// catalog order; confidence is the top score, purely advisory.
func stepAmbiguous(rc *resolution) *model.ResolutionVerdict {
	matches := rc.matches()
	if len(matches) < 2 {
		return nil
	}
	candidates := make([]model.VerdictCandidate, len(matches))
	for i, m := range matches {
		candidates[i] = model.VerdictCandidate{
			ID:         m.entry.ID,
			Label:      m.entry.Label,
			EntityType: m.entry.EntityType,
			Similarity: m.similarity,
		}
	}
	return &model.ResolutionVerdict{
		Status:     model.StatusAmbiguous,
		EntityType: rc.cand.EntityType,
		Label:      rc.cand.Label,
		Confidence: matches[0].similarity,
		Candidates: candidates,
	}
}

// stepMissing is the terminal strategy: nothing matched, the caller must
// offer entity creation. The pipeline never fabricates an id.
func stepMissing(rc *resolution) *model.ResolutionVerdict {
	return &model.ResolutionVerdict{
		Status:     model.StatusMissing,
		EntityType: rc.cand.EntityType,
		Label:      rc.cand.Label,
	}
}

// matches scores every in-scope entry once and caches the entries that
// clear the threshold, sorted by descending similarity with catalog
// order as the tie-break.
func (rc *resolution) matches() []scoredEntry {
	if rc.done {
		return rc.scored
	}
	rc.done = true

	for _, entry := range rc.snap.FindCandidates(rc.cand.EntityType, rc.cand.Scope) {
		sim := match.Similarity(rc.cand.Label, entry.Label)
		if sim >= rc.opts.SimilarityThreshold {
			rc.scored = append(rc.scored, scoredEntry{entry: entry, similarity: sim})
		}
	}
	sort.SliceStable(rc.scored, func(i, j int) bool {
		return rc.scored[i].similarity > rc.scored[j].similarity
	})
	return rc.scored
}
