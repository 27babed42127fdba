package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testSnapshot(entries ...model.CatalogEntry) *Snapshot {
	return NewSnapshot(entries)
}

func TestResolveSingleFuzzyMatch(t *testing.T) {
	t.Parallel()

	// Scenario A: lone "Kitchen" space, lower-case candidate.
	snap := testSnapshot(
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{EntityType: model.EntitySpace, Label: "kitchen"}, snap)
	require.NoError(t, err)

	assert.Equal(t, model.StatusResolved, v.Status)
	assert.Equal(t, model.SourceFuzzy, v.Source)
	assert.Equal(t, "s1", v.EntityID)
	assert.Equal(t, 0.85, v.Confidence)
	assert.Empty(t, v.Candidates)
}

func TestResolveAmbiguous(t *testing.T) {
	t.Parallel()

	// Scenario B: "Main" is contained in both labels, so both score 1.0
	// and neither may be guessed.
	snap := testSnapshot(
		model.CatalogEntry{ID: "p1", EntityType: model.EntityProperty, Label: "Main House"},
		model.CatalogEntry{ID: "p2", EntityType: model.EntityProperty, Label: "Main Residence"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{EntityType: model.EntityProperty, Label: "Main"}, snap)
	require.NoError(t, err)

	assert.Equal(t, model.StatusAmbiguous, v.Status)
	assert.Empty(t, v.EntityID, "ambiguous verdicts carry no catalog id")
	require.Len(t, v.Candidates, 2)
	// Equal similarity: catalog order is the tie-break.
	assert.Equal(t, "p1", v.Candidates[0].ID)
	assert.Equal(t, "p2", v.Candidates[1].ID)
	assert.Equal(t, 1.0, v.Confidence)
}

func TestResolveMissing(t *testing.T) {
	t.Parallel()

	// Scenario C: nothing in the catalog resembles the label.
	snap := testSnapshot(
		model.CatalogEntry{ID: "u1", EntityType: model.EntityPerson, Label: "Alice Mokoena"},
		model.CatalogEntry{ID: "u2", EntityType: model.EntityPerson, Label: "Ben Carter"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{EntityType: model.EntityPerson, Label: "Zzyzx"}, snap)
	require.NoError(t, err)

	assert.Equal(t, model.StatusMissing, v.Status)
	assert.Empty(t, v.EntityID)
	assert.Empty(t, v.Candidates)
	assert.Equal(t, model.EntityPerson, v.EntityType)
}

func TestResolveExactIdentifierTrumpsLabel(t *testing.T) {
	t.Parallel()

	// Scenario D: the extractor's label guess is textually wrong, but the
	// id it echoed is real. Exactness wins.
	snap := testSnapshot(
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Utility Room"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{
		EntityType: model.EntitySpace,
		Label:      "Kitchen",
		RawValue:   "s1",
	}, snap)
	require.NoError(t, err)

	assert.Equal(t, model.StatusResolved, v.Status)
	assert.Equal(t, model.SourceExact, v.Source)
	assert.Equal(t, "s1", v.EntityID)
	assert.Equal(t, "Utility Room", v.Label)
	assert.Equal(t, 1.0, v.Confidence)
}

func TestResolveGhostRawValueSkipsExactStep(t *testing.T) {
	t.Parallel()

	snap := testSnapshot(
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
	)
	r := NewResolver(DefaultOptions())

	for _, raw := range []string{"", "ghost:space", "new", "unknown"} {
		v, err := r.Resolve(model.CandidateReference{
			EntityType: model.EntitySpace,
			Label:      "Kitchen",
			RawValue:   raw,
		}, snap)
		require.NoError(t, err)
		assert.Equal(t, model.SourceFuzzy, v.Source, "ghost raw value %q must not hit the exact step", raw)
	}
}

func TestResolveUnknownRawValueFallsThrough(t *testing.T) {
	t.Parallel()

	// A stale id that is no longer in the catalog falls through to the
	// fuzzy step rather than failing.
	snap := testSnapshot(
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{
		EntityType: model.EntitySpace,
		Label:      "Kitchen",
		RawValue:   "s-deleted",
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, v.Status)
	assert.Equal(t, model.SourceFuzzy, v.Source)
}

func TestResolveAmbiguousOrdering(t *testing.T) {
	t.Parallel()

	// "Boiler Rm" scores below 1.0 against "Boiler Room" but the two
	// containment labels score exactly 1.0; descending similarity first,
	// catalog order for the 1.0 tie.
	snap := testSnapshot(
		model.CatalogEntry{ID: "a1", EntityType: model.EntityAsset, Label: "Boiler Room Heater"},
		model.CatalogEntry{ID: "a2", EntityType: model.EntityAsset, Label: "Boiler"},
		model.CatalogEntry{ID: "a3", EntityType: model.EntityAsset, Label: "Boiled"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{EntityType: model.EntityAsset, Label: "Boiler"}, snap)
	require.NoError(t, err)

	require.Equal(t, model.StatusAmbiguous, v.Status)
	require.Len(t, v.Candidates, 3)
	assert.Equal(t, "a1", v.Candidates[0].ID, "containment tie keeps catalog order")
	assert.Equal(t, "a2", v.Candidates[1].ID)
	assert.Equal(t, "a3", v.Candidates[2].ID, "edit-ratio match sorts below the 1.0 scores")
	assert.Equal(t, 1.0, v.Candidates[0].Similarity)
	assert.Less(t, v.Candidates[2].Similarity, 1.0)
}

func TestResolveScopeFiltering(t *testing.T) {
	t.Parallel()

	snap := testSnapshot(
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen", PropertyID: "p1"},
		model.CatalogEntry{ID: "s2", EntityType: model.EntitySpace, Label: "Kitchen", PropertyID: "p2"},
	)
	r := NewResolver(DefaultOptions())

	// Unscoped: two identical labels, ambiguous.
	v, err := r.Resolve(model.CandidateReference{EntityType: model.EntitySpace, Label: "Kitchen"}, snap)
	require.NoError(t, err)
	assert.Equal(t, model.StatusAmbiguous, v.Status)

	// Scoped to p2: only one eligible entry remains.
	v, err = r.Resolve(model.CandidateReference{
		EntityType: model.EntitySpace,
		Label:      "Kitchen",
		Scope:      model.Scope{PropertyID: "p2"},
	}, snap)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, v.Status)
	assert.Equal(t, "s2", v.EntityID)

	// Exact-id lookup honors the scope too.
	v, err = r.Resolve(model.CandidateReference{
		EntityType: model.EntitySpace,
		Label:      "Kitchen",
		RawValue:   "s1",
		Scope:      model.Scope{PropertyID: "p2"},
	}, snap)
	require.NoError(t, err)
	assert.NotEqual(t, "s1", v.EntityID, "out-of-scope id must not resolve exactly")
}

func TestResolveTypeIsolation(t *testing.T) {
	t.Parallel()

	// A perfect label in another type's catalog is invisible.
	snap := testSnapshot(
		model.CatalogEntry{ID: "c1", EntityType: model.EntityCategory, Label: "Plumbing"},
	)
	r := NewResolver(DefaultOptions())

	v, err := r.Resolve(model.CandidateReference{EntityType: model.EntityTeam, Label: "Plumbing"}, snap)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMissing, v.Status)
}

func TestResolveDeterminism(t *testing.T) {
	t.Parallel()

	snap := testSnapshot(
		model.CatalogEntry{ID: "p1", EntityType: model.EntityProperty, Label: "Main House"},
		model.CatalogEntry{ID: "p2", EntityType: model.EntityProperty, Label: "Main Residence"},
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
	)
	r := NewResolver(DefaultOptions())

	cands := []model.CandidateReference{
		{EntityType: model.EntityProperty, Label: "Main"},
		{EntityType: model.EntitySpace, Label: "kitchen"},
		{EntityType: model.EntityPerson, Label: "Zzyzx"},
	}
	for _, cand := range cands {
		first, err := r.Resolve(cand, snap)
		require.NoError(t, err)
		second, err := r.Resolve(cand, snap)
		require.NoError(t, err)
		assert.Equal(t, first, second, "repeat resolution must be structurally identical for %q", cand.Label)
	}
}

func TestResolveContractViolations(t *testing.T) {
	t.Parallel()

	snap := testSnapshot()
	r := NewResolver(DefaultOptions())

	_, err := r.Resolve(model.CandidateReference{EntityType: model.EntitySpace, Label: ""}, snap)
	assert.Error(t, err, "empty label is a caller bug, not a missing verdict")

	_, err = r.Resolve(model.CandidateReference{EntityType: "vendor", Label: "Kitchen"}, snap)
	assert.Error(t, err)

	_, err = r.Resolve(model.CandidateReference{EntityType: model.EntitySpace, Label: "Kitchen"}, nil)
	assert.Error(t, err)
}

func TestResolveThresholdOverride(t *testing.T) {
	t.Parallel()

	// "Kitchn" scores ~0.857 against "Kitchen": a match at the default
	// threshold, rejected when the caller raises it.
	snap := testSnapshot(
		model.CatalogEntry{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
	)

	v, err := NewResolver(DefaultOptions()).Resolve(
		model.CandidateReference{EntityType: model.EntitySpace, Label: "Kitchn"}, snap)
	require.NoError(t, err)
	assert.Equal(t, model.StatusResolved, v.Status)

	strict := NewResolver(Options{SimilarityThreshold: 0.95, FuzzyConfidence: 0.85})
	v, err = strict.Resolve(
		model.CandidateReference{EntityType: model.EntitySpace, Label: "Kitchn"}, snap)
	require.NoError(t, err)
	assert.Equal(t, model.StatusMissing, v.Status)
}

func TestSnapshotFindCandidatesStableOrder(t *testing.T) {
	t.Parallel()

	entries := []model.CatalogEntry{
		{ID: "s3", EntityType: model.EntitySpace, Label: "C"},
		{ID: "s1", EntityType: model.EntitySpace, Label: "A"},
		{ID: "s2", EntityType: model.EntitySpace, Label: "B"},
	}
	snap := NewSnapshot(entries)

	got := snap.FindCandidates(model.EntitySpace, model.Scope{})
	require.Len(t, got, 3)
	assert.Equal(t, "s3", got[0].ID)
	assert.Equal(t, "s1", got[1].ID)
	assert.Equal(t, "s2", got[2].ID)
}
