package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/resilience"
	"github.com/RaygunnerZA/property-task-pro-sub003/pkg/anthropic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeClient returns a canned response and records the request.
type fakeClient struct {
	resp *anthropic.MessageResponse
	err  error
	last anthropic.MessageRequest
}

func (f *fakeClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.last = req
	return f.resp, f.err
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: s}}}
}

func TestModelExtractorParsesCandidates(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: textResponse(`[
		{"entity_type": "space", "label": "Kitchen"},
		{"entity_type": "person", "label": "Alice", "raw_value": "u1"},
		{"entity_type": "category", "label": "Plumbing"}
	]`)}
	ex := NewModelExtractor(client, "claude-haiku-4-5-20251001", 0)

	got, err := ex.Extract(context.Background(), "Fix the leaking tap in the Kitchen, assign Alice, plumbing")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, model.EntitySpace, got[0].EntityType)
	assert.Equal(t, "Kitchen", got[0].Label)
	assert.Equal(t, "u1", got[1].RawValue)
	assert.Equal(t, model.EntityCategory, got[2].EntityType)
}

func TestModelExtractorStripsMarkdownFences(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: textResponse("```json\n[{\"entity_type\":\"asset\",\"label\":\"Boiler\"}]\n```")}
	ex := NewModelExtractor(client, "m", 0)

	got, err := ex.Extract(context.Background(), "check the boiler")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.EntityAsset, got[0].EntityType)
}

func TestModelExtractorDropsMalformedEntries(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: textResponse(`[
		{"entity_type": "space", "label": "Kitchen"},
		{"entity_type": "building", "label": "Annex"},
		{"entity_type": "person", "label": ""}
	]`)}
	ex := NewModelExtractor(client, "m", 0)

	got, err := ex.Extract(context.Background(), "kitchen annex")
	require.NoError(t, err)
	require.Len(t, got, 1, "unknown types and empty labels are dropped at the boundary")
	assert.Equal(t, "Kitchen", got[0].Label)
}

func TestModelExtractorBadJSON(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: textResponse("sorry, I can't do that")}
	ex := NewModelExtractor(client, "m", 0)

	_, err := ex.Extract(context.Background(), "whatever")
	assert.Error(t, err)
}

func TestModelExtractorEmptyDescription(t *testing.T) {
	t.Parallel()

	ex := NewModelExtractor(&fakeClient{}, "m", 0)
	_, err := ex.Extract(context.Background(), "   ")
	assert.Error(t, err)
}

func TestRuleExtractorFindsCatalogLabels(t *testing.T) {
	t.Parallel()

	ex := NewRuleExtractor([]model.CatalogEntry{
		{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
		{ID: "s2", EntityType: model.EntitySpace, Label: "Garage"},
		{ID: "c1", EntityType: model.EntityCategory, Label: "Plumbing"},
		{ID: "u1", EntityType: model.EntityPerson, Label: "Alice Mokoena"},
	})

	got, err := ex.Extract(context.Background(), "Plumbing issue in the kitchen — tap leaks. Alice Mokoena to handle.")
	require.NoError(t, err)
	require.Len(t, got, 3)

	labels := make([]string, len(got))
	for i, c := range got {
		labels[i] = c.Label
	}
	assert.Equal(t, []string{"Kitchen", "Plumbing", "Alice Mokoena"}, labels, "catalog order is preserved")
}

func TestRuleExtractorWholeWordOnly(t *testing.T) {
	t.Parallel()

	ex := NewRuleExtractor([]model.CatalogEntry{
		{ID: "s1", EntityType: model.EntitySpace, Label: "Gym"},
	})

	got, err := ex.Extract(context.Background(), "check the gymnasium lights")
	require.NoError(t, err)
	assert.Empty(t, got, "partial word hits are not mentions")
}

func TestRuleExtractorDeterministic(t *testing.T) {
	t.Parallel()

	entries := []model.CatalogEntry{
		{ID: "s1", EntityType: model.EntitySpace, Label: "Kitchen"},
		{ID: "c1", EntityType: model.EntityCategory, Label: "Plumbing"},
	}
	ex := NewRuleExtractor(entries)

	first, err := ex.Extract(context.Background(), "plumbing in the kitchen")
	require.NoError(t, err)
	second, err := ex.Extract(context.Background(), "plumbing in the kitchen")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRuleExtractorEmptyDescription(t *testing.T) {
	t.Parallel()

	ex := NewRuleExtractor(nil)
	_, err := ex.Extract(context.Background(), "")
	assert.Error(t, err)
}

// flakyClient fails with a transient error until failures are used up.
type flakyClient struct {
	failures int
	calls    int
	resp     *anthropic.MessageResponse
}

func (f *flakyClient) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, resilience.NewTransientError(errors.New("overloaded"), 529)
	}
	return f.resp, nil
}

func TestModelExtractorRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	client := &flakyClient{
		failures: 2,
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: `[{"entity_type":"space","label":"Kitchen"}]`}},
		},
	}
	ex := NewModelExtractor(client, "test-model", 0)
	ex.retry = resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
	}

	got, err := ex.Extract(context.Background(), "clean the kitchen")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Kitchen", got[0].Label)
	assert.Equal(t, 3, client.calls)
}
