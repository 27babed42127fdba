package monitoring

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaygunnerZA/property-task-pro-sub003/internal/model"
	"github.com/RaygunnerZA/property-task-pro-sub003/internal/store"
)

func newSeededStore(t *testing.T) store.CatalogStore {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.Migrate(ctx))

	seed := []model.CatalogEntry{
		{ID: "s1", OrgID: "org-1", EntityType: model.EntitySpace, Label: "Kitchen"},
		{ID: "s2", OrgID: "org-1", EntityType: model.EntitySpace, Label: "Garage"},
		{ID: "p1", OrgID: "org-1", EntityType: model.EntityPerson, Label: "Alice"},
	}
	for i := range seed {
		require.NoError(t, st.CreateEntry(ctx, &seed[i]))
	}
	return st
}

func TestCollect(t *testing.T) {
	c := NewCollector(newSeededStore(t))

	stats, err := c.Collect(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, "org-1", stats.OrgID)
	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 2, stats.ByType["space"])
	assert.Equal(t, 1, stats.ByType["person"])
	assert.Contains(t, stats.EmptyTypes, "team")
	assert.Contains(t, stats.EmptyTypes, "asset")
	assert.NotContains(t, stats.EmptyTypes, "space")
	assert.False(t, stats.CollectedAt.IsZero())
}

func TestCollect_EmptyOrg(t *testing.T) {
	c := NewCollector(newSeededStore(t))

	stats, err := c.Collect(context.Background(), "org-2")
	require.NoError(t, err)

	assert.Zero(t, stats.TotalEntries)
	assert.Len(t, stats.EmptyTypes, len(model.AllEntityTypes))
}
