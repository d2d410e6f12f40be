package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcmigrate/internal/mc"
	"mcmigrate/internal/warehouse"
)

func exportTags(t *testing.T, dir string, tags []mc.TagPair) {
	t.Helper()
	_, err := NewTagMigrator(&fakeAPI{tags: tags}, nil).Export(context.Background(), dir)
	require.NoError(t, err)
}

func TestTagExportCollectsWarehouseNames(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{tags: []mc.TagPair{
		{WarehouseID: "w1", WarehouseName: "prod-snowflake", FullTableID: "db:sch.t1", AssetType: "table", TagKey: "owner", TagValue: "core"},
		{WarehouseID: "w2", WarehouseName: "prod-bigquery", FullTableID: "p.ds.t2", AssetType: "table", TagKey: "tier", TagValue: "1"},
	}}

	res, err := NewTagMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, []string{"prod-snowflake", "prod-bigquery"}, res.WarehouseNames)
}

func TestTagImportResolvesWarehouseMapping(t *testing.T) {
	dir := t.TempDir()
	exportTags(t, dir, []mc.TagPair{
		{WarehouseID: "src-w1", WarehouseName: "prod-snowflake", FullTableID: "db:sch.t1", AssetType: "table", TagKey: "owner", TagValue: "core"},
	})

	dest := &fakeAPI{warehouses: []mc.Warehouse{{UUID: "dest-uuid", Name: "Staging Snowflake"}}}
	wh := warehouse.NewResolver(map[string]string{"prod-snowflake": "staging snowflake"}, "", nil)

	imp, err := NewTagMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{Warehouses: wh})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)
	require.Len(t, dest.upsertedTags, 1)
	assert.Equal(t, "dest-uuid", dest.upsertedTagDests[0])
	assert.Equal(t, "owner", dest.upsertedTags[0].TagKey)
}

func TestTagImportSkipsUnmappedWarehouse(t *testing.T) {
	dir := t.TempDir()
	exportTags(t, dir, []mc.TagPair{
		{WarehouseID: "w1", WarehouseName: "mapped", FullTableID: "t1", TagKey: "k", TagValue: "v"},
		{WarehouseID: "w2", WarehouseName: "unmapped", FullTableID: "t2", TagKey: "k", TagValue: "v"},
	})

	dest := &fakeAPI{warehouses: []mc.Warehouse{{UUID: "d1", Name: "dest"}}}
	wh := warehouse.NewResolver(map[string]string{"mapped": "dest"}, "", nil)

	imp, err := NewTagMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{Warehouses: wh})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)
	assert.Equal(t, 1, imp.Skipped)
	assert.Zero(t, imp.Failed)
	require.Len(t, dest.upsertedTags, 1)
	assert.Equal(t, "t1", dest.upsertedTags[0].FullTableID)
}

func TestTagImportSkipsExistingSameValue(t *testing.T) {
	dir := t.TempDir()
	exportTags(t, dir, []mc.TagPair{
		{WarehouseID: "w1", WarehouseName: "src", FullTableID: "t1", TagKey: "k", TagValue: "same"},
		{WarehouseID: "w1", WarehouseName: "src", FullTableID: "t2", TagKey: "k", TagValue: "new"},
	})

	dest := &fakeAPI{
		warehouses: []mc.Warehouse{{UUID: "d1", Name: "dest"}},
		tags: []mc.TagPair{
			{WarehouseID: "d1", FullTableID: "t1", TagKey: "k", TagValue: "same"},
			{WarehouseID: "d1", FullTableID: "t2", TagKey: "k", TagValue: "old"},
		},
	}
	wh := warehouse.NewResolver(map[string]string{"src": "dest"}, "", nil)

	imp, err := NewTagMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{Warehouses: wh})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Skipped)
	assert.Equal(t, 1, imp.Updated)
	assert.Zero(t, imp.Created)
}

func TestTagValidateWarnsWithoutMapping(t *testing.T) {
	dir := t.TempDir()
	exportTags(t, dir, []mc.TagPair{
		{WarehouseID: "w1", WarehouseName: "src", FullTableID: "t1", TagKey: "k", TagValue: "v"},
	})

	res := NewTagMigrator(&fakeAPI{}, nil).Validate(context.Background(), dir, warehouse.NewResolver(nil, "", nil))
	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "no warehouse mapping")
}

func TestTagValidateChecksDestinationExists(t *testing.T) {
	dir := t.TempDir()
	exportTags(t, dir, []mc.TagPair{
		{WarehouseID: "w1", WarehouseName: "src", FullTableID: "t1", TagKey: "k", TagValue: "v"},
	})

	api := &fakeAPI{warehouses: []mc.Warehouse{{UUID: "d1", Name: "present"}}}
	wh := warehouse.NewResolver(map[string]string{"src": "absent"}, "", nil)

	res := NewTagMigrator(api, nil).Validate(context.Background(), dir, wh)
	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `"absent"`)
}
