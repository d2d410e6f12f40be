package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcmigrate/internal/mc"
)

func TestBlocklistExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{blocklists: []mc.BlocklistEntry{
		{ResourceID: "r1", TargetObjectType: "table", MatchType: "exact", Dataset: "ds", Project: "p", Effect: "block"},
		{ResourceID: "r2", TargetObjectType: "schema", MatchType: "regex", Effect: "block"},
	}}

	m := NewBlocklistMigrator(source, nil)
	res, err := m.Export(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	// Import into an empty destination.
	dest := &fakeAPI{}
	m = NewBlocklistMigrator(dest, nil)
	imp, err := m.Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, imp.Created)
	assert.Zero(t, imp.Updated)
	assert.Zero(t, imp.Skipped)
	require.Len(t, dest.modifiedBlocklists, 1)
	assert.Len(t, dest.modifiedBlocklists[0], 2)
}

func TestBlocklistImportUpsertCounts(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{blocklists: []mc.BlocklistEntry{
		{ResourceID: "same", TargetObjectType: "table", MatchType: "exact", Effect: "block"},
		{ResourceID: "changed", TargetObjectType: "table", MatchType: "exact", Effect: "block"},
		{ResourceID: "new", TargetObjectType: "table", MatchType: "exact", Effect: "block"},
	}}
	_, err := NewBlocklistMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{blocklists: []mc.BlocklistEntry{
		{ResourceID: "same", TargetObjectType: "table", MatchType: "exact", Effect: "block"},
		{ResourceID: "changed", TargetObjectType: "table", MatchType: "exact", Effect: "allow"},
	}}
	imp, err := NewBlocklistMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)
	assert.Equal(t, 1, imp.Updated)
	assert.Equal(t, 1, imp.Skipped)

	// Only the changed and new entries are sent.
	require.Len(t, dest.modifiedBlocklists, 1)
	assert.Len(t, dest.modifiedBlocklists[0], 2)
}

func TestBlocklistDryRunMatchesLiveCountsAndSendsNothing(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{blocklists: []mc.BlocklistEntry{
		{ResourceID: "r1", TargetObjectType: "table", MatchType: "exact", Effect: "block"},
	}}
	_, err := NewBlocklistMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{}
	dry, err := NewBlocklistMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.Empty(t, dest.modifiedBlocklists)

	live, err := NewBlocklistMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, live.Created, dry.Created)
	assert.Equal(t, live.Updated, dry.Updated)
	assert.Equal(t, live.Skipped, dry.Skipped)
}

func TestBlocklistValidate(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{
		{"r1", "table", "exact", "", "", "block"},
		{"", "table", "", "", "", "block"},
	}
	require.NoError(t, writeCSV(dir+"/blocklists.csv", blocklistHeader, rows))

	res := NewBlocklistMigrator(&fakeAPI{}, nil).Validate(context.Background(), dir, nil)
	assert.False(t, res.Valid)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 2, res.Issues[0].Row)
}

func TestBlocklistValidateMissingFile(t *testing.T) {
	res := NewBlocklistMigrator(&fakeAPI{}, nil).Validate(context.Background(), t.TempDir(), nil)
	assert.False(t, res.Valid)
	require.NotEmpty(t, res.Issues)
}
