package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcmigrate/internal/mc"
)

func TestDomainExportOneRowPerAsset(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{domains: []mc.Domain{
		{Name: "finance", Description: "money things", Assignments: []string{"mcon-a", "mcon-b"}},
		{Name: "empty", Description: "no assets yet"},
	}}

	res, err := NewDomainMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Count)

	rows, issues, err := readCSV(res.File, domainHeader)
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, [][]string{
		{"finance", "money things", "mcon-a"},
		{"finance", "money things", "mcon-b"},
		{"empty", "no assets yet", ""},
	}, rows)
}

func TestDomainImportCreatesAndGroupsRows(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{domains: []mc.Domain{
		{Name: "finance", Description: "d", Assignments: []string{"mcon-b", "mcon-a"}},
	}}
	_, err := NewDomainMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{}
	imp, err := NewDomainMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)
	require.Len(t, dest.upsertedDomains, 1)
	assert.Equal(t, "finance", dest.upsertedDomains[0].Name)
	assert.Equal(t, []string{"mcon-a", "mcon-b"}, dest.upsertedDomains[0].Assignments)
	assert.Empty(t, dest.upsertedDomains[0].UUID)
}

func TestDomainImportMergesAssignmentsWithExisting(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{domains: []mc.Domain{
		{Name: "finance", Assignments: []string{"mcon-new"}},
	}}
	_, err := NewDomainMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{domains: []mc.Domain{
		{UUID: "uuid-1", Name: "finance", Description: "kept", Assignments: []string{"mcon-old"}},
	}}
	imp, err := NewDomainMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Updated)
	assert.Zero(t, imp.Created)

	require.Len(t, dest.upsertedDomains, 1)
	d := dest.upsertedDomains[0]
	assert.Equal(t, "uuid-1", d.UUID)
	assert.Equal(t, "kept", d.Description)
	assert.Equal(t, []string{"mcon-new", "mcon-old"}, d.Assignments)
}

func TestDomainImportDryRunDoesNotUpsert(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{domains: []mc.Domain{{Name: "finance"}}}
	_, err := NewDomainMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{}
	imp, err := NewDomainMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)
	assert.Empty(t, dest.upsertedDomains)
}

func TestMergeUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, mergeUnique([]string{"b", "a"}, []string{"c", "a", ""}))
	assert.Empty(t, mergeUnique(nil, nil))
}
