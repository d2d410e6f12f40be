package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcmigrate/internal/mc"
)

func TestExclusionWindowRoundTripDropsID(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{windows: []mc.ExclusionWindow{
		{ID: "42", ResourceUUID: "res-1", Scope: "table", FullTableID: "db:sch.t",
			StartTime: "2026-01-01T00:00:00Z", EndTime: "2026-01-02T00:00:00Z", Reason: "backfill", ReasonType: "maintenance"},
	}}
	_, err := NewExclusionWindowMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{}
	imp, err := NewExclusionWindowMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)

	require.Len(t, dest.upsertedWindows, 1)
	w := dest.upsertedWindows[0]
	assert.Empty(t, w.ID)
	assert.Equal(t, "res-1", w.ResourceUUID)
	assert.Equal(t, "backfill", w.Reason)
}

func TestExclusionWindowImportSkipsSameReason(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{windows: []mc.ExclusionWindow{
		{ResourceUUID: "res-1", Scope: "table", StartTime: "s", EndTime: "e", Reason: "backfill"},
		{ResourceUUID: "res-2", Scope: "table", StartTime: "s", EndTime: "e", Reason: "changed"},
	}}
	_, err := NewExclusionWindowMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{windows: []mc.ExclusionWindow{
		{ResourceUUID: "res-1", Scope: "table", StartTime: "s", EndTime: "e", Reason: "backfill"},
		{ResourceUUID: "res-2", Scope: "table", StartTime: "s", EndTime: "e", Reason: "original"},
	}}
	imp, err := NewExclusionWindowMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Skipped)
	assert.Equal(t, 1, imp.Updated)
	assert.Zero(t, imp.Created)
	require.Len(t, dest.upsertedWindows, 1)
	assert.Equal(t, "res-2", dest.upsertedWindows[0].ResourceUUID)
}

func TestExclusionWindowValidateRequiredFields(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{
		{"1", "res-1", "table", "", "", "", "s", "e", "", ""},
		{"2", "", "table", "", "", "", "", "e", "", ""},
	}
	require.NoError(t, writeCSV(dir+"/exclusion_windows.csv", exclusionHeader, rows))

	res := NewExclusionWindowMigrator(&fakeAPI{}, nil).Validate(context.Background(), dir, nil)
	assert.False(t, res.Valid)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, 2, res.Issues[0].Row)
}
