package migrate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcmigrate/internal/mc"
)

func TestAudienceExportJoinsRecipients(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{audiences: []mc.Audience{
		{Name: "oncall", NotificationType: "email",
			Recipients:            []string{"a@example.com", "b@example.com"},
			RecipientDisplayNames: []string{"A", "B"}},
	}}
	res, err := NewAudienceMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)

	rows, _, err := readCSV(res.File, audienceHeader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a@example.com;b@example.com", rows[0][2])
	assert.Equal(t, "A;B", rows[0][3])
}

func TestAudienceImportNeverUpdatesExisting(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{audiences: []mc.Audience{
		{Name: "oncall", NotificationType: "email", Recipients: []string{"new@example.com"}},
		{Name: "fresh", NotificationType: "slack", Recipients: []string{"#alerts"}},
	}}
	_, err := NewAudienceMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{audiences: []mc.Audience{
		{Name: "oncall", NotificationType: "email", Recipients: []string{"old@example.com"}},
	}}
	imp, err := NewAudienceMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, imp.Created)
	assert.Equal(t, 1, imp.Skipped)
	assert.Zero(t, imp.Updated)

	require.Len(t, dest.createdAudiences, 1)
	assert.Equal(t, "fresh", dest.createdAudiences[0].Name)
}

func TestAudienceImportIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	source := &fakeAPI{audiences: []mc.Audience{
		{Name: "oncall", NotificationType: "email"},
	}}
	_, err := NewAudienceMigrator(source, nil).Export(context.Background(), dir)
	require.NoError(t, err)

	dest := &fakeAPI{}
	first, err := NewAudienceMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	// The audience now exists in the destination.
	dest.audiences = dest.createdAudiences
	second, err := NewAudienceMigrator(dest, nil).Import(context.Background(), dir, ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, dest.createdAudiences, 1)
}

func TestSplitRecipients(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitRecipients("a; b"))
	assert.Nil(t, splitRecipients("  "))
	assert.Equal(t, []string{"a"}, splitRecipients("a;;"))
}
