package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mcmigrate/internal/mc"
	"mcmigrate/internal/warehouse"
)

var blocklistHeader = []string{"resource_id", "target_object_type", "match_type", "dataset", "project", "effect"}

// BlocklistMigrator migrates collection-blocklist entries. Import is an
// upsert keyed by (resource_id, target_object_type, match_type, dataset,
// project): an entry matching an existing one with the same effect is
// skipped, otherwise it is sent to the server which replaces any match.
type BlocklistMigrator struct {
	api    API
	logger *slog.Logger
}

// NewBlocklistMigrator creates the blocklists migrator.
func NewBlocklistMigrator(api API, logger *slog.Logger) *BlocklistMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlocklistMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *BlocklistMigrator) Kind() Kind { return KindBlocklists }

// Export implements Migrator.
func (m *BlocklistMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	entries, err := m.api.GetCollectionBlockList(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("query blocklists: %w", err)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.ResourceID, e.TargetObjectType, e.MatchType, e.Dataset, e.Project, e.Effect})
	}

	path := filepath.Join(dir, m.Kind().Filename())
	if err := writeCSV(path, blocklistHeader, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Count: len(rows), File: path}, nil
}

// Validate implements Migrator.
func (m *BlocklistMigrator) Validate(_ context.Context, dir string, _ *warehouse.Resolver) ValidationResult {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), blocklistHeader)
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}
	for i, row := range rows {
		issues = append(issues, requireFields(i+1,
			[]string{"resource_id", "target_object_type", "match_type", "effect"},
			[]string{row[0], row[1], row[2], row[5]})...)
	}
	res := ValidationResult{Valid: len(issues) == 0, Count: len(rows), Issues: issues}
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, "file contains no blocklist entries")
	}
	return res
}

// Import implements Migrator.
func (m *BlocklistMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), blocklistHeader)
	if err != nil {
		return ImportResult{DryRun: opts.DryRun}, fmt.Errorf("read blocklists: %w", err)
	}

	res := ImportResult{DryRun: opts.DryRun}
	for _, is := range issues {
		res.Failed++
		res.Errors = append(res.Errors, is.String())
	}

	existing, err := m.api.GetCollectionBlockList(ctx)
	if err != nil {
		return res, fmt.Errorf("query existing blocklists: %w", err)
	}
	existingEffect := make(map[string]string, len(existing))
	for _, e := range existing {
		existingEffect[blocklistKey(e)] = e.Effect
	}

	var toApply []mc.BlocklistEntry
	for _, row := range rows {
		entry := mc.BlocklistEntry{
			ResourceID:       row[0],
			TargetObjectType: row[1],
			MatchType:        row[2],
			Dataset:          row[3],
			Project:          row[4],
			Effect:           row[5],
		}
		effect, ok := existingEffect[blocklistKey(entry)]
		switch {
		case ok && effect == entry.Effect:
			res.Skipped++
		case ok:
			res.Updated++
			toApply = append(toApply, entry)
		default:
			res.Created++
			toApply = append(toApply, entry)
		}
	}

	if opts.DryRun || len(toApply) == 0 {
		return res, nil
	}
	if err := m.api.ModifyCollectionBlockList(ctx, toApply); err != nil {
		res.Failed += len(toApply)
		res.Created, res.Updated = 0, 0
		res.Errors = append(res.Errors, err.Error())
	}
	return res, nil
}

func blocklistKey(e mc.BlocklistEntry) string {
	return strings.Join([]string{e.ResourceID, e.TargetObjectType, e.MatchType, e.Dataset, e.Project}, "\x1f")
}
