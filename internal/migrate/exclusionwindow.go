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

var exclusionHeader = []string{"id", "resource_uuid", "scope", "database", "dataset", "full_table_id", "start_time", "end_time", "reason", "reason_type"}

// ExclusionWindowMigrator migrates data-maintenance exclusion windows.
// Import upserts keyed by (resource_uuid, scope, start_time, end_time); an
// existing window with the same reason is skipped. The exported id column
// is informational only and never sent on import, since IDs are not
// portable across environments.
type ExclusionWindowMigrator struct {
	api    API
	logger *slog.Logger
}

// NewExclusionWindowMigrator creates the exclusion_windows migrator.
func NewExclusionWindowMigrator(api API, logger *slog.Logger) *ExclusionWindowMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExclusionWindowMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *ExclusionWindowMigrator) Kind() Kind { return KindExclusionWindows }

// Export implements Migrator.
func (m *ExclusionWindowMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	windows, err := m.api.GetDataMaintenanceEntries(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("query exclusion windows: %w", err)
	}

	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []string{
			w.ID, w.ResourceUUID, w.Scope, w.Database, w.Dataset,
			w.FullTableID, w.StartTime, w.EndTime, w.Reason, w.ReasonType,
		})
	}

	path := filepath.Join(dir, m.Kind().Filename())
	if err := writeCSV(path, exclusionHeader, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Count: len(rows), File: path}, nil
}

// Validate implements Migrator.
func (m *ExclusionWindowMigrator) Validate(_ context.Context, dir string, _ *warehouse.Resolver) ValidationResult {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), exclusionHeader)
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}
	for i, row := range rows {
		issues = append(issues, requireFields(i+1,
			[]string{"resource_uuid", "scope", "start_time", "end_time"},
			[]string{row[1], row[2], row[6], row[7]})...)
	}
	res := ValidationResult{Valid: len(issues) == 0, Count: len(rows), Issues: issues}
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, "file contains no exclusion windows")
	}
	return res
}

// Import implements Migrator.
func (m *ExclusionWindowMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), exclusionHeader)
	if err != nil {
		return ImportResult{DryRun: opts.DryRun}, fmt.Errorf("read exclusion windows: %w", err)
	}

	res := ImportResult{DryRun: opts.DryRun}
	for _, is := range issues {
		res.Failed++
		res.Errors = append(res.Errors, is.String())
	}

	existing, err := m.api.GetDataMaintenanceEntries(ctx)
	if err != nil {
		return res, fmt.Errorf("query existing exclusion windows: %w", err)
	}
	existingReason := make(map[string]string, len(existing))
	for _, w := range existing {
		existingReason[exclusionKey(w)] = w.Reason
	}

	for i, row := range rows {
		w := mc.ExclusionWindow{
			ResourceUUID: row[1],
			Scope:        row[2],
			Database:     row[3],
			Dataset:      row[4],
			FullTableID:  row[5],
			StartTime:    row[6],
			EndTime:      row[7],
			Reason:       row[8],
			ReasonType:   row[9],
		}

		reason, exists := existingReason[exclusionKey(w)]
		if exists && reason == w.Reason {
			res.Skipped++
			continue
		}

		if !opts.DryRun {
			if err := m.api.CreateOrUpdateDataMaintenanceEntry(ctx, w); err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: window on %s: %v", i+1, w.ResourceUUID, err))
				continue
			}
		}
		if exists {
			res.Updated++
		} else {
			res.Created++
		}
	}
	return res, nil
}

func exclusionKey(w mc.ExclusionWindow) string {
	return strings.Join([]string{w.ResourceUUID, w.Scope, w.StartTime, w.EndTime}, "\x1f")
}
