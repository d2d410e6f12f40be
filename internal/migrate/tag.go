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

var tagHeader = []string{"warehouse_id", "warehouse_name", "full_table_id", "asset_type", "tag_key", "tag_value"}

// TagMigrator migrates object tags (key/value properties on assets). Tags
// are warehouse-scoped: import resolves the exported warehouse name through
// the warehouse mapping and looks up the destination warehouse ID. Rows
// whose warehouse cannot be mapped are skipped with a warning, never
// failed. Upsert is keyed by (destination warehouse, full_table_id,
// tag_key).
type TagMigrator struct {
	api    API
	logger *slog.Logger
}

// NewTagMigrator creates the tags migrator.
func NewTagMigrator(api API, logger *slog.Logger) *TagMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &TagMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *TagMigrator) Kind() Kind { return KindTags }

// Export implements Migrator.
func (m *TagMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	tags, err := m.api.GetObjectProperties(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("query tags: %w", err)
	}

	rows := make([][]string, 0, len(tags))
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, []string{t.WarehouseID, t.WarehouseName, t.FullTableID, t.AssetType, t.TagKey, t.TagValue})
		names = append(names, t.WarehouseName)
	}

	path := filepath.Join(dir, m.Kind().Filename())
	if err := writeCSV(path, tagHeader, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Count: len(rows), File: path, WarehouseNames: names}, nil
}

// Validate implements Migrator. With a non-empty resolver it also confirms,
// via a read-only lookup, that each mapped destination warehouse exists.
func (m *TagMigrator) Validate(ctx context.Context, dir string, wh *warehouse.Resolver) ValidationResult {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), tagHeader)
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}

	referenced := make(map[string]bool)
	for i, row := range rows {
		issues = append(issues, requireFields(i+1,
			[]string{"warehouse_name", "full_table_id", "tag_key"},
			[]string{row[1], row[2], row[4]})...)
		if row[1] != "" {
			referenced[row[1]] = true
		}
	}

	res := ValidationResult{Count: len(rows), Issues: issues}
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, "file contains no tags")
	}

	if len(referenced) > 0 {
		if wh == nil || wh.Empty() {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"file references %d warehouse(s) but no warehouse mapping is set; unmapped rows will be skipped on import", len(referenced)))
		} else if dests := wh.Destinations(); len(dests) > 0 {
			if warehouses, err := m.api.GetWarehouses(ctx); err == nil {
				known := make(map[string]bool, len(warehouses))
				for _, w := range warehouses {
					known[strings.ToLower(strings.TrimSpace(w.Name))] = true
				}
				for _, d := range dests {
					if !known[strings.ToLower(strings.TrimSpace(d))] {
						res.Warnings = append(res.Warnings, fmt.Sprintf("mapped destination warehouse %q not found in target environment", d))
					}
				}
			} else {
				res.Warnings = append(res.Warnings, fmt.Sprintf("could not verify destination warehouses: %v", err))
			}
		}
	}

	res.Valid = len(res.Issues) == 0
	return res
}

// Import implements Migrator.
func (m *TagMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), tagHeader)
	if err != nil {
		return ImportResult{DryRun: opts.DryRun}, fmt.Errorf("read tags: %w", err)
	}

	res := ImportResult{DryRun: opts.DryRun}
	for _, is := range issues {
		res.Failed++
		res.Errors = append(res.Errors, is.String())
	}

	warehouses, err := m.api.GetWarehouses(ctx)
	if err != nil {
		return res, fmt.Errorf("query destination warehouses: %w", err)
	}
	idByName := make(map[string]string, len(warehouses))
	for _, w := range warehouses {
		idByName[strings.ToLower(strings.TrimSpace(w.Name))] = w.UUID
	}

	existing, err := m.api.GetObjectProperties(ctx)
	if err != nil {
		return res, fmt.Errorf("query existing tags: %w", err)
	}
	existingValue := make(map[string]string, len(existing))
	for _, t := range existing {
		existingValue[tagKey(t.WarehouseID, t.FullTableID, t.TagKey)] = t.TagValue
	}

	for i, row := range rows {
		t := mc.TagPair{
			WarehouseID:   row[0],
			WarehouseName: row[1],
			FullTableID:   row[2],
			AssetType:     row[3],
			TagKey:        row[4],
			TagValue:      row[5],
		}

		destName, ok := opts.Warehouses.Resolve(t.WarehouseName)
		if !ok {
			m.logger.Warn("skipping tag: unmapped warehouse", "row", i+1, "warehouse", t.WarehouseName, "table", t.FullTableID)
			res.Skipped++
			continue
		}
		destID, ok := idByName[strings.ToLower(strings.TrimSpace(destName))]
		if !ok {
			m.logger.Warn("skipping tag: destination warehouse not found", "row", i+1, "warehouse", destName)
			res.Skipped++
			continue
		}

		prev, exists := existingValue[tagKey(destID, t.FullTableID, t.TagKey)]
		if exists && prev == t.TagValue {
			res.Skipped++
			continue
		}

		if !opts.DryRun {
			if err := m.api.CreateOrUpdateObjectProperty(ctx, destID, t); err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: tag %s on %s: %v", i+1, t.TagKey, t.FullTableID, err))
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

func tagKey(warehouseID, fullTableID, key string) string {
	return warehouseID + "\x1f" + fullTableID + "\x1f" + key
}
