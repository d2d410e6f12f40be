package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mcmigrate/internal/warehouse"
)

// DefaultNamespace labels imported monitors when the caller does not choose
// one.
const DefaultNamespace = "migration"

// MonitorMigrator migrates monitors as one monitors-as-code document.
// Export serializes the source's UI-managed monitors grouped by type;
// import applies the document to a namespace so the whole migrated set can
// later be deleted or converted to UI-managed in one operation. Uniqueness
// in the destination is (account, namespace, name).
type MonitorMigrator struct {
	api    API
	logger *slog.Logger
}

// NewMonitorMigrator creates the monitors migrator.
func NewMonitorMigrator(api API, logger *slog.Logger) *MonitorMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *MonitorMigrator) Kind() Kind { return KindMonitors }

// Export implements Migrator.
func (m *MonitorMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	monitors, err := m.api.GetMonitors(ctx, "")
	if err != nil {
		return ExportResult{}, fmt.Errorf("query monitors: %w", err)
	}

	var doc MonitorDocument
	var names []string
	for _, mon := range monitors {
		spec := MonitorSpec{Name: mon.Name, Warehouse: mon.Warehouse, Extra: mon.Config}
		switch mon.Type {
		case MonitorTypeMetric:
			doc.Montecarlo.Metric = append(doc.Montecarlo.Metric, spec)
		case MonitorTypeCustomSQL:
			doc.Montecarlo.CustomSQL = append(doc.Montecarlo.CustomSQL, spec)
		case MonitorTypeTable:
			doc.Montecarlo.Table = append(doc.Montecarlo.Table, spec)
		default:
			m.logger.Warn("skipping monitor with unsupported type", "monitor", mon.Name, "type", mon.Type)
			continue
		}
		if mon.Warehouse != "" {
			names = append(names, mon.Warehouse)
		}
	}

	out, err := doc.Marshal()
	if err != nil {
		return ExportResult{}, err
	}
	path := filepath.Join(dir, m.Kind().Filename())
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return ExportResult{}, fmt.Errorf("write %s: %w", path, err)
	}
	return ExportResult{Count: doc.Count(), File: path, WarehouseNames: names}, nil
}

// Validate implements Migrator. Structural checks plus, when a mapping is
// set, a read-only check that mapped destination warehouses exist.
func (m *MonitorMigrator) Validate(ctx context.Context, dir string, wh *warehouse.Resolver) ValidationResult {
	doc, err := LoadMonitorDocument(entityFile(dir, m.Kind()))
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}

	res := ValidationResult{Count: doc.Count()}
	if res.Count == 0 {
		res.Warnings = append(res.Warnings, "file contains no monitors")
	}

	if referenced := doc.Warehouses(); len(referenced) > 0 {
		if wh == nil || wh.Empty() {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"file references warehouses %s; ensure these exist in the target environment or provide a warehouse mapping",
				strings.Join(referenced, ", ")))
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

// Import implements Migrator. The document is applied server-side in one
// operation; the server resolves each monitor to CREATE, UPDATE, or NO_OP
// against the namespace, identically for dry and live runs.
func (m *MonitorMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	res := ImportResult{DryRun: opts.DryRun}

	doc, err := LoadMonitorDocument(entityFile(dir, m.Kind()))
	if err != nil {
		return res, fmt.Errorf("read monitors: %w", err)
	}
	if doc.Count() == 0 {
		return res, nil
	}

	skipped, skippedNames := doc.ApplyWarehouseMapping(opts.Warehouses)
	res.Skipped += skipped
	for _, name := range skippedNames {
		m.logger.Warn("skipping monitor: unmapped warehouse", "monitor", name)
	}
	if doc.Count() == 0 {
		return res, nil
	}

	namespace := SanitizeNamespace(opts.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	doc.EnsureNames(namespace)

	configYAML, err := doc.Marshal()
	if err != nil {
		return res, err
	}

	apply, err := m.api.ApplyMonitorConfig(ctx, namespace, configYAML, opts.DryRun)
	if err != nil {
		res.Failed += doc.Count()
		res.Errors = append(res.Errors, err.Error())
		return res, nil
	}

	for _, r := range apply.Resolutions {
		switch strings.ToUpper(r.Type) {
		case "CREATE":
			res.Created++
		case "UPDATE":
			res.Updated++
		default: // NO_OP and anything else non-mutating
			res.Skipped++
		}
	}
	return res, nil
}

// DeleteNamespace deletes every monitor in a namespace. Used to roll back a
// migrated set in bulk.
func (m *MonitorMigrator) DeleteNamespace(ctx context.Context, namespace string, dryRun bool) (int, error) {
	namespace = SanitizeNamespace(namespace)
	if namespace == "" {
		return 0, fmt.Errorf("namespace is required")
	}
	n, err := m.api.DeleteMonitorConfig(ctx, namespace, dryRun)
	if err != nil {
		return 0, fmt.Errorf("delete monitors in namespace %q: %w", namespace, err)
	}
	return n, nil
}

// ConvertToUI converts every monitor in a namespace from code-managed to
// UI-managed. This is one-way: converted monitors move to the implicit "ui"
// namespace and can no longer be addressed, deleted, or re-converted by the
// namespace given here.
func (m *MonitorMigrator) ConvertToUI(ctx context.Context, namespace string, dryRun bool) (int, error) {
	namespace = SanitizeNamespace(namespace)
	if namespace == "" {
		return 0, fmt.Errorf("namespace is required")
	}
	n, err := m.api.ConvertMonitorsToUI(ctx, namespace, dryRun)
	if err != nil {
		return 0, fmt.Errorf("convert monitors in namespace %q: %w", namespace, err)
	}
	return n, nil
}
