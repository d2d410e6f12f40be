// Package migrate implements the entity migration pipeline: per-kind
// export/validate/import against flat files, and the orchestrator that runs
// them in dependency order.
package migrate

import (
	"context"
	"fmt"

	"mcmigrate/internal/mc"
	"mcmigrate/internal/warehouse"
)

// API is the subset of the vendor client the migrators use. Satisfied by
// *mc.Client; tests substitute a fake.
type API interface {
	GetCollectionBlockList(ctx context.Context) ([]mc.BlocklistEntry, error)
	ModifyCollectionBlockList(ctx context.Context, entries []mc.BlocklistEntry) error
	GetAllDomains(ctx context.Context) ([]mc.Domain, error)
	CreateOrUpdateDomain(ctx context.Context, d mc.Domain) error
	GetObjectProperties(ctx context.Context) ([]mc.TagPair, error)
	CreateOrUpdateObjectProperty(ctx context.Context, warehouseID string, t mc.TagPair) error
	GetDataMaintenanceEntries(ctx context.Context) ([]mc.ExclusionWindow, error)
	CreateOrUpdateDataMaintenanceEntry(ctx context.Context, w mc.ExclusionWindow) error
	GetDataProducts(ctx context.Context) ([]mc.DataProduct, error)
	CreateOrUpdateDataProduct(ctx context.Context, p mc.DataProduct) error
	GetNotificationAudiences(ctx context.Context) ([]mc.Audience, error)
	CreateAudience(ctx context.Context, a mc.Audience) error
	GetWarehouses(ctx context.Context) ([]mc.Warehouse, error)
	GetMonitors(ctx context.Context, namespace string) ([]mc.Monitor, error)
	ApplyMonitorConfig(ctx context.Context, namespace, configYAML string, dryRun bool) (mc.ApplyResult, error)
	DeleteMonitorConfig(ctx context.Context, namespace string, dryRun bool) (int, error)
	ConvertMonitorsToUI(ctx context.Context, namespace string, dryRun bool) (int, error)
}

var _ API = (*mc.Client)(nil)

// ExportResult reports one kind's export.
type ExportResult struct {
	Count int
	File  string
	// WarehouseNames are the warehouse display names referenced by the
	// exported rows, collected across kinds into one mapping template.
	WarehouseNames []string
}

// ImportResult reports one kind's import. A dry run carries the same counts
// the live run would produce against the same destination state.
type ImportResult struct {
	DryRun  bool
	Created int
	Updated int
	Skipped int
	Failed  int
	Errors  []string
}

// Issue is a single validation problem, located by row index (1-based data
// row; 0 for file-level problems).
type Issue struct {
	Row     int
	Message string
}

func (i Issue) String() string {
	if i.Row > 0 {
		return fmt.Sprintf("row %d: %s", i.Row, i.Message)
	}
	return i.Message
}

// ValidationResult reports one kind's validation. All issues are collected;
// validation never stops at the first problem and never mutates the
// destination.
type ValidationResult struct {
	Valid    bool
	Count    int
	Issues   []Issue
	Warnings []string
}

// ImportOptions carries the per-run import settings.
type ImportOptions struct {
	// DryRun resolves and counts without calling mutating operations.
	// Live imports require the caller to have flipped this off explicitly.
	DryRun bool
	// Warehouses maps source warehouse names to destination names.
	Warehouses *warehouse.Resolver
	// Namespace labels imported monitors for later bulk delete/convert.
	// Ignored by kinds other than monitors.
	Namespace string
}

// Migrator is the capability set each entity kind implements. Implementers
// hold no state across calls; all transient rows live within one call.
type Migrator interface {
	Kind() Kind
	Export(ctx context.Context, dir string) (ExportResult, error)
	Validate(ctx context.Context, dir string, wh *warehouse.Resolver) ValidationResult
	Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error)
}
