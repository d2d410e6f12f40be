package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"mcmigrate/internal/warehouse"
)

// Operation selects what a run does.
type Operation int

const (
	// OpExport writes one file per entity kind plus the manifest and
	// warehouse mapping template.
	OpExport Operation = iota
	// OpValidate parses the files and reports every issue without touching
	// the destination.
	OpValidate
	// OpImport reads the files and creates/updates destination records
	// (or only resolves them, under dry-run).
	OpImport
)

// String returns the operation name.
func (o Operation) String() string {
	switch o {
	case OpExport:
		return "export"
	case OpValidate:
		return "validate"
	case OpImport:
		return "import"
	default:
		return "unknown"
	}
}

// Request describes one migration run. Constructed once per invocation and
// not modified afterwards.
type Request struct {
	Operation Operation
	// Kinds is the requested entity subset; empty means all. Execution
	// order is always the fixed dependency order, regardless of the order
	// here.
	Kinds     []Kind
	Directory string
	Profile   string
	// DryRun applies to OpImport only. Live imports require the caller to
	// have cleared it through an explicit force opt-in.
	DryRun bool
	// WarehouseMap is the inline mapping; it takes precedence over a
	// mapping file in Directory.
	WarehouseMap map[string]string
	// Namespace labels imported monitors (default "migration").
	Namespace string
}

// KindOutcome is one entity kind's result within a run.
type KindOutcome struct {
	Kind       Kind              `json:"-"`
	Entity     string            `json:"entity"`
	Error      string            `json:"error,omitempty"`
	Export     *ExportResult     `json:"export,omitempty"`
	Import     *ImportResult     `json:"import,omitempty"`
	Validation *ValidationResult `json:"validation,omitempty"`
}

// OK reports whether this kind succeeded.
func (o KindOutcome) OK() bool {
	if o.Error != "" {
		return false
	}
	if o.Import != nil && o.Import.Failed > 0 {
		return false
	}
	if o.Validation != nil && !o.Validation.Valid {
		return false
	}
	return true
}

// Report aggregates a whole run. Per-kind failures are isolated: one kind
// failing never stops later kinds, so the report can mix successes and
// failures.
type Report struct {
	RunID     string        `json:"run_id"`
	Operation string        `json:"operation"`
	DryRun    bool          `json:"dry_run,omitempty"`
	Started   time.Time     `json:"started"`
	Finished  time.Time     `json:"finished"`
	Outcomes  []KindOutcome `json:"outcomes"`
}

// OK reports whether every executed kind succeeded.
func (r Report) OK() bool {
	for _, o := range r.Outcomes {
		if !o.OK() {
			return false
		}
	}
	return true
}

// Runner executes migration runs. The kind-to-migrator registry is built
// once at construction and read-only afterwards.
type Runner struct {
	api       API
	logger    *slog.Logger
	migrators map[Kind]Migrator
	monitors  *MonitorMigrator
}

// NewRunner builds a Runner with every implemented migrator registered.
func NewRunner(api API, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	monitors := NewMonitorMigrator(api, logger)
	migrators := map[Kind]Migrator{
		KindBlocklists:       NewBlocklistMigrator(api, logger),
		KindDomains:          NewDomainMigrator(api, logger),
		KindTags:             NewTagMigrator(api, logger),
		KindExclusionWindows: NewExclusionWindowMigrator(api, logger),
		KindDataProducts:     NewDataProductMigrator(api, logger),
		KindAudiences:        NewAudienceMigrator(api, logger),
		KindMonitors:         monitors,
	}
	return &Runner{api: api, logger: logger, migrators: migrators, monitors: monitors}
}

// Monitors exposes the monitor migrator for the namespace-scoped delete and
// convert-to-ui operations, which sit outside the per-kind pipeline.
func (r *Runner) Monitors() *MonitorMigrator { return r.monitors }

// resolve intersects the requested kinds with the implemented set, in the
// fixed dependency order. Requested-but-unimplemented kinds are dropped
// with a warning so requests naming future entities still run.
func (r *Runner) resolve(requested []Kind) []Kind {
	if len(requested) == 0 {
		requested = AllKinds()
	}
	want := make(map[Kind]bool, len(requested))
	for _, k := range requested {
		want[k] = true
	}
	var kinds []Kind
	for _, k := range AllKinds() {
		if !want[k] {
			continue
		}
		if _, ok := r.migrators[k]; !ok {
			r.logger.Warn("entity type not yet implemented, skipping", "entity", k.String())
			continue
		}
		kinds = append(kinds, k)
	}
	return kinds
}

// Run executes one migration run and returns its report. Kinds execute
// sequentially in dependency order; a kind's failure is recorded and the
// run continues with the next kind.
func (r *Runner) Run(ctx context.Context, req Request) Report {
	report := Report{
		RunID:     uuid.NewString(),
		Operation: req.Operation.String(),
		DryRun:    req.Operation == OpImport && req.DryRun,
		Started:   time.Now(),
	}

	kinds := r.resolve(req.Kinds)
	r.logger.Info("starting run",
		"run_id", report.RunID,
		"operation", req.Operation.String(),
		"entities", len(kinds),
		"directory", req.Directory)

	switch req.Operation {
	case OpExport:
		report.Outcomes = r.runExport(ctx, req, kinds)
	case OpValidate:
		report.Outcomes = r.runValidate(ctx, req, kinds)
	case OpImport:
		report.Outcomes = r.runImport(ctx, req, kinds)
	}

	report.Finished = time.Now()
	r.logger.Info("run complete", "run_id", report.RunID, "ok", report.OK())
	return report
}

func (r *Runner) runExport(ctx context.Context, req Request, kinds []Kind) []KindOutcome {
	if err := os.MkdirAll(req.Directory, 0o755); err != nil {
		return []KindOutcome{{Entity: "export", Error: fmt.Sprintf("create directory: %v", err)}}
	}

	var outcomes []KindOutcome
	succeeded := make(map[Kind]ExportResult)
	var warehouseNames []string

	for _, kind := range kinds {
		outcome := KindOutcome{Kind: kind, Entity: kind.String()}
		res, err := r.migrators[kind].Export(ctx, req.Directory)
		if err != nil {
			r.logger.Error("export failed", "entity", kind.String(), "error", err)
			outcome.Error = err.Error()
		} else {
			r.logger.Info("export complete", "entity", kind.String(), "count", res.Count, "file", res.File)
			outcome.Export = &res
			succeeded[kind] = res
			warehouseNames = append(warehouseNames, res.WarehouseNames...)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := WriteManifest(req.Directory, req.Profile, succeeded); err != nil {
		r.logger.Error("failed to write manifest", "error", err)
	}

	// One merged template across every warehouse-scoped kind in the run,
	// so the operator edits a single mapping file.
	if path, err := warehouse.WriteTemplate(req.Directory, warehouseNames); err != nil {
		r.logger.Error("failed to write warehouse mapping template", "error", err)
	} else if path != "" {
		r.logger.Info("wrote warehouse mapping template", "file", path)
	}

	return outcomes
}

func (r *Runner) runValidate(ctx context.Context, req Request, kinds []Kind) []KindOutcome {
	wh := warehouse.NewResolver(req.WarehouseMap, req.Directory, r.logger)

	var outcomes []KindOutcome
	for _, kind := range kinds {
		outcome := KindOutcome{Kind: kind, Entity: kind.String()}
		res := r.migrators[kind].Validate(ctx, req.Directory, wh)
		outcome.Validation = &res
		if res.Valid {
			r.logger.Info("validation passed", "entity", kind.String(), "count", res.Count)
		} else {
			r.logger.Error("validation failed", "entity", kind.String(), "issues", len(res.Issues))
		}
		for _, w := range res.Warnings {
			r.logger.Warn(w, "entity", kind.String())
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (r *Runner) runImport(ctx context.Context, req Request, kinds []Kind) []KindOutcome {
	wh := warehouse.NewResolver(req.WarehouseMap, req.Directory, r.logger)
	opts := ImportOptions{DryRun: req.DryRun, Warehouses: wh, Namespace: req.Namespace}

	mode := "live"
	if req.DryRun {
		mode = "dry-run"
	}

	var outcomes []KindOutcome
	for _, kind := range kinds {
		outcome := KindOutcome{Kind: kind, Entity: kind.String()}
		res, err := r.migrators[kind].Import(ctx, req.Directory, opts)
		if err != nil {
			r.logger.Error("import failed", "entity", kind.String(), "mode", mode, "error", err)
			outcome.Error = err.Error()
		} else {
			r.logger.Info("import complete",
				"entity", kind.String(), "mode", mode,
				"created", res.Created, "updated", res.Updated,
				"skipped", res.Skipped, "failed", res.Failed)
			outcome.Import = &res
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
