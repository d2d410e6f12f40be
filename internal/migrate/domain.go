package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"mcmigrate/internal/mc"
	"mcmigrate/internal/warehouse"
)

var domainHeader = []string{"domain_name", "domain_description", "asset_mcon"}

// DomainMigrator migrates domains. The CSV is one row per (domain, asset)
// pair; a domain with no assets is a single row with a blank asset_mcon.
// Import upserts by domain name and merges asset assignments with whatever
// the destination domain already has, so re-running never drops assets.
type DomainMigrator struct {
	api    API
	logger *slog.Logger
}

// NewDomainMigrator creates the domains migrator.
func NewDomainMigrator(api API, logger *slog.Logger) *DomainMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DomainMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *DomainMigrator) Kind() Kind { return KindDomains }

// Export implements Migrator.
func (m *DomainMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	domains, err := m.api.GetAllDomains(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("query domains: %w", err)
	}

	var rows [][]string
	for _, d := range domains {
		if len(d.Assignments) == 0 {
			rows = append(rows, []string{d.Name, d.Description, ""})
			continue
		}
		for _, mcon := range d.Assignments {
			rows = append(rows, []string{d.Name, d.Description, mcon})
		}
	}

	path := filepath.Join(dir, m.Kind().Filename())
	if err := writeCSV(path, domainHeader, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Count: len(rows), File: path}, nil
}

// Validate implements Migrator.
func (m *DomainMigrator) Validate(_ context.Context, dir string, _ *warehouse.Resolver) ValidationResult {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), domainHeader)
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}
	for i, row := range rows {
		issues = append(issues, requireFields(i+1, []string{"domain_name"}, []string{row[0]})...)
	}
	res := ValidationResult{Valid: len(issues) == 0, Count: len(rows), Issues: issues}
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, "file contains no domains")
	}
	return res
}

// Import implements Migrator.
func (m *DomainMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), domainHeader)
	if err != nil {
		return ImportResult{DryRun: opts.DryRun}, fmt.Errorf("read domains: %w", err)
	}

	res := ImportResult{DryRun: opts.DryRun}
	for _, is := range issues {
		res.Failed++
		res.Errors = append(res.Errors, is.String())
	}

	// Group rows back into domains.
	type domainRows struct {
		description string
		mcons       []string
	}
	grouped := make(map[string]*domainRows)
	var order []string
	for _, row := range rows {
		name, desc, mcon := row[0], row[1], row[2]
		if name == "" {
			continue
		}
		g, ok := grouped[name]
		if !ok {
			g = &domainRows{description: desc}
			grouped[name] = g
			order = append(order, name)
		}
		if g.description == "" {
			g.description = desc
		}
		if mcon != "" {
			g.mcons = append(g.mcons, mcon)
		}
	}

	existing, err := m.api.GetAllDomains(ctx)
	if err != nil {
		return res, fmt.Errorf("query existing domains: %w", err)
	}
	existingByName := make(map[string]mc.Domain, len(existing))
	for _, d := range existing {
		existingByName[d.Name] = d
	}

	for _, name := range order {
		g := grouped[name]
		prev, exists := existingByName[name]

		d := mc.Domain{Name: name, Description: g.description}
		if exists {
			d.UUID = prev.UUID
			if d.Description == "" {
				d.Description = prev.Description
			}
			d.Assignments = mergeUnique(prev.Assignments, g.mcons)
		} else {
			d.Assignments = mergeUnique(nil, g.mcons)
		}

		if opts.DryRun {
			if exists {
				res.Updated++
			} else {
				res.Created++
			}
			continue
		}
		if err := m.api.CreateOrUpdateDomain(ctx, d); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("domain %q: %v", name, err))
			continue
		}
		if exists {
			res.Updated++
		} else {
			res.Created++
		}
	}
	return res, nil
}

// mergeUnique merges two string slices, deduplicated and sorted for
// deterministic mutation payloads.
func mergeUnique(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
