package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"mcmigrate/internal/mc"
	"mcmigrate/internal/warehouse"
)

var dataProductHeader = []string{"data_product_name", "data_product_description", "asset_mcon"}

// DataProductMigrator migrates data products. Same row shape and upsert
// policy as domains: one row per (product, asset) pair, upsert by product
// name, asset lists merged with the destination's existing assignments.
type DataProductMigrator struct {
	api    API
	logger *slog.Logger
}

// NewDataProductMigrator creates the data_products migrator.
func NewDataProductMigrator(api API, logger *slog.Logger) *DataProductMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataProductMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *DataProductMigrator) Kind() Kind { return KindDataProducts }

// Export implements Migrator.
func (m *DataProductMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	products, err := m.api.GetDataProducts(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("query data products: %w", err)
	}

	var rows [][]string
	for _, p := range products {
		if len(p.Assets) == 0 {
			rows = append(rows, []string{p.Name, p.Description, ""})
			continue
		}
		for _, mcon := range p.Assets {
			rows = append(rows, []string{p.Name, p.Description, mcon})
		}
	}

	path := filepath.Join(dir, m.Kind().Filename())
	if err := writeCSV(path, dataProductHeader, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Count: len(rows), File: path}, nil
}

// Validate implements Migrator.
func (m *DataProductMigrator) Validate(_ context.Context, dir string, _ *warehouse.Resolver) ValidationResult {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), dataProductHeader)
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}
	for i, row := range rows {
		issues = append(issues, requireFields(i+1, []string{"data_product_name"}, []string{row[0]})...)
	}
	res := ValidationResult{Valid: len(issues) == 0, Count: len(rows), Issues: issues}
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, "file contains no data products")
	}
	return res
}

// Import implements Migrator.
func (m *DataProductMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), dataProductHeader)
	if err != nil {
		return ImportResult{DryRun: opts.DryRun}, fmt.Errorf("read data products: %w", err)
	}

	res := ImportResult{DryRun: opts.DryRun}
	for _, is := range issues {
		res.Failed++
		res.Errors = append(res.Errors, is.String())
	}

	type productRows struct {
		description string
		assets      []string
	}
	grouped := make(map[string]*productRows)
	var order []string
	for _, row := range rows {
		name, desc, mcon := row[0], row[1], row[2]
		if name == "" {
			continue
		}
		g, ok := grouped[name]
		if !ok {
			g = &productRows{description: desc}
			grouped[name] = g
			order = append(order, name)
		}
		if g.description == "" {
			g.description = desc
		}
		if mcon != "" {
			g.assets = append(g.assets, mcon)
		}
	}

	existing, err := m.api.GetDataProducts(ctx)
	if err != nil {
		return res, fmt.Errorf("query existing data products: %w", err)
	}
	existingByName := make(map[string]mc.DataProduct, len(existing))
	for _, p := range existing {
		existingByName[p.Name] = p
	}

	for _, name := range order {
		g := grouped[name]
		prev, exists := existingByName[name]

		p := mc.DataProduct{Name: name, Description: g.description}
		if exists {
			p.UUID = prev.UUID
			if p.Description == "" {
				p.Description = prev.Description
			}
			p.Assets = mergeUnique(prev.Assets, g.assets)
		} else {
			p.Assets = mergeUnique(nil, g.assets)
		}

		if opts.DryRun {
			if exists {
				res.Updated++
			} else {
				res.Created++
			}
			continue
		}
		if err := m.api.CreateOrUpdateDataProduct(ctx, p); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("data product %q: %v", name, err))
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
