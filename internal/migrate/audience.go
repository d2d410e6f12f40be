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

var audienceHeader = []string{"audience_name", "notification_type", "recipients", "recipients_display_names", "integration_id"}

// recipientSep joins multi-valued recipient columns within one CSV cell.
const recipientSep = ";"

// AudienceMigrator migrates notification audiences. Unlike every other
// kind, import is strictly create-or-skip by audience name: an audience
// that already exists in the destination is never updated, since audiences
// carry live alert routing.
type AudienceMigrator struct {
	api    API
	logger *slog.Logger
}

// NewAudienceMigrator creates the audiences migrator.
func NewAudienceMigrator(api API, logger *slog.Logger) *AudienceMigrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &AudienceMigrator{api: api, logger: logger}
}

// Kind implements Migrator.
func (m *AudienceMigrator) Kind() Kind { return KindAudiences }

// Export implements Migrator.
func (m *AudienceMigrator) Export(ctx context.Context, dir string) (ExportResult, error) {
	audiences, err := m.api.GetNotificationAudiences(ctx)
	if err != nil {
		return ExportResult{}, fmt.Errorf("query audiences: %w", err)
	}

	rows := make([][]string, 0, len(audiences))
	for _, a := range audiences {
		rows = append(rows, []string{
			a.Name,
			a.NotificationType,
			strings.Join(a.Recipients, recipientSep),
			strings.Join(a.RecipientDisplayNames, recipientSep),
			a.IntegrationID,
		})
	}

	path := filepath.Join(dir, m.Kind().Filename())
	if err := writeCSV(path, audienceHeader, rows); err != nil {
		return ExportResult{}, err
	}
	return ExportResult{Count: len(rows), File: path}, nil
}

// Validate implements Migrator.
func (m *AudienceMigrator) Validate(_ context.Context, dir string, _ *warehouse.Resolver) ValidationResult {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), audienceHeader)
	if err != nil {
		return ValidationResult{Issues: []Issue{{Message: err.Error()}}}
	}
	for i, row := range rows {
		issues = append(issues, requireFields(i+1,
			[]string{"audience_name", "notification_type"},
			[]string{row[0], row[1]})...)
	}
	res := ValidationResult{Valid: len(issues) == 0, Count: len(rows), Issues: issues}
	if len(rows) == 0 {
		res.Warnings = append(res.Warnings, "file contains no audiences")
	}
	return res
}

// Import implements Migrator.
func (m *AudienceMigrator) Import(ctx context.Context, dir string, opts ImportOptions) (ImportResult, error) {
	rows, issues, err := readCSV(entityFile(dir, m.Kind()), audienceHeader)
	if err != nil {
		return ImportResult{DryRun: opts.DryRun}, fmt.Errorf("read audiences: %w", err)
	}

	res := ImportResult{DryRun: opts.DryRun}
	for _, is := range issues {
		res.Failed++
		res.Errors = append(res.Errors, is.String())
	}

	existing, err := m.api.GetNotificationAudiences(ctx)
	if err != nil {
		return res, fmt.Errorf("query existing audiences: %w", err)
	}
	exists := make(map[string]bool, len(existing))
	for _, a := range existing {
		exists[a.Name] = true
	}

	for i, row := range rows {
		a := mc.Audience{
			Name:             row[0],
			NotificationType: row[1],
			Recipients:       splitRecipients(row[2]),
			IntegrationID:    row[4],
		}
		if a.Name == "" {
			continue
		}

		if exists[a.Name] {
			m.logger.Info("skipping audience: already exists", "audience", a.Name)
			res.Skipped++
			continue
		}

		if !opts.DryRun {
			if err := m.api.CreateAudience(ctx, a); err != nil {
				res.Failed++
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: audience %q: %v", i+1, a.Name, err))
				continue
			}
		}
		res.Created++
	}
	return res, nil
}

func splitRecipients(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, r := range strings.Split(s, recipientSep) {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
