package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"mcmigrate/internal/migrate"
)

// defaultDirectory is where exports land when no directory is given.
const defaultDirectory = "./migration-data-exports"

func newExportCmd(s *settings) *cobra.Command {
	var (
		entities string
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export workspace configuration to files",
		Long:  "Queries the source workspace and writes one file per entity kind, a manifest, and a warehouse mapping template for cross-environment imports.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := s.runner().Run(cmd.Context(), migrate.Request{
				Operation: migrate.OpExport,
				Kinds:     migrate.ParseKinds(entities, slog.Default()),
				Directory: dir,
				Profile:   s.profile,
			})
			return printReport(cmd.OutOrStdout(), report, s.output)
		},
	}

	cmd.Flags().StringVar(&entities, "entities", "all", "Comma-separated entity kinds to export (or 'all')")
	cmd.Flags().StringVar(&dir, "dir", defaultDirectory, "Output directory")
	return cmd
}
