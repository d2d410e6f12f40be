package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"mcmigrate/internal/migrate"
	"mcmigrate/internal/warehouse"
)

func newValidateCmd(s *settings) *cobra.Command {
	var (
		entities     string
		dir          string
		warehouseMap string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate migration files before importing",
		Long:  "Parses every entity file, reports all schema and reference issues, and checks mapped destination warehouses with read-only lookups. Never mutates the destination.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			report := s.runner().Run(cmd.Context(), migrate.Request{
				Operation:    migrate.OpValidate,
				Kinds:        migrate.ParseKinds(entities, slog.Default()),
				Directory:    dir,
				Profile:      s.profile,
				WarehouseMap: warehouse.ParseInline(warehouseMap, slog.Default()),
			})
			return printReport(cmd.OutOrStdout(), report, s.output)
		},
	}

	cmd.Flags().StringVar(&entities, "entities", "all", "Comma-separated entity kinds to validate (or 'all')")
	cmd.Flags().StringVar(&dir, "dir", defaultDirectory, "Input directory")
	cmd.Flags().StringVar(&warehouseMap, "warehouse-map", "", `Inline warehouse mapping "src1=dst1,src2=dst2" (overrides warehouse_mapping.json)`)
	return cmd
}
