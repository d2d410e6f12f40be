package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mcmigrate/internal/migrate"
	"mcmigrate/internal/warehouse"
)

func newImportCmd(s *settings) *cobra.Command {
	var (
		entities     string
		dir          string
		force        string
		autoApprove  bool
		warehouseMap string
		namespace    string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import workspace configuration from files (dry-run by default)",
		Long: "Reads entity files and creates or updates records in the destination workspace, in dependency order.\n" +
			"Runs as a dry run unless --force yes is given: specifying the target profile alone never mutates anything.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun := !strings.EqualFold(force, "yes")

			if !dryRun && !autoApprove {
				if !isStdinTTY() {
					return fmt.Errorf("live import requires confirmation but stdin is not a terminal; use --auto-approve")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "About to modify the destination workspace (profile %q). Continue? [y/N] ", s.profile)
				reader := bufio.NewReader(os.Stdin)
				answer, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read confirmation: %w", err)
				}
				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled.")
					return nil
				}
			}

			report := s.runner().Run(cmd.Context(), migrate.Request{
				Operation:    migrate.OpImport,
				Kinds:        migrate.ParseKinds(entities, slog.Default()),
				Directory:    dir,
				Profile:      s.profile,
				DryRun:       dryRun,
				WarehouseMap: warehouse.ParseInline(warehouseMap, slog.Default()),
				Namespace:    namespace,
			})

			err := printReport(cmd.OutOrStdout(), report, s.output)
			if dryRun && s.output != "json" {
				fmt.Fprintln(cmd.OutOrStdout(), "\nThis was a dry run. To commit changes, re-run with --force yes.")
			}
			return err
		},
	}

	cmd.Flags().StringVar(&entities, "entities", "all", "Comma-separated entity kinds to import (or 'all')")
	cmd.Flags().StringVar(&dir, "dir", defaultDirectory, "Input directory")
	cmd.Flags().StringVar(&force, "force", "", `Pass "yes" to commit changes; anything else is a dry run`)
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip the interactive confirmation for live imports")
	cmd.Flags().StringVar(&warehouseMap, "warehouse-map", "", `Inline warehouse mapping "src1=dst1,src2=dst2" (overrides warehouse_mapping.json)`)
	cmd.Flags().StringVar(&namespace, "namespace", migrate.DefaultNamespace, "Namespace label for imported monitors")
	return cmd
}
