package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newMonitorsCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "Namespace-scoped monitor operations",
		Long:  "Bulk operations on monitors previously imported under a namespace: delete the whole set, or convert it to UI-managed monitors.",
	}
	cmd.AddCommand(newMonitorsDeleteCmd(s), newMonitorsConvertCmd(s))
	return cmd
}

// confirmDestructive prompts before a live destructive monitor operation.
// Returns false when the operator declines.
func confirmDestructive(cmd *cobra.Command, prompt string, autoApprove bool) (bool, error) {
	if autoApprove {
		return true, nil
	}
	if !isStdinTTY() {
		return false, fmt.Errorf("confirmation required but stdin is not a terminal; use --auto-approve")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

func newMonitorsDeleteCmd(s *settings) *cobra.Command {
	var (
		namespace   string
		force       string
		autoApprove bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete every monitor in a namespace",
		Long:  "Removes all monitors labeled with the namespace, typically to roll back a migration. Dry-run unless --force yes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun := !strings.EqualFold(force, "yes")
			if !dryRun {
				ok, err := confirmDestructive(cmd,
					fmt.Sprintf("About to delete every monitor in namespace %q. Continue?", namespace), autoApprove)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Delete cancelled.")
					return nil
				}
			}

			n, err := s.runner().Monitors().DeleteNamespace(cmd.Context(), namespace, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d monitor(s) would be deleted from namespace %q.\n", n, namespace)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d monitor(s) from namespace %q.\n", n, namespace)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace to delete monitors from (required)")
	cmd.Flags().StringVar(&force, "force", "", `Pass "yes" to commit; anything else is a dry run`)
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip the interactive confirmation")
	_ = cmd.MarkFlagRequired("namespace")
	return cmd
}

func newMonitorsConvertCmd(s *settings) *cobra.Command {
	var (
		namespace   string
		force       string
		autoApprove bool
	)

	cmd := &cobra.Command{
		Use:   "convert-to-ui",
		Short: "Convert a namespace's monitors to UI-managed (irreversible)",
		Long: "Converts every code-managed monitor in the namespace to a UI-editable monitor.\n" +
			"This is one-way: converted monitors move to the implicit \"ui\" namespace and can no longer be\n" +
			"addressed, deleted, or re-converted by this namespace. Dry-run unless --force yes.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun := !strings.EqualFold(force, "yes")
			if !dryRun {
				ok, err := confirmDestructive(cmd,
					fmt.Sprintf("Converting namespace %q to UI-managed monitors cannot be undone. Continue?", namespace), autoApprove)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Convert cancelled.")
					return nil
				}
			}

			n, err := s.runner().Monitors().ConvertToUI(cmd.Context(), namespace, dryRun)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Dry run: %d monitor(s) would be converted from namespace %q.\n", n, namespace)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d monitor(s); namespace %q no longer addresses them.\n", n, namespace)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace whose monitors to convert (required)")
	cmd.Flags().StringVar(&force, "force", "", `Pass "yes" to commit; anything else is a dry run`)
	cmd.Flags().BoolVar(&autoApprove, "auto-approve", false, "Skip the interactive confirmation")
	_ = cmd.MarkFlagRequired("namespace")
	return cmd
}
