package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"mcmigrate/internal/migrate"
)

// maxDiagnostics caps the error detail printed per entity kind; the full
// list is always available via --output json.
const maxDiagnostics = 10

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isStdinTTY reports whether stdin is an interactive terminal.
func isStdinTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printReport renders a run report in the requested format and returns an
// error when any requested kind failed, so the process exit code reflects
// the run outcome.
func printReport(w io.Writer, report migrate.Report, output string) error {
	if output == "json" {
		if err := printJSON(w, report); err != nil {
			return err
		}
	} else {
		printReportText(w, report)
	}
	if !report.OK() {
		return fmt.Errorf("%s completed with failures", report.Operation)
	}
	return nil
}

func printReportText(w io.Writer, report migrate.Report) {
	fmt.Fprintf(w, "\nSummary (%s):\n", report.Operation)
	for _, o := range report.Outcomes {
		status := "ok"
		if !o.OK() {
			status = "FAILED"
		}
		switch {
		case o.Export != nil:
			fmt.Fprintf(w, "  [%s] %s: %d exported -> %s\n", status, o.Entity, o.Export.Count, o.Export.File)
		case o.Import != nil:
			mode := ""
			if o.Import.DryRun {
				mode = " (dry-run)"
			}
			fmt.Fprintf(w, "  [%s] %s%s: %d created, %d updated, %d skipped, %d failed\n",
				status, o.Entity, mode, o.Import.Created, o.Import.Updated, o.Import.Skipped, o.Import.Failed)
			printDiagnostics(w, o.Import.Errors)
		case o.Validation != nil:
			fmt.Fprintf(w, "  [%s] %s: %d entities, %d issue(s)\n", status, o.Entity, o.Validation.Count, len(o.Validation.Issues))
			var msgs []string
			for _, is := range o.Validation.Issues {
				msgs = append(msgs, is.String())
			}
			printDiagnostics(w, msgs)
			for _, warn := range o.Validation.Warnings {
				fmt.Fprintf(w, "      warning: %s\n", warn)
			}
		default:
			fmt.Fprintf(w, "  [%s] %s: %s\n", status, o.Entity, o.Error)
		}
		if o.Error != "" && (o.Export != nil || o.Import != nil || o.Validation != nil) {
			fmt.Fprintf(w, "      error: %s\n", o.Error)
		}
	}
}

func printDiagnostics(w io.Writer, msgs []string) {
	for i, msg := range msgs {
		if i == maxDiagnostics {
			fmt.Fprintf(w, "      ... and %d more\n", len(msgs)-maxDiagnostics)
			return
		}
		fmt.Fprintf(w, "      - %s\n", msg)
	}
}
