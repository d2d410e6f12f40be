package migrate

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// writeCSV writes a header plus rows. An empty export still writes the
// header so the file is recognizably the right schema.
func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

// readCSV reads a CSV file and checks the header matches the expected
// schema. Rows with the wrong field count are returned as per-row issues
// rather than aborting the read, so one pass surfaces every defect.
func readCSV(path string, wantHeader []string) (rows [][]string, issues []Issue, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // length checked per row below

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, []Issue{{Message: "file is empty (missing header)"}}, nil
	}

	header := records[0]
	if !equalHeader(header, wantHeader) {
		return nil, []Issue{{Message: fmt.Sprintf(
			"unexpected header %q, want %q",
			strings.Join(header, ","), strings.Join(wantHeader, ","),
		)}}, nil
	}

	for i, rec := range records[1:] {
		if len(rec) != len(wantHeader) {
			issues = append(issues, Issue{
				Row:     i + 1,
				Message: fmt.Sprintf("expected %d fields, got %d", len(wantHeader), len(rec)),
			})
			continue
		}
		rows = append(rows, rec)
	}
	return rows, issues, nil
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if strings.TrimSpace(got[i]) != want[i] {
			return false
		}
	}
	return true
}

// requireFields reports an issue per listed field that is blank. fields maps
// column name to value; order of reporting follows names.
func requireFields(row int, names []string, values []string) []Issue {
	var issues []Issue
	for i, name := range names {
		if strings.TrimSpace(values[i]) == "" {
			issues = append(issues, Issue{Row: row, Message: fmt.Sprintf("missing required field %q", name)})
		}
	}
	return issues
}
