// Package warehouse resolves source warehouse display names to destination
// warehouse display names for cross-environment migrations.
//
// Warehouse-scoped entities (tags, monitors) are not portable by ID across
// environments, so imports translate the exported display name through an
// operator-supplied mapping. Lookup precedence is fixed: an inline mapping
// given with the request wins over warehouse_mapping.json found in the
// import directory; with neither, every name is unmapped and dependent rows
// are skipped by the caller.
package warehouse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// MappingFilename is the operator-edited mapping consumed at import time.
	MappingFilename = "warehouse_mapping.json"
	// TemplateFilename is the placeholder mapping written at export time.
	TemplateFilename = "warehouse_mapping_template.json"
	// Placeholder marks a destination the operator has not filled in yet.
	Placeholder = "<ENTER_DESTINATION_WAREHOUSE>"
)

// mappingFile is the on-disk shape shared by the mapping and its template.
type mappingFile struct {
	Instructions string            `json:"_instructions,omitempty"`
	Mapping      map[string]string `json:"warehouse_mapping"`
}

// Resolver answers source-name -> destination-name lookups.
type Resolver struct {
	mapping map[string]string
	logger  *slog.Logger
}

// NewResolver builds a Resolver with the fixed precedence: inline mapping,
// then warehouse_mapping.json in dir, then empty. A missing or malformed
// mapping file yields an empty resolver, never an error; an import without a
// mapping simply skips every warehouse-scoped row.
func NewResolver(inline map[string]string, dir string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if len(inline) > 0 {
		logger.Info("using inline warehouse mapping", "mappings", len(inline))
		return &Resolver{mapping: inline, logger: logger}
	}
	if dir != "" {
		m := loadFile(dir, logger)
		if len(m) > 0 {
			logger.Info("using warehouse mapping file", "file", MappingFilename, "mappings", len(m))
			return &Resolver{mapping: m, logger: logger}
		}
	}
	logger.Info("no warehouse mapping provided")
	return &Resolver{mapping: map[string]string{}, logger: logger}
}

// Resolve returns the destination name for a source warehouse name. The
// second return is false when the name is unmapped or mapped to the
// template placeholder; callers must skip the dependent row, not fail.
func (r *Resolver) Resolve(source string) (string, bool) {
	dest, ok := r.mapping[source]
	if !ok || dest == "" || dest == Placeholder {
		return "", false
	}
	return dest, true
}

// Empty reports whether the resolver holds no usable mappings.
func (r *Resolver) Empty() bool {
	for _, dest := range r.mapping {
		if dest != "" && dest != Placeholder {
			return false
		}
	}
	return true
}

// Destinations returns the distinct mapped destination names, for read-only
// existence checks during validation.
func (r *Resolver) Destinations() []string {
	seen := make(map[string]bool)
	var out []string
	for _, dest := range r.mapping {
		if dest == "" || dest == Placeholder || seen[dest] {
			continue
		}
		seen[dest] = true
		out = append(out, dest)
	}
	sort.Strings(out)
	return out
}

// ParseInline parses the CLI mapping syntax "src1=dst1,src2=dst2".
// Malformed pairs are dropped with a warning rather than failing the run.
func ParseInline(s string, logger *slog.Logger) map[string]string {
	if logger == nil {
		logger = slog.Default()
	}
	mapping := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		src, dest, ok := strings.Cut(pair, "=")
		src, dest = strings.TrimSpace(src), strings.TrimSpace(dest)
		if !ok || src == "" || dest == "" {
			logger.Warn("skipping invalid warehouse mapping pair", "pair", pair)
			continue
		}
		mapping[src] = dest
	}
	return mapping
}

func loadFile(dir string, logger *slog.Logger) map[string]string {
	path := filepath.Join(dir, MappingFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("failed to read warehouse mapping file", "file", path, "error", err)
		}
		return nil
	}
	var mf mappingFile
	if err := json.Unmarshal(data, &mf); err != nil {
		logger.Warn("invalid JSON in warehouse mapping file", "file", path, "error", err)
		return nil
	}
	return mf.Mapping
}

// WriteTemplate writes warehouse_mapping_template.json covering every
// warehouse name referenced by any warehouse-scoped entity exported in the
// run, each mapped to the placeholder. One merged template per run, so the
// operator edits a single file rather than one per entity kind. Returns the
// written path, or "" when there was nothing to write.
func WriteTemplate(dir string, names []string) (string, error) {
	unique := make(map[string]bool)
	for _, n := range names {
		if n != "" {
			unique[n] = true
		}
	}
	if len(unique) == 0 {
		return "", nil
	}

	mapping := make(map[string]string, len(unique))
	for n := range unique {
		mapping[n] = Placeholder
	}

	mf := mappingFile{
		Instructions: "Replace " + Placeholder + " with the warehouse name in your target environment, " +
			"then rename this file to '" + MappingFilename + "'. " +
			"Remove any warehouses you do not want to migrate.",
		Mapping: mapping,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(mf); err != nil {
		return "", fmt.Errorf("marshal mapping template: %w", err)
	}
	path := filepath.Join(dir, TemplateFilename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write mapping template: %w", err)
	}
	return path, nil
}
