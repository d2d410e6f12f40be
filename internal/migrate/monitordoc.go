package migrate

import (
	"crypto/md5"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"mcmigrate/internal/warehouse"
)

// Monitor type group names within the document.
const (
	MonitorTypeMetric    = "metric"
	MonitorTypeCustomSQL = "custom_sql"
	MonitorTypeTable     = "table"
)

// MonitorSpec is one monitor entry. Fields the migration does not interpret
// (thresholds, schedules, SQL, comparisons) ride along in Extra so exports
// round-trip untouched.
type MonitorSpec struct {
	Name      string         `yaml:"name,omitempty"`
	Warehouse string         `yaml:"warehouse,omitempty"`
	Extra     map[string]any `yaml:",inline"`
}

// MonitorGroups holds monitors grouped by type under the document root.
type MonitorGroups struct {
	Metric    []MonitorSpec `yaml:"metric,omitempty"`
	CustomSQL []MonitorSpec `yaml:"custom_sql,omitempty"`
	Table     []MonitorSpec `yaml:"table,omitempty"`
}

// MonitorDocument is the monitors-as-code file: monitor definitions grouped
// by type under the `montecarlo` root key.
type MonitorDocument struct {
	Montecarlo MonitorGroups `yaml:"montecarlo"`
}

// LoadMonitorDocument reads and parses a monitors YAML file. A file without
// the `montecarlo` root key is rejected.
func LoadMonitorDocument(path string) (*MonitorDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Probe for the root key first so a structurally foreign file gets a
	// clear message instead of an empty document.
	var probe struct {
		Montecarlo *MonitorGroups `yaml:"montecarlo"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if probe.Montecarlo == nil {
		return nil, fmt.Errorf("parse %s: missing 'montecarlo' root key", path)
	}
	return &MonitorDocument{Montecarlo: *probe.Montecarlo}, nil
}

// Marshal renders the document as YAML.
func (d *MonitorDocument) Marshal() (string, error) {
	out, err := yaml.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal monitor document: %w", err)
	}
	return string(out), nil
}

// groups returns each type group with its name, in document order.
func (d *MonitorDocument) groups() []struct {
	Type  string
	Specs *[]MonitorSpec
} {
	return []struct {
		Type  string
		Specs *[]MonitorSpec
	}{
		{MonitorTypeMetric, &d.Montecarlo.Metric},
		{MonitorTypeCustomSQL, &d.Montecarlo.CustomSQL},
		{MonitorTypeTable, &d.Montecarlo.Table},
	}
}

// Count returns the total number of monitors across all type groups.
func (d *MonitorDocument) Count() int {
	n := 0
	for _, g := range d.groups() {
		n += len(*g.Specs)
	}
	return n
}

// Warehouses returns the distinct warehouse names referenced by any
// monitor, sorted.
func (d *MonitorDocument) Warehouses() []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range d.groups() {
		for _, s := range *g.Specs {
			if s.Warehouse != "" && !seen[s.Warehouse] {
				seen[s.Warehouse] = true
				names = append(names, s.Warehouse)
			}
		}
	}
	sort.Strings(names)
	return names
}

// EnsureNames fills in a deterministic generated name for every monitor
// that lacks one. Monitor uniqueness in the destination is (account,
// namespace, name); preserving exported names makes re-imports update
// rather than delete-and-recreate, so existing names are never touched.
func (d *MonitorDocument) EnsureNames(namespace string) {
	for _, g := range d.groups() {
		for i := range *g.Specs {
			s := &(*g.Specs)[i]
			if s.Name != "" {
				continue
			}
			desc, _ := s.Extra["description"].(string)
			seed := fmt.Sprintf("%s:%s:%s:%d", desc, s.Warehouse, g.Type, i)
			digest := fmt.Sprintf("%x", md5.Sum([]byte(seed)))
			s.Name = fmt.Sprintf("%s_%s_%s", g.Type, namespace, digest[:8])
		}
	}
}

// ApplyWarehouseMapping rewrites each monitor's warehouse through the
// resolver. Monitors whose warehouse cannot be mapped are removed from the
// document and counted as skipped; the import proceeds with the rest. An
// empty resolver leaves the document untouched (same-environment import).
func (d *MonitorDocument) ApplyWarehouseMapping(wh *warehouse.Resolver) (skipped int, skippedNames []string) {
	if wh == nil || wh.Empty() {
		return 0, nil
	}
	for _, g := range d.groups() {
		kept := (*g.Specs)[:0]
		for _, s := range *g.Specs {
			if s.Warehouse == "" {
				kept = append(kept, s)
				continue
			}
			dest, ok := wh.Resolve(s.Warehouse)
			if !ok {
				skipped++
				name := s.Name
				if name == "" {
					name = fmt.Sprintf("unnamed %s monitor on %s", g.Type, s.Warehouse)
				}
				skippedNames = append(skippedNames, name)
				continue
			}
			s.Warehouse = dest
			kept = append(kept, s)
		}
		*g.Specs = kept
	}
	return skipped, skippedNames
}

// SanitizeNamespace normalizes a namespace label to the character set the
// destination accepts: colons become dashes, spaces become underscores.
func SanitizeNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	ns = strings.ReplaceAll(ns, ":", "-")
	return strings.ReplaceAll(ns, " ", "_")
}
