package migrate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestFilename is written next to the entity files at export time.
const ManifestFilename = "migration_manifest.json"

// Manifest records what an export produced. It is purely informational:
// import and validate consult it when present but fall back to each kind's
// conventional filename when it is missing or unreadable.
type Manifest struct {
	ExportTimestamp string                   `json:"export_timestamp"`
	SourceProfile   string                   `json:"source_profile"`
	Entities        map[string]ManifestEntry `json:"entities"`
}

// ManifestEntry describes one exported entity file.
type ManifestEntry struct {
	File       string `json:"file"`
	Count      int    `json:"count"`
	ExportedAt string `json:"exported_at"`
}

// WriteManifest writes the manifest for a completed export run.
func WriteManifest(dir, profile string, results map[Kind]ExportResult) error {
	now := time.Now().Format(time.RFC3339)
	m := Manifest{
		ExportTimestamp: now,
		SourceProfile:   profile,
		Entities:        make(map[string]ManifestEntry, len(results)),
	}
	for kind, res := range results {
		m.Entities[kind.String()] = ManifestEntry{
			File:       filepath.Base(res.File),
			Count:      res.Count,
			ExportedAt: now,
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFilename)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from dir. Both a missing file and corrupt
// JSON return (nil, error); callers treat any error as "no manifest" and
// fall back to conventional filenames.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFilename))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// entityFile resolves the file path for a kind: the manifest's recorded
// name when one is available, the conventional name otherwise.
func entityFile(dir string, kind Kind) string {
	if m, err := ReadManifest(dir); err == nil {
		if e, ok := m.Entities[kind.String()]; ok && e.File != "" {
			return filepath.Join(dir, e.File)
		}
	}
	return filepath.Join(dir, kind.Filename())
}
