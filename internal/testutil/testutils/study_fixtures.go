package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

// Study describes a fixture study directory to materialize for a test.
type Study struct {
	Name       string
	ReportJSON string
	// Files maps relative paths to contents (markdown sections, CSVs).
	Files map[string]string
}

// WriteStudy materializes the study under root and returns its directory.
func WriteStudy(t *testing.T, root string, s Study) string {
	t.Helper()
	dir := filepath.Join(root, s.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create study dir: %v", err)
	}
	if s.ReportJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "report.json"), []byte(s.ReportJSON), 0o644); err != nil {
			t.Fatalf("write report.json: %v", err)
		}
	}
	for rel, content := range s.Files {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create study subdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write study file %s: %v", rel, err)
		}
	}
	return dir
}
