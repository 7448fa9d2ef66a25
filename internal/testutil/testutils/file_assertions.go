package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

// FileAssertions checks generated output trees relative to a base directory.
// Methods chain so a test can assert a whole report layout in one statement.
type FileAssertions struct {
	t       *testing.T
	baseDir string
}

// NewFileAssertions creates a file assertions helper rooted at baseDir.
func NewFileAssertions(t *testing.T, baseDir string) *FileAssertions {
	return &FileAssertions{t: t, baseDir: baseDir}
}

// AssertFileExists validates that a regular file exists.
func (fa *FileAssertions) AssertFileExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	info, err := os.Stat(fullPath)
	switch {
	case os.IsNotExist(err):
		fa.t.Errorf("Expected file to exist: %s", fullPath)
	case err == nil && info.IsDir():
		fa.t.Errorf("Expected %s to be a file, but it's a directory", fullPath)
	}
	return fa
}

// AssertFileMissing validates that nothing exists at the path. Failed
// pipelines must not leave partial output behind.
func (fa *FileAssertions) AssertFileMissing(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if _, err := os.Stat(fullPath); err == nil {
		fa.t.Errorf("Expected no file at: %s", fullPath)
	}
	return fa
}

// AssertDirExists validates that a directory exists.
func (fa *FileAssertions) AssertDirExists(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	if stat, err := os.Stat(fullPath); os.IsNotExist(err) {
		fa.t.Errorf("Expected directory to exist: %s", fullPath)
	} else if err == nil && !stat.IsDir() {
		fa.t.Errorf("Expected %s to be a directory, but it's a file", fullPath)
	}
	return fa
}

// AssertNonEmpty validates that a file exists and has content. Useful for
// generated PNGs where the exact bytes are covered elsewhere.
func (fa *FileAssertions) AssertNonEmpty(relativePath string) *FileAssertions {
	fa.t.Helper()
	fullPath := filepath.Join(fa.baseDir, relativePath)
	info, err := os.Stat(fullPath)
	if err != nil {
		fa.t.Errorf("Failed to stat %s: %v", fullPath, err)
		return fa
	}
	if info.Size() == 0 {
		fa.t.Errorf("Expected %s to be non-empty", fullPath)
	}
	return fa
}
