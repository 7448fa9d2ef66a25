package helpers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOutputDirRetainedWhenKeepSet(t *testing.T) {
	var dir string
	t.Run("produce", func(t *testing.T) {
		t.Setenv(KeepTestOutputEnv, "1")
		dir = OutputDir(t, "doc-builder-helpers-*")
		if err := os.WriteFile(filepath.Join(dir, "artifact.docx"), []byte("x"), 0o644); err != nil {
			t.Fatalf("write artifact: %v", err)
		}
	})

	if _, err := os.Stat(filepath.Join(dir, "artifact.docx")); err != nil {
		t.Fatalf("expected artifact to survive with %s set: %v", KeepTestOutputEnv, err)
	}
	_ = os.RemoveAll(dir)
}

func TestOutputDirRemovedByDefault(t *testing.T) {
	var dir string
	t.Run("produce", func(t *testing.T) {
		t.Setenv(KeepTestOutputEnv, "")
		dir = OutputDir(t, "doc-builder-helpers-*")
	})

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected output dir to be removed, stat err: %v", err)
	}
}
