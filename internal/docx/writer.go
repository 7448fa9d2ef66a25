package docx

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

const corePart = "docProps/core.xml"

var (
	coreCreatedRe  = regexp.MustCompile(`(?s)<dcterms:created[^>]*>.*?</dcterms:created>`)
	coreModifiedRe = regexp.MustCompile(`(?s)<dcterms:modified[^>]*>.*?</dcterms:modified>`)
	coreRevisionRe = regexp.MustCompile(`(?s)<cp:revision>.*?</cp:revision>`)
)

// Save writes the document to path, byte-stable across runs: parts keep the
// template's order (new media appended in embed order), every zip entry
// carries a zeroed timestamp, and the core properties are pinned to epoch.
// The file is written atomically via a rename so a failed render never
// leaves a partial document.
func (t *Template) Save(path string, epoch time.Time) error {
	t.pinCoreProperties(epoch)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return dberrors.OutputWriteFailed(path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docbuild-*")
	if err != nil {
		return dberrors.OutputWriteFailed(path, err)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	for _, name := range t.order {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
			// Zero modification time; the DOS timestamp field is
			// constant regardless of when the build ran.
			Modified: time.Time{},
		})
		if err != nil {
			return dberrors.OutputWriteFailed(path, err)
		}
		if _, err := w.Write(t.parts[name]); err != nil {
			return dberrors.OutputWriteFailed(path, err)
		}
	}
	if err := zw.Close(); err != nil {
		return dberrors.OutputWriteFailed(path, err)
	}
	if err := tmp.Close(); err != nil {
		return dberrors.OutputWriteFailed(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return dberrors.OutputWriteFailed(path, err)
	}
	return nil
}

// pinCoreProperties fixes creation/modification stamps and the revision so
// byte comparisons don't depend on the machine or the wall clock.
func (t *Template) pinCoreProperties(epoch time.Time) {
	core, ok := t.parts[corePart]
	if !ok {
		return
	}
	stamp := epoch.UTC().Format("2006-01-02T15:04:05Z")
	s := string(core)
	s = coreCreatedRe.ReplaceAllString(s,
		fmt.Sprintf(`<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, stamp))
	s = coreModifiedRe.ReplaceAllString(s,
		fmt.Sprintf(`<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, stamp))
	s = coreRevisionRe.ReplaceAllString(s, `<cp:revision>1</cp:revision>`)
	t.parts[corePart] = []byte(s)
}
