// Package helpers provides shared test fixtures: minimal .docx templates,
// study directories, and artifact retention controls.
package helpers

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// KeepTestOutputEnv retains generated artifacts after a test run when set.
const KeepTestOutputEnv = "KEEP_TEST_OUTPUT"

// KeepArtifacts reports whether test output should survive the run.
func KeepArtifacts() bool {
	return os.Getenv(KeepTestOutputEnv) != ""
}

// CleanupDir removes dir when the test finishes unless KEEP_TEST_OUTPUT is
// set, mirroring the retention switch of the production test suite.
func CleanupDir(t *testing.T, dir string) {
	t.Helper()
	t.Cleanup(func() {
		if KeepArtifacts() {
			t.Logf("keeping test output in %s", dir)
			return
		}
		_ = os.RemoveAll(dir)
	})
}

// OutputDir creates a directory for generated documents and images. Unlike
// t.TempDir, the directory survives the run when KEEP_TEST_OUTPUT is set so
// failures can be inspected by opening the artifacts.
func OutputDir(t *testing.T, pattern string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		t.Fatalf("create output dir: %v", err)
	}
	CleanupDir(t, dir)
	return dir
}

const docxNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
	`</Types>`

const rootRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
	`</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

const corePropsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
	`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
	`<dc:creator>doc-builder</dc:creator>` +
	`<cp:revision>4</cp:revision>` +
	`<dcterms:created xsi:type="dcterms:W3CDTF">2024-05-01T10:00:00Z</dcterms:created>` +
	`<dcterms:modified xsi:type="dcterms:W3CDTF">2024-05-02T12:30:00Z</dcterms:modified>` +
	`</cp:coreProperties>`

func escapeXML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

// WriteTemplate writes a minimal but structurally valid .docx template.
// Each element of paragraphs is a list of run texts, so tests can exercise
// placeholders split across runs the way word processors produce them.
func WriteTemplate(t *testing.T, path string, paragraphs [][]string) {
	t.Helper()

	var body strings.Builder
	for _, runs := range paragraphs {
		body.WriteString("<w:p>")
		for _, text := range runs {
			body.WriteString(`<w:r><w:t xml:space="preserve">`)
			body.WriteString(escapeXML(text))
			body.WriteString(`</w:t></w:r>`)
		}
		body.WriteString("</w:p>")
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + docxNamespaces + `><w:body>` + body.String() +
		`<w:sectPr/></w:body></w:document>`

	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", rootRelsXML},
		{"docProps/core.xml", corePropsXML},
		{"word/document.xml", document},
		{"word/_rels/document.xml.rels", documentRelsXML},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create template dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", p.name, err)
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			t.Fatalf("write zip entry %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close template zip: %v", err)
	}
}

// SimpleTemplate writes a template with one single-run paragraph per entry.
func SimpleTemplate(t *testing.T, path string, paragraphs ...string) {
	t.Helper()
	pp := make([][]string, len(paragraphs))
	for i, p := range paragraphs {
		pp[i] = []string{p}
	}
	WriteTemplate(t, path, pp)
}
