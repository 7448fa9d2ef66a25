// Package docx implements the deterministic .docx template engine: inline
// expression placeholders, structured image placeholders, rich-text section
// expansion, and byte-stable output.
//
// The engine works directly on the WordprocessingML parts inside the
// template archive. Only paragraphs containing a recognized placeholder are
// rewritten; every other byte of the template passes through untouched,
// which is what keeps unrecognized markup intact and output reproducible.
package docx

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

const documentPart = "word/document.xml"

// Template is an opened .docx template: the full set of archive parts in
// their original order, mutated in place by Render.
type Template struct {
	path  string
	parts map[string][]byte
	order []string

	nextImage int
}

// Open reads the .docx archive at path into memory.
func Open(path string) (*Template, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, dberrors.TemplateInvalid(path, err)
	}
	defer r.Close()

	t := &Template{
		path:  path,
		parts: make(map[string][]byte, len(r.File)),
	}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, dberrors.TemplateInvalid(path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, dberrors.TemplateInvalid(path, err)
		}
		t.parts[f.Name] = data
		t.order = append(t.order, f.Name)
	}
	if _, ok := t.parts[documentPart]; !ok {
		return nil, dberrors.TemplateInvalid(path, fmt.Errorf("missing %s", documentPart))
	}
	return t, nil
}

// Part returns a raw archive part (nil when absent). Exposed for tests.
func (t *Template) Part(name string) []byte {
	return t.parts[name]
}

func (t *Template) setPart(name string, data []byte) {
	if _, ok := t.parts[name]; !ok {
		t.order = append(t.order, name)
	}
	t.parts[name] = data
}

// escapeXML escapes text for insertion into a w:t element.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// unescapeXML reverses the five predefined XML entities.
func unescapeXML(s string) string {
	return xmlUnescaper.Replace(s)
}

var (
	xmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	xmlUnescaper = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
)
