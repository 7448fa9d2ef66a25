package docx

import (
	"strings"
)

// ExtractText returns the document's visible text, one line per paragraph.
// Used by round-trip tests and the batch driver's verification hooks.
func (t *Template) ExtractText() string {
	doc := string(t.parts[documentPart])
	var lines []string
	for _, par := range paragraphRe.FindAllString(doc, -1) {
		lines = append(lines, paragraphText(par))
	}
	return strings.Join(lines, "\n")
}

// ExtractTextFromFile opens a generated document and extracts its text.
func ExtractTextFromFile(path string) (string, error) {
	t, err := Open(path)
	if err != nil {
		return "", err
	}
	return t.ExtractText(), nil
}
