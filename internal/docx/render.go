package docx

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
	"git.home.luguber.info/inful/doc-builder/internal/markdown"
)

// Context is the resolved content mapping placeholders evaluate against.
// Values are scalars, *markdown.Block rich text, or nested maps
// (computed.*, stats.*). Built once per report; never mutated by Render.
type Context map[string]any

// Options carries rendering knobs.
type Options struct {
	// ImageWidthInches sizes embedded images in the document.
	ImageWidthInches float64
}

var (
	// Paragraphs never nest in WordprocessingML, so a lazy match per
	// opening tag is safe. <w:pPr>, <w:pict> etc. don't match: the name
	// must end right after "w:p".
	paragraphRe   = regexp.MustCompile(`(?s)<w:p(?:\s[^>]*)?>.*?</w:p>`)
	runTextRe     = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>`)
	paraPropsRe   = regexp.MustCompile(`(?s)^<w:p(?:\s[^>]*)?>\s*(<w:pPr(?:\s[^>]*)?>.*?</w:pPr>)`)
	runPropsRe    = regexp.MustCompile(`(?s)<w:rPr(?:\s[^>]*)?>.*?</w:rPr>`)
	placeholderRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)
	imageMarkerRe = regexp.MustCompile(`\{\$\s*img:([A-Za-z0-9_.\-]+)\s*\$\}`)
)

// Render resolves every placeholder in the document against ctx and the
// generated images (placeholder key -> image file path). It fails without
// touching the template parts' validity: callers only Save on success.
func (t *Template) Render(ctx Context, images map[string]string, opts Options) error {
	if opts.ImageWidthInches <= 0 {
		opts.ImageWidthInches = 5.0
	}

	doc := string(t.parts[documentPart])
	var renderErr error
	out := paragraphRe.ReplaceAllStringFunc(doc, func(par string) string {
		if renderErr != nil {
			return par
		}
		replaced, err := t.renderParagraph(par, ctx, images, opts)
		if err != nil {
			renderErr = err
			return par
		}
		return replaced
	})
	if renderErr != nil {
		return renderErr
	}
	t.setPart(documentPart, []byte(out))
	return nil
}

// renderParagraph rewrites a single paragraph when it contains placeholder
// syntax; otherwise it is returned byte-for-byte.
func (t *Template) renderParagraph(par string, ctx Context, images map[string]string, opts Options) (string, error) {
	text := paragraphText(par)
	if !strings.Contains(text, "{{") && !imageMarkerRe.MatchString(text) {
		return par, nil
	}

	pPr := ""
	if m := paraPropsRe.FindStringSubmatch(par); m != nil {
		pPr = m[1]
	}
	rPr := ""
	if m := runPropsRe.FindString(par); m != "" {
		rPr = m
	}

	// Image markers take the paragraph over: the marker is removed and the
	// drawing run appended after whatever text remains.
	if m := imageMarkerRe.FindStringSubmatch(text); m != nil {
		key := m[1]
		path, ok := images[key]
		if !ok {
			return "", dberrors.ImageKeyUnbound(key)
		}
		remaining := strings.TrimSpace(strings.Replace(text, m[0], "", 1))
		remaining, err := t.substituteExpressions(remaining, ctx)
		if err != nil {
			return "", err
		}
		drawing, err := t.embedImage(path, opts.ImageWidthInches)
		if err != nil {
			return "", err
		}
		var sb strings.Builder
		sb.WriteString("<w:p>")
		sb.WriteString(pPr)
		if remaining != "" {
			sb.WriteString(runXML(rPr, remaining))
		}
		sb.WriteString(drawing)
		sb.WriteString("</w:p>")
		return sb.String(), nil
	}

	// A rich-text value occupying the entire paragraph expands to the
	// block's own paragraph list, styles included.
	if m := placeholderRe.FindStringSubmatch(text); m != nil && strings.TrimSpace(text) == strings.TrimSpace(m[0]) {
		val, err := evaluate(strings.TrimSpace(m[1]), ctx)
		if err != nil {
			return "", placeholderError(strings.TrimSpace(m[1]), err)
		}
		if block, ok := val.(*markdown.Block); ok {
			return blockXML(block, pPr), nil
		}
		return "<w:p>" + pPr + runXML(rPr, formatValue(val)) + "</w:p>", nil
	}

	replaced, err := t.substituteExpressions(text, ctx)
	if err != nil {
		return "", err
	}
	return "<w:p>" + pPr + runXML(rPr, replaced) + "</w:p>", nil
}

// substituteExpressions resolves every inline `{{ expr }}` in text.
func (t *Template) substituteExpressions(text string, ctx Context) (string, error) {
	var evalErr error
	out := placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		if evalErr != nil {
			return m
		}
		src := strings.TrimSpace(m[2 : len(m)-2])
		val, err := evaluate(src, ctx)
		if err != nil {
			evalErr = placeholderError(src, err)
			return m
		}
		return formatValue(val)
	})
	if evalErr != nil {
		return "", evalErr
	}
	return out, nil
}

func placeholderError(src string, err error) error {
	if errors.Is(err, errUnresolved) {
		return dberrors.PlaceholderUnresolved(src)
	}
	return dberrors.PlaceholderEvalFailed(src, err)
}

// paragraphText concatenates the unescaped contents of a paragraph's w:t
// elements, coalescing placeholder text the editor may have split across
// runs.
func paragraphText(par string) string {
	var sb strings.Builder
	for _, m := range runTextRe.FindAllStringSubmatch(par, -1) {
		sb.WriteString(unescapeXML(m[1]))
	}
	return sb.String()
}

// runXML builds a single run carrying the given (possibly empty) run
// properties and literal text.
func runXML(rPr, text string) string {
	return `<w:r>` + rPr + `<w:t xml:space="preserve">` + escapeXML(text) + `</w:t></w:r>`
}

// blockXML renders a rich-text block as a sequence of paragraphs. Headings
// map onto the template's Heading styles; the host paragraph's properties
// apply to body paragraphs so the surrounding layout is kept.
func blockXML(block *markdown.Block, hostPPr string) string {
	var sb strings.Builder
	for _, p := range block.Paragraphs {
		sb.WriteString("<w:p>")
		if p.Heading > 0 {
			fmt.Fprintf(&sb, `<w:pPr><w:pStyle w:val="Heading%d"/></w:pPr>`, p.Heading)
		} else {
			sb.WriteString(hostPPr)
		}
		for _, r := range p.Runs {
			sb.WriteString(styledRunXML(r))
		}
		sb.WriteString("</w:p>")
	}
	return sb.String()
}

func styledRunXML(r markdown.Run) string {
	var props strings.Builder
	if r.Style.Bold {
		props.WriteString("<w:b/>")
	}
	if r.Style.Italic {
		props.WriteString("<w:i/>")
	}
	if r.Style.Code {
		props.WriteString(`<w:rFonts w:ascii="Consolas" w:hAnsi="Consolas"/>`)
	}
	rPr := ""
	if props.Len() > 0 {
		rPr = "<w:rPr>" + props.String() + "</w:rPr>"
	}
	return runXML(rPr, r.Text)
}
