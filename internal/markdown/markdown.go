// Package markdown converts section markdown files into the rich-text block
// representation the document renderer consumes.
package markdown

import (
	"os"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

// Style is the run-level formatting preserved from markdown.
type Style struct {
	Bold   bool
	Italic bool
	Code   bool
}

// Run is a contiguous span of text with one style.
type Run struct {
	Text  string
	Style Style
}

// Paragraph is one block-level element. Heading 0 means body text;
// 1..6 map to heading levels.
type Paragraph struct {
	Heading int
	Runs    []Run
}

// Block is the rich-text value bound under a section key.
type Block struct {
	Paragraphs []Paragraph
}

// PlainText flattens the block for text-integrity checks and for inline
// substitution where paragraph structure cannot be kept.
func (b *Block) PlainText() string {
	parts := make([]string, 0, len(b.Paragraphs))
	for _, p := range b.Paragraphs {
		var sb strings.Builder
		for _, r := range p.Runs {
			sb.WriteString(r.Text)
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n")
}

// LoadSection reads and converts one section file. A missing or unreadable
// file is a ContentError carrying the section name and path.
func LoadSection(section, path string) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dberrors.SectionNotFound(section, path)
		}
		return nil, dberrors.SectionUnreadable(section, path, err)
	}
	return Convert(data)
}

// Convert parses markdown source into a Block. Input is NFC-normalized
// first so byte-level document comparisons do not depend on how the source
// file encoded combining characters.
func Convert(src []byte) (*Block, error) {
	src = norm.NFC.Bytes(src)
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	b := &Block{}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b.Paragraphs = append(b.Paragraphs, convertBlockNode(n, src)...)
	}
	return b, nil
}

func convertBlockNode(n gmast.Node, src []byte) []Paragraph {
	switch node := n.(type) {
	case *gmast.Heading:
		return []Paragraph{{Heading: node.Level, Runs: inlineRuns(node, src, Style{})}}
	case *gmast.Paragraph, *gmast.TextBlock:
		return []Paragraph{{Runs: inlineRuns(n, src, Style{})}}
	case *gmast.List:
		var out []Paragraph
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				ps := convertBlockNode(child, src)
				for i := range ps {
					if len(ps[i].Runs) > 0 {
						ps[i].Runs = append([]Run{{Text: "• "}}, ps[i].Runs...)
					}
				}
				out = append(out, ps...)
			}
		}
		return out
	case *gmast.FencedCodeBlock, *gmast.CodeBlock:
		var out []Paragraph
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(src)), "\n")
			out = append(out, Paragraph{Runs: []Run{{Text: line, Style: Style{Code: true}}}})
		}
		return out
	case *gmast.Blockquote:
		var out []Paragraph
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			out = append(out, convertBlockNode(child, src)...)
		}
		return out
	case *gmast.ThematicBreak:
		return nil
	default:
		if runs := inlineRuns(n, src, Style{}); len(runs) > 0 {
			return []Paragraph{{Runs: runs}}
		}
		return nil
	}
}

// inlineRuns flattens inline children into styled runs. Soft and hard line
// breaks become single spaces; WordProcessingML has no in-run newline.
func inlineRuns(parent gmast.Node, src []byte, style Style) []Run {
	var runs []Run
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.Text:
			runs = append(runs, Run{Text: string(node.Segment.Value(src)), Style: style})
			if node.SoftLineBreak() || node.HardLineBreak() {
				runs = append(runs, Run{Text: " ", Style: style})
			}
		case *gmast.String:
			runs = append(runs, Run{Text: string(node.Value), Style: style})
		case *gmast.Emphasis:
			st := style
			if node.Level >= 2 {
				st.Bold = true
			} else {
				st.Italic = true
			}
			runs = append(runs, inlineRuns(node, src, st)...)
		case *gmast.CodeSpan:
			st := style
			st.Code = true
			runs = append(runs, inlineRuns(node, src, st)...)
		case *gmast.Link:
			runs = append(runs, inlineRuns(node, src, style)...)
		case *gmast.AutoLink:
			runs = append(runs, Run{Text: string(node.URL(src)), Style: style})
		case *gmast.Image:
			// Alt text only; markdown images inside sections are not embedded.
			runs = append(runs, inlineRuns(node, src, style)...)
		default:
			runs = append(runs, inlineRuns(n, src, style)...)
		}
	}
	return mergeRuns(runs)
}

// mergeRuns joins adjacent runs with identical style so the generated
// document XML is minimal and stable.
func mergeRuns(runs []Run) []Run {
	if len(runs) < 2 {
		return runs
	}
	out := runs[:1]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.Style == last.Style {
			last.Text += r.Text
		} else {
			out = append(out, r)
		}
	}
	return out
}
