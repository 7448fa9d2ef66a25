package docx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"regexp"
	"strconv"
	"strings"

	dberrors "git.home.luguber.info/inful/doc-builder/internal/errors"
)

const (
	emuPerInch = 914400
	// Pixel dimensions are interpreted at 96 dpi, Word's default.
	emuPerPixel = emuPerInch / 96

	relsPart         = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
	imageRelType     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

var relIDRe = regexp.MustCompile(`Id="rId(\d+)"`)

// embedImage adds the PNG at path as a media part plus relationship and
// returns the drawing run XML referencing it, scaled to widthInches with
// the source aspect ratio preserved.
func (t *Template) embedImage(path string, widthInches float64) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", dberrors.OutputWriteFailed(path, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", dberrors.ImageGenerationFailed(path, err)
	}

	t.nextImage++
	n := t.nextImage
	mediaName := fmt.Sprintf("word/media/image%d.png", n)
	t.setPart(mediaName, data)

	relID := t.addImageRelationship(fmt.Sprintf("media/image%d.png", n))
	t.ensurePNGContentType()

	cx := int64(widthInches * emuPerInch)
	cy := cx * int64(cfg.Height) / int64(cfg.Width)

	return drawingRunXML(n, relID, cx, cy), nil
}

// addImageRelationship appends an image relationship to document.xml.rels
// and returns its id. Ids continue after the highest existing rId so
// template relationships are never disturbed.
func (t *Template) addImageRelationship(target string) string {
	rels := string(t.parts[relsPart])
	if rels == "" {
		rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n" +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`
	}
	maxID := 0
	for _, m := range relIDRe.FindAllStringSubmatch(rels, -1) {
		if id, err := strconv.Atoi(m[1]); err == nil && id > maxID {
			maxID = id
		}
	}
	relID := fmt.Sprintf("rId%d", maxID+1)
	entry := fmt.Sprintf(`<Relationship Id=%q Type=%q Target=%q/>`, relID, imageRelType, target)
	rels = strings.Replace(rels, "</Relationships>", entry+"</Relationships>", 1)
	t.setPart(relsPart, []byte(rels))
	return relID
}

// ensurePNGContentType registers the png default content type once.
func (t *Template) ensurePNGContentType() {
	ct := string(t.parts[contentTypesPart])
	if strings.Contains(ct, `Extension="png"`) {
		return
	}
	entry := `<Default Extension="png" ContentType="image/png"/>`
	ct = strings.Replace(ct, "</Types>", entry+"</Types>", 1)
	t.setPart(contentTypesPart, []byte(ct))
}

// drawingRunXML produces the wp:inline drawing for one embedded picture.
// The a: and pic: namespaces are declared locally so the document root
// needs no extra declarations.
func drawingRunXML(n int, relID string, cx, cy int64) string {
	name := fmt.Sprintf("image%d.png", n)
	return fmt.Sprintf(`<w:r><w:rPr><w:noProof/></w:rPr><w:drawing>`+
		`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:effectExtent l="0" t="0" r="0" b="0"/>`+
		`<wp:docPr id="%d" name="%s"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, n, name, n, name, relID, cx, cy)
}
