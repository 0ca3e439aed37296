// Package docx renders surat tugas documents from a pre-authored DOCX
// template. Placeholders use {{NAME}} delimiters, the personnel roster
// expands through a {{#petugas}}...{{/petugas}} row loop, and the
// verification QR is embedded through an image tag ({{%qrCode}}) at a fixed
// pixel size.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"suratgen/bizerror"
)

const (
	// embed sizes in pixels, fixed regardless of the raster's native size
	QrImageSizePx      = 75
	DefaultImageSizePx = 100

	emuPerPixel = 9525
)

type PetugasRow struct {
	No      int
	Nama    string
	Jabatan string
}

// FieldMap carries the template substitution values. ImageValue holds the
// qrCode tag value (artifact path or data URL); an empty value removes the
// image tag entirely.
type FieldMap struct {
	Values     map[string]string
	Petugas    []PetugasRow
	ImageTag   string
	ImageValue string
}

// InlineImage supplies the raster to embed for the image tag. Zero-length
// Data embeds a zero-length placeholder instead of failing the render.
type InlineImage struct {
	Tag      string
	Data     []byte
	WidthPx  int
	HeightPx int
}

const mediaPartName = "word/media/qr_image.png"
const relsPartName = "word/_rels/document.xml.rels"
const imageRelID = "rIdQrImage1"

// Render substitutes fields into the template and returns a complete DOCX
// binary. Any failure yields a typed error and no partial output.
func Render(template []byte, fields FieldMap, image *InlineImage) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, &bizerror.ErrRender{Cause: err}
	}

	parts := map[string][]byte{}
	order := []string{}
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &bizerror.ErrRender{Cause: err}
		}
		data, err := ioutil.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &bizerror.ErrRender{Cause: err}
		}
		parts[f.Name] = data
		order = append(order, f.Name)
	}
	if _, ok := parts["word/document.xml"]; !ok {
		return nil, &bizerror.ErrRender{Cause: errors.New("template has no word/document.xml part")}
	}

	img, err := resolveImage(fields, image)
	if err != nil {
		return nil, &bizerror.ErrRender{Cause: err}
	}

	imageEmbedded := false
	for _, name := range order {
		if !isTextPart(name) {
			continue
		}
		content := string(parts[name])
		content = normalizePlaceholders(content)
		content = expandPetugas(content, fields.Petugas)
		content = substituteValues(content, fields.Values)
		if name == "word/document.xml" {
			content, imageEmbedded = substituteImageTag(content, fields, img)
		} else {
			content, _ = substituteImageTag(content, fields, nil)
		}
		parts[name] = []byte(content)
	}

	if imageEmbedded {
		var data []byte
		if img != nil {
			data = img.Data
		}
		parts[mediaPartName] = data
		order = append(order, mediaPartName)
		if _, ok := parts[relsPartName]; !ok {
			order = append(order, relsPartName)
		}
		if err := registerImage(parts); err != nil {
			return nil, &bizerror.ErrRender{Cause: err}
		}
	}

	out, err := writeZip(parts, order)
	if err != nil {
		return nil, &bizerror.ErrRender{Cause: err}
	}
	return out, nil
}

func isTextPart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml") {
		return true
	}
	if strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml") {
		return true
	}
	return false
}

// resolveImage picks the raster to embed: explicit bytes win, a data-URL tag
// value is decoded inline, anything else (path reference without bytes)
// degrades to a zero-length placeholder.
func resolveImage(fields FieldMap, image *InlineImage) (*InlineImage, error) {
	if fields.ImageValue == "" {
		return nil, nil
	}
	if image != nil {
		resolved := *image
		if resolved.WidthPx == 0 {
			resolved.WidthPx, resolved.HeightPx = defaultSizeFor(resolved.Tag)
		}
		return &resolved, nil
	}
	width, height := defaultSizeFor(fields.ImageTag)
	if strings.HasPrefix(fields.ImageValue, "data:image") {
		idx := strings.Index(fields.ImageValue, ",")
		if idx < 0 {
			return nil, errors.New("malformed image data URL")
		}
		data, err := base64.StdEncoding.DecodeString(fields.ImageValue[idx+1:])
		if err != nil {
			// tolerate a bad payload with an empty placeholder
			data = nil
		}
		return &InlineImage{Tag: fields.ImageTag, Data: data, WidthPx: width, HeightPx: height}, nil
	}
	return &InlineImage{Tag: fields.ImageTag, WidthPx: width, HeightPx: height}, nil
}

func defaultSizeFor(tag string) (int, int) {
	if tag == "qrCode" {
		return QrImageSizePx, QrImageSizePx
	}
	return DefaultImageSizePx, DefaultImageSizePx
}

// normalizePlaceholders merges placeholders that word processors split
// across run boundaries, so that every tag is matchable as literal text.
// Only spans that do close within a short window are touched.
func normalizePlaceholders(s string) string {
	var b strings.Builder
	i := 0
	for {
		j := strings.Index(s[i:], "{{")
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		j += i
		b.WriteString(s[i:j])

		var tag strings.Builder
		k := j + 2
		closed := false
		for k < len(s) && k-j < 600 {
			if s[k] == '<' {
				g := strings.IndexByte(s[k:], '>')
				if g < 0 {
					break
				}
				k += g + 1
				continue
			}
			if strings.HasPrefix(s[k:], "}}") {
				closed = true
				k += 2
				break
			}
			tag.WriteByte(s[k])
			k++
		}
		if closed {
			b.WriteString("{{")
			b.WriteString(tag.String())
			b.WriteString("}}")
			i = k
		} else {
			b.WriteString("{{")
			i = j + 2
		}
	}
	return b.String()
}

// expandPetugas replicates the roster loop once per row. When the loop tags
// sit inside a table row the whole <w:tr> is the repeating unit, matching
// how the template lays out the roster table.
func expandPetugas(content string, rows []PetugasRow) string {
	const openTag = "{{#petugas}}"
	const closeTag = "{{/petugas}}"

	oi := strings.Index(content, openTag)
	if oi < 0 {
		return content
	}
	ci := strings.Index(content[oi:], closeTag)
	if ci < 0 {
		return content
	}
	ci += oi

	prefix, unit, suffix, ok := tableRowUnit(content, oi, ci+len(closeTag))
	if !ok {
		prefix = content[:oi]
		unit = content[oi : ci+len(closeTag)]
		suffix = content[ci+len(closeTag):]
	}
	unit = strings.ReplaceAll(unit, openTag, "")
	unit = strings.ReplaceAll(unit, closeTag, "")

	var b strings.Builder
	b.WriteString(prefix)
	for _, row := range rows {
		seg := unit
		seg = strings.ReplaceAll(seg, "{{no}}", strconv.Itoa(row.No))
		seg = strings.ReplaceAll(seg, "{{nama}}", xmlEscape(row.Nama))
		seg = strings.ReplaceAll(seg, "{{jabatan}}", xmlEscape(row.Jabatan))
		b.WriteString(seg)
	}
	b.WriteString(suffix)
	return b.String()
}

// tableRowUnit widens [oi, end) to the enclosing <w:tr> element when both
// loop tags live in the same row.
func tableRowUnit(content string, oi, end int) (prefix, unit, suffix string, ok bool) {
	trStart := strings.LastIndex(content[:oi], "<w:tr")
	if trStart < 0 {
		return "", "", "", false
	}
	// the opening tag must belong to the row the loop starts in
	if lastClose := strings.LastIndex(content[:oi], "</w:tr>"); lastClose > trStart {
		return "", "", "", false
	}
	trEnd := strings.Index(content[end:], "</w:tr>")
	if trEnd < 0 {
		return "", "", "", false
	}
	trEndAbs := end + trEnd + len("</w:tr>")
	return content[:trStart], content[trStart:trEndAbs], content[trEndAbs:], true
}

func substituteValues(content string, values map[string]string) string {
	for name, value := range values {
		content = strings.ReplaceAll(content, "{{"+name+"}}", xmlEscape(value))
	}
	return content
}

// substituteImageTag replaces {{%tag}} with an inline drawing, or removes it
// when there is nothing to embed. The drawing is emitted next to the text
// node so the run stays schema-valid.
func substituteImageTag(content string, fields FieldMap, img *InlineImage) (string, bool) {
	tag := fields.ImageTag
	if tag == "" {
		tag = "qrCode"
	}
	placeholder := "{{%" + tag + "}}"
	if !strings.Contains(content, placeholder) {
		return content, false
	}
	if img == nil {
		return strings.ReplaceAll(content, placeholder, ""), false
	}
	drawing := "</w:t>" + drawingXML(img) + "<w:t>"
	return strings.ReplaceAll(content, placeholder, drawing), true
}

func drawingXML(img *InlineImage) string {
	cx := img.WidthPx * emuPerPixel
	cy := img.HeightPx * emuPerPixel
	name := img.Tag
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf(`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="9901" name="%s"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="9901" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/>`+
		`<a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, name, name, imageRelID, cx, cy)
}

func registerImage(parts map[string][]byte) error {
	rels, ok := parts[relsPartName]
	if !ok {
		rels = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`)
	}
	relsContent := string(rels)
	relationship := `<Relationship Id="` + imageRelID + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/qr_image.png"/>`
	idx := strings.LastIndex(relsContent, "</Relationships>")
	if idx < 0 {
		return errors.New("malformed relationships part")
	}
	parts[relsPartName] = []byte(relsContent[:idx] + relationship + relsContent[idx:])

	const typesName = "[Content_Types].xml"
	types, ok := parts[typesName]
	if !ok {
		return errors.New("template has no [Content_Types].xml part")
	}
	typesContent := string(types)
	if !strings.Contains(typesContent, `Extension="png"`) {
		def := `<Default Extension="png" ContentType="image/png"/>`
		idx := strings.LastIndex(typesContent, "</Types>")
		if idx < 0 {
			return errors.New("malformed content types part")
		}
		typesContent = typesContent[:idx] + def + typesContent[idx:]
		parts[typesName] = []byte(typesContent)
	}
	return nil
}

func writeZip(parts map[string][]byte, order []string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		f, err := w.CreateHeader(header)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(f, bytes.NewReader(parts[name])); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
