// Package extract pulls plain text out of uploaded contract files.
// Extraction is deliberately best-effort: downstream cleaning strips
// whatever artifacts survive, and the minimum-length check there rejects
// files that yielded no usable text.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedType is returned for file types the extractor cannot read.
var ErrUnsupportedType = errors.New("unsupported file type")

// Text extracts readable text from an uploaded file based on its extension.
func Text(filename string, data []byte) (string, error) {
	ext := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(ext, ".txt"):
		return fromTxt(data)
	case strings.HasSuffix(ext, ".docx"):
		return fromDocx(data)
	case strings.HasSuffix(ext, ".pdf"):
		return fromPDF(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
	}
}

func fromTxt(data []byte) (string, error) {
	if !utf8.Valid(data) {
		// Drop invalid sequences instead of failing; the cleaner enforces
		// the minimum-usable-length floor.
		return strings.ToValidUTF8(string(data), ""), nil
	}
	return string(data), nil
}

// fromDocx reads word/document.xml out of the zip container and walks the
// XML tokens, joining runs and breaking on paragraph ends.
func fromDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx container: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("docx container has no word/document.xml")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var b strings.Builder
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				b.WriteString("\n")
			}
		}
	}
	return b.String(), nil
}

var pdfTextShowRe = regexp.MustCompile(`\(((?:\\.|[^\\()])*)\)\s*T[jJ]`)

var pdfEscaper = strings.NewReplacer(`\(`, "(", `\)`, ")", `\\`, `\`, `\n`, "\n", `\t`, "\t")

// fromPDF scrapes string operands of text-showing operators from
// uncompressed content streams. Compressed streams yield little or nothing
// here; the caller surfaces that as an unreadable-document error once the
// cleaner rejects the result.
func fromPDF(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", fmt.Errorf("not a PDF file")
	}
	var b strings.Builder
	for _, m := range pdfTextShowRe.FindAllSubmatch(data, -1) {
		b.WriteString(pdfEscaper.Replace(string(m[1])))
		b.WriteString("\n")
	}
	if b.Len() > 0 {
		return b.String(), nil
	}
	// No text operators found; fall back to the printable bytes and let the
	// content cleaner decide whether anything meaningful is left.
	var fb strings.Builder
	for _, c := range data {
		if (c >= 0x20 && c <= 0x7e) || c == '\n' || c == '\t' {
			fb.WriteByte(c)
		}
	}
	return fb.String(), nil
}
