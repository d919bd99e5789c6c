// Package format converts email bodies and contract documents to plain text.
package format

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MimeText = "text/plain"
	MimeHTML = "text/html"
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrUnsupported is returned for documents that cannot be converted to text.
	ErrUnsupported = errors.New("unsupported document type")
	// ErrMalformedPDF is returned when the pdf reader gives up on a document.
	ErrMalformedPDF = errors.New("pdf: malformed document")
)

// Converter handles document format conversions.
type Converter struct{}

// Text converts a document to plain text based on its MIME type, falling
// back to the file extension for generic types such as
// application/octet-stream.
func (c Converter) Text(mimeType, fileName string, raw []byte) (string, error) {
	switch DetectType(mimeType, fileName) {
	case MimeText:
		return string(raw), nil
	case MimeHTML:
		return c.HTML2Text(raw)
	case MimePDF:
		return c.PDF2Text(raw)
	case MimeDOCX:
		return c.DOCX2Text(raw)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mimeType)
	}
}

// DetectType normalizes mimeType and resolves generic types from the file
// extension.
func DetectType(mimeType, fileName string) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimeText, MimeHTML, MimePDF, MimeDOCX:
		return clean
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".text":
		return MimeText
	case ".html", ".htm":
		return MimeHTML
	case ".pdf":
		return MimePDF
	case ".docx":
		return MimeDOCX
	}
	return clean
}

// PDF2Text extracts the plain text of every page of a PDF document. The pdf
// reader panics on some malformed documents; those are reported as errors.
func (c Converter) PDF2Text(raw []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrMalformedPDF, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("pdf.NewReader failed: %w", err)
	}

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf.GetPlainText failed: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("io.Copy failed: %w", err)
	}

	return buf.String(), nil
}

// DOCX2Text extracts paragraph text from a Word document.
func (c Converter) DOCX2Text(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("zip.NewReader failed: %w", err)
	}

	var doc *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%w: word/document.xml not found", ErrUnsupported)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("doc.Open failed: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("xml.Token failed: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				b.WriteByte('\t')
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				b.WriteByte('\n')
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
