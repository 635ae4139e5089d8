package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
)

// ErrUnsupportedType is returned for anything other than plain text or PDF.
var ErrUnsupportedType = errors.New("unsupported file type (only PDF and TXT allowed)")

// DetectType resolves the content type of an upload, falling back to the
// file extension when the client sent none.
func DetectType(filename, contentType string) (string, error) {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return "", ErrUnsupportedType
		}
		contentType = mediaType
	} else {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".txt":
			contentType = ContentTypeText
		case ".pdf":
			contentType = ContentTypePDF
		default:
			return "", ErrUnsupportedType
		}
	}

	switch contentType {
	case ContentTypeText, ContentTypePDF:
		return contentType, nil
	default:
		return "", ErrUnsupportedType
	}
}

// Text returns the readable text of an uploaded document.
func Text(filename, contentType string, content []byte) (string, error) {
	kind, err := DetectType(filename, contentType)
	if err != nil {
		return "", err
	}
	if kind == ContentTypePDF {
		return pdfText(content)
	}
	return string(content), nil
}

// pdfText joins the plain text of every page that has content. Pages whose
// content stream cannot be decoded are dropped.
func pdfText(content []byte) (string, error) {
	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	pages := make([]string, 0, doc.NumPage())
	for i := 1; i <= doc.NumPage(); i++ {
		p := doc.Page(i)
		if p.V.IsNull() || p.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
