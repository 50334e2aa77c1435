// Package document pulls text out of uploaded documents.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"telehealth/internal/port"
)

// ErrNoText means the document has no embedded text layer, as with a scan.
var ErrNoText = errors.New("no text could be extracted from document")

// PDFTextExtractor reads the text layer of a PDF.
type PDFTextExtractor struct{}

// NewPDFTextExtractor creates a PDF text extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// ExtractText returns the plain text of every page, one page per block.
func (e *PDFTextExtractor) ExtractText(data []byte) (text string, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("reading PDF: %v", r)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading PDF: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text = strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

var _ port.TextExtractor = (*PDFTextExtractor)(nil)
