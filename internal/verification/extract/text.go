package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
	"github.com/watheeq/watheeq-backend/pkg/logger"
)

// TextExtractor pulls raw text from an uploaded report document.
type TextExtractor interface {
	// ExtractText returns all page text in document order. It returns
	// the empty string when the file cannot be opened or extraction
	// fails for any reason; failures are never propagated.
	ExtractText(path string) string
}

// PDFExtractor extracts text from machine-readable PDFs. It performs no
// OCR: scanned reports with no embedded text come back empty, which puts
// the pipeline into demo mode.
type PDFExtractor struct {
	logger *logger.Logger
}

// NewPDFExtractor creates a PDF text extractor
func NewPDFExtractor(log *logger.Logger) *PDFExtractor {
	return &PDFExtractor{logger: log}
}

// ExtractText implements TextExtractor. The pdf library panics on some
// malformed files, so the recover here is part of the contract: any
// failure mode collapses to "no text".
func (e *PDFExtractor) ExtractText(path string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Interface("panic", r).Str("path", path).Msg("pdf extraction panicked")
			text = ""
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		e.logger.Warn().Err(err).Str("path", path).Msg("failed to open pdf")
		return ""
	}
	defer f.Close()

	var buf bytes.Buffer
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			e.logger.Warn().Err(err).Int("page", i).Str("path", path).Msg("failed to extract page text")
			continue
		}
		buf.WriteString(pageText)
	}

	return buf.String()
}
