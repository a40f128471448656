package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFParserService reads embedded text from PDF bytes without OCR.
type PDFParserService interface {
	// ExtractStructured groups text runs by baseline and emits rows top to
	// bottom, which keeps multi-column layouts in reading order.
	ExtractStructured(data []byte) (string, error)
	// ExtractGeneric concatenates each page's raw text stream.
	ExtractGeneric(data []byte) (string, error)
	PageCount(data []byte) (int, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractStructured(data []byte) (text string, err error) {
	defer recoverPDF(&err)

	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					words = append(words, s)
				}
			}
			if len(words) == 0 {
				continue
			}
			textBuilder.WriteString(strings.Join(words, " "))
			textBuilder.WriteString("\n")
		}
		textBuilder.WriteString("\n")
	}

	return CleanText(textBuilder.String()), nil
}

func (p *pdfParserService) ExtractGeneric(data []byte) (text string, err error) {
	defer recoverPDF(&err)

	r, err := openPDF(data)
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages; the remaining ones may still carry text.
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return CleanText(textBuilder.String()), nil
}

func (p *pdfParserService) PageCount(data []byte) (n int, err error) {
	defer recoverPDF(&err)

	r, err := openPDF(data)
	if err != nil {
		return 0, err
	}

	return r.NumPage(), nil
}

func openPDF(data []byte) (*pdf.Reader, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r, nil
}

// The pdf package panics on some malformed object graphs.
func recoverPDF(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("failed to read PDF: %v", r)
	}
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
