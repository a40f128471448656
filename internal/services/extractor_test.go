package services_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
	"sjaggi1/resume-parser/mocks"
)

var longText = strings.Repeat("Senior backend engineer with Go and PostgreSQL. ", 5)

func newExtractor(pdf *mocks.MockPDFParser, ocr services.OCRService) services.TextExtractor {
	return services.NewTextExtractor(pdf, ocr, 0, zap.NewNop())
}

func TestExtract_PDFStructuredWins(t *testing.T) {
	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return(longText, nil)

	result, err := newExtractor(pdf, nil).Extract(context.Background(), models.NewRawDocument([]byte("%PDF"), "cv.pdf"), services.ExtractOptions{PerformOCR: true})

	require.NoError(t, err)
	assert.Equal(t, models.MethodStructured, result.Method)
	assert.Equal(t, len([]rune(longText)), result.CharCount)
	pdf.AssertNotCalled(t, "ExtractGeneric", mock.Anything)
}

func TestExtract_PDFFallsBackToGeneric(t *testing.T) {
	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return("too short", nil)
	pdf.On("ExtractGeneric", mock.Anything).Return(longText, nil)

	result, err := newExtractor(pdf, nil).Extract(context.Background(), models.NewRawDocument([]byte("%PDF"), "cv.pdf"), services.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, models.MethodGeneric, result.Method)
	pdf.AssertExpectations(t)
}

func TestExtract_PDFUsesOCRWhenTextLayerIsThin(t *testing.T) {
	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return("", nil)
	pdf.On("ExtractGeneric", mock.Anything).Return("", errors.New("bad stream"))

	ocr := new(mocks.MockOCRService)
	ocr.On("RecognizePDF", mock.Anything, mock.Anything).Return(longText, nil)

	result, err := newExtractor(pdf, ocr).Extract(context.Background(), models.NewRawDocument([]byte("%PDF"), "scan.pdf"), services.ExtractOptions{PerformOCR: true})

	require.NoError(t, err)
	assert.Equal(t, models.MethodOCR, result.Method)
	ocr.AssertNumberOfCalls(t, "RecognizePDF", 1)
}

func TestExtract_PDFOCRSkippedWhenDisabled(t *testing.T) {
	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return("", nil)
	pdf.On("ExtractGeneric", mock.Anything).Return("", nil)
	ocr := new(mocks.MockOCRService)

	_, err := newExtractor(pdf, ocr).Extract(context.Background(), models.NewRawDocument([]byte("%PDF"), "scan.pdf"), services.ExtractOptions{PerformOCR: false})

	assert.ErrorIs(t, err, models.ErrInsufficientText)
	ocr.AssertNotCalled(t, "RecognizePDF", mock.Anything, mock.Anything)
}

func TestExtract_PDFLongestCandidateWins(t *testing.T) {
	structured := strings.Repeat("a", 80)
	generic := strings.Repeat("b", 90)

	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return(structured, nil)
	pdf.On("ExtractGeneric", mock.Anything).Return(generic, nil)

	result, err := newExtractor(pdf, nil).Extract(context.Background(), models.NewRawDocument([]byte("%PDF"), "cv.pdf"), services.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, models.MethodGeneric, result.Method)
	assert.Equal(t, generic, result.Text)
}

func TestExtract_PDFTieKeepsCheaperMethod(t *testing.T) {
	same := strings.Repeat("c", 70)

	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return(same, nil)
	pdf.On("ExtractGeneric", mock.Anything).Return(same, nil)

	result, err := newExtractor(pdf, nil).Extract(context.Background(), models.NewRawDocument([]byte("%PDF"), "cv.pdf"), services.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, models.MethodStructured, result.Method)
}

func TestExtract_PDFAllMethodsFail(t *testing.T) {
	pdf := new(mocks.MockPDFParser)
	pdf.On("ExtractStructured", mock.Anything).Return("", errors.New("corrupt"))
	pdf.On("ExtractGeneric", mock.Anything).Return("", errors.New("corrupt"))

	_, err := newExtractor(pdf, nil).Extract(context.Background(), models.NewRawDocument([]byte("junk"), "cv.pdf"), services.ExtractOptions{})

	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestExtract_Text(t *testing.T) {
	pdf := new(mocks.MockPDFParser)

	result, err := newExtractor(pdf, nil).Extract(context.Background(), models.NewRawDocument([]byte(longText), "cv.TXT"), services.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, models.MethodGeneric, result.Method)
	assert.Equal(t, longText, result.Text)
}

func TestExtract_TextTooShort(t *testing.T) {
	_, err := newExtractor(new(mocks.MockPDFParser), nil).Extract(context.Background(), models.NewRawDocument([]byte("   hi   "), "cv.txt"), services.ExtractOptions{})

	assert.ErrorIs(t, err, models.ErrInsufficientText)
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, "Jane Doe", longText)

	result, err := newExtractor(new(mocks.MockPDFParser), nil).Extract(context.Background(), models.NewRawDocument(data, "cv.docx"), services.ExtractOptions{})

	require.NoError(t, err)
	assert.Equal(t, models.MethodStructured, result.Method)
	assert.True(t, strings.HasPrefix(result.Text, "Jane Doe\n"))
}

func TestExtract_DocxCorrupt(t *testing.T) {
	_, err := newExtractor(new(mocks.MockPDFParser), nil).Extract(context.Background(), models.NewRawDocument([]byte("not a zip"), "cv.docx"), services.ExtractOptions{})

	assert.ErrorIs(t, err, models.ErrExtraction)
}

func TestExtract_ImageNeedsOCR(t *testing.T) {
	ext := newExtractor(new(mocks.MockPDFParser), nil)

	_, err := ext.Extract(context.Background(), models.NewRawDocument([]byte{0x89}, "cv.png"), services.ExtractOptions{PerformOCR: true})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	ocr := new(mocks.MockOCRService)
	ext = newExtractor(new(mocks.MockPDFParser), ocr)
	_, err = ext.Extract(context.Background(), models.NewRawDocument([]byte{0x89}, "cv.png"), services.ExtractOptions{PerformOCR: false})
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestExtract_ImageOCR(t *testing.T) {
	ocr := new(mocks.MockOCRService)
	ocr.On("RecognizeImage", mock.Anything, []byte{0xff, 0xd8}, "image/jpeg").Return(longText, nil)

	result, err := newExtractor(new(mocks.MockPDFParser), ocr).Extract(context.Background(), models.NewRawDocument([]byte{0xff, 0xd8}, "photo.jpg"), services.ExtractOptions{PerformOCR: true})

	require.NoError(t, err)
	assert.Equal(t, models.MethodOCR, result.Method)
	ocr.AssertExpectations(t)
}

func TestExtract_UnsupportedFormat(t *testing.T) {
	_, err := newExtractor(new(mocks.MockPDFParser), nil).Extract(context.Background(), models.NewRawDocument([]byte("x"), "cv.rtf"), services.ExtractOptions{})

	assert.ErrorIs(t, err, models.ErrUnsupportedFormat)
}

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(p)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
