package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
)

type ExtractOptions struct {
	PerformOCR bool
}

type TextExtractor interface {
	Extract(ctx context.Context, doc models.RawDocument, opts ExtractOptions) (models.ExtractedText, error)
}

type textExtractor struct {
	pdfParser PDFParserService
	ocr       OCRService
	timeout   time.Duration
	log       *zap.Logger
}

// NewTextExtractor builds the extractor. ocr may be nil, in which case every
// path that needs OCR fails or is skipped. timeout bounds each OCR run.
func NewTextExtractor(pdfParser PDFParserService, ocr OCRService, timeout time.Duration, log *zap.Logger) TextExtractor {
	return &textExtractor{
		pdfParser: pdfParser,
		ocr:       ocr,
		timeout:   timeout,
		log:       log,
	}
}

func (e *textExtractor) Extract(ctx context.Context, doc models.RawDocument, opts ExtractOptions) (models.ExtractedText, error) {
	ext := strings.ToLower(doc.Extension)

	var (
		result models.ExtractedText
		err    error
	)

	switch ext {
	case "pdf":
		result, err = e.extractPDF(ctx, doc.Data, opts)
	case "docx", "doc":
		var text string
		text, err = ExtractDocxText(doc.Data)
		if err != nil {
			err = fmt.Errorf("%w: %w", models.ErrExtraction, err)
		}
		result = models.NewExtractedText(text, models.MethodStructured)
	case "txt":
		result = models.NewExtractedText(strings.ToValidUTF8(string(doc.Data), "\uFFFD"), models.MethodGeneric)
	case "jpg", "jpeg", "png":
		result, err = e.extractImage(ctx, doc.Data, ext, opts)
	default:
		err = fmt.Errorf("%w: .%s", models.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return models.ExtractedText{}, err
	}

	if !result.Parseable() {
		return models.ExtractedText{}, fmt.Errorf("%w: %d characters via %s, need %d",
			models.ErrInsufficientText, models.TrimmedLen(result.Text), result.Method, models.MinTextThreshold)
	}

	e.log.Debug("text extracted",
		zap.String("file", doc.Filename),
		zap.String("method", string(result.Method)),
		zap.Int("chars", result.CharCount),
	)
	return result, nil
}

type pdfMethod struct {
	method  models.ExtractionMethod
	extract func(data []byte) (string, error)
}

// extractPDF walks the cheap methods first and returns as soon as one clears
// SuccessThreshold. OCR is only attempted when both fall short. The longest
// candidate wins; ties keep the cheaper method.
func (e *textExtractor) extractPDF(ctx context.Context, data []byte, opts ExtractOptions) (models.ExtractedText, error) {
	methods := []pdfMethod{
		{models.MethodStructured, e.pdfParser.ExtractStructured},
		{models.MethodGeneric, e.pdfParser.ExtractGeneric},
	}

	var (
		best      models.ExtractedText
		bestLen   int
		attempted int
		failed    int
		lastErr   error
	)

	consider := func(method models.ExtractionMethod, text string) {
		if n := models.TrimmedLen(text); n > bestLen {
			best = models.NewExtractedText(text, method)
			bestLen = n
		}
	}

	for _, m := range methods {
		attempted++
		text, err := m.extract(data)
		if err != nil {
			failed++
			lastErr = err
			e.log.Warn("pdf extraction method failed", zap.String("method", string(m.method)), zap.Error(err))
			continue
		}

		if models.TrimmedLen(text) > models.SuccessThreshold {
			return models.NewExtractedText(text, m.method), nil
		}
		consider(m.method, text)
		e.log.Debug("pdf extraction below threshold, falling back",
			zap.String("method", string(m.method)),
			zap.Int("chars", models.TrimmedLen(text)),
		)
	}

	switch {
	case !opts.PerformOCR:
		e.log.Debug("ocr disabled by caller, skipping")
	case e.ocr == nil:
		e.log.Warn("ocr needed but no engine is configured")
	default:
		attempted++
		ocrCtx, cancel := e.withTimeout(ctx)
		text, err := e.ocr.RecognizePDF(ocrCtx, data)
		cancel()
		if err != nil {
			failed++
			lastErr = err
			e.log.Warn("pdf ocr failed", zap.Error(err))
		} else {
			consider(models.MethodOCR, text)
		}
	}

	if err := ctx.Err(); err != nil {
		return models.ExtractedText{}, err
	}
	if bestLen == 0 && failed == attempted && lastErr != nil {
		return models.ExtractedText{}, fmt.Errorf("%w: %w", models.ErrExtraction, lastErr)
	}
	if best.Method == "" {
		best.Method = models.MethodGeneric
	}
	return best, nil
}

func (e *textExtractor) extractImage(ctx context.Context, data []byte, ext string, opts ExtractOptions) (models.ExtractedText, error) {
	if !opts.PerformOCR {
		return models.ExtractedText{}, fmt.Errorf("%w: OCR required but disabled", models.ErrConfiguration)
	}
	if e.ocr == nil {
		return models.ExtractedText{}, fmt.Errorf("%w: OCR required but no engine is configured", models.ErrConfiguration)
	}

	ocrCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	text, err := e.ocr.RecognizeImage(ocrCtx, data, models.MimeType(ext))
	if err != nil {
		return models.ExtractedText{}, fmt.Errorf("%w: %w", models.ErrExtraction, err)
	}
	return models.NewExtractedText(text, models.MethodOCR), nil
}

func (e *textExtractor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}
