package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"sjaggi1/resume-parser/internal/models"
)

// OCREngine turns a single page image into text.
type OCREngine interface {
	Name() string
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Rasterizer renders every PDF page to a PNG, in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdf []byte) ([][]byte, error)
}

type OCRService interface {
	RecognizeImage(ctx context.Context, image []byte, mimeType string) (string, error)
	// RecognizePDF rasterizes the document and recognizes pages concurrently.
	// Page texts are joined with a blank line in original page order.
	RecognizePDF(ctx context.Context, pdf []byte) (string, error)
}

type ocrService struct {
	engine      OCREngine
	rasterizer  Rasterizer
	concurrency int
	log         *zap.Logger
}

func NewOCRService(engine OCREngine, rasterizer Rasterizer, concurrency int, log *zap.Logger) OCRService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &ocrService{
		engine:      engine,
		rasterizer:  rasterizer,
		concurrency: concurrency,
		log:         log,
	}
}

func (o *ocrService) RecognizeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	text, err := o.engine.Recognize(ctx, image, mimeType)
	if err != nil {
		return "", fmt.Errorf("%s ocr: %w", o.engine.Name(), err)
	}
	return strings.TrimSpace(text), nil
}

func (o *ocrService) RecognizePDF(ctx context.Context, pdf []byte) (string, error) {
	if o.rasterizer == nil {
		return "", fmt.Errorf("%w: no pdf rasterizer is configured", models.ErrConfiguration)
	}
	pages, err := o.rasterizer.Rasterize(ctx, pdf)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize pdf: %w", err)
	}

	o.log.Debug("ocr pages rasterized",
		zap.Int("pages", len(pages)),
		zap.String("engine", o.engine.Name()),
	)

	texts := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for i, page := range pages {
		g.Go(func() error {
			text, err := o.engine.Recognize(gctx, page, "image/png")
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			texts[i] = strings.TrimSpace(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("%s ocr: %w", o.engine.Name(), err)
	}

	nonEmpty := texts[:0]
	for _, t := range texts {
		if t != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n\n"), nil
}

type tesseractEngine struct {
	command  string
	language string
}

// NewTesseractEngine shells out to the tesseract binary, streaming the image
// through stdin.
func NewTesseractEngine(command, language string) OCREngine {
	if language == "" {
		language = "eng"
	}
	return &tesseractEngine{command: command, language: language}
}

func (t *tesseractEngine) Name() string {
	return "tesseract"
}

func (t *tesseractEngine) Recognize(ctx context.Context, image []byte, _ string) (string, error) {
	cmd := exec.CommandContext(ctx, t.command, "stdin", "stdout", "-l", t.language)
	cmd.Stdin = bytes.NewReader(image)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

type geminiVisionEngine struct {
	client    *genai.Client
	modelName string
}

// NewGeminiVisionEngine reads page images with a multimodal Gemini model.
func NewGeminiVisionEngine(client *genai.Client, modelName string) OCREngine {
	return &geminiVisionEngine{client: client, modelName: modelName}
}

func (g *geminiVisionEngine) Name() string {
	return "gemini-vision"
}

func (g *geminiVisionEngine) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	content := genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromText("Transcribe all text in this document image exactly as written. Return plain text only, no commentary."),
		genai.NewPartFromBytes(image, mimeType),
	}, genai.RoleUser)

	temperature := float32(0)
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, []*genai.Content{content}, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe image: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}
	return resp.Text(), nil
}

type pdftoppmRasterizer struct {
	command string
	dpi     int
}

// NewPdftoppmRasterizer renders pages with poppler's pdftoppm.
func NewPdftoppmRasterizer(command string, dpi int) Rasterizer {
	if dpi <= 0 {
		dpi = 300
	}
	return &pdftoppmRasterizer{command: command, dpi: dpi}
}

func (p *pdftoppmRasterizer) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "resume-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0600); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.command, "-r", strconv.Itoa(p.dpi), "-png", input, filepath.Join(dir, "page"))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read page image: %w", err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

// pageNumber parses the zero-padded suffix pdftoppm appends ("page-07.png").
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
