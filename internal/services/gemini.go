package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"sjaggi1/resume-parser/internal/logger"
)

// GeminiService completes prompts and embeds text with the Gemini API.
type GeminiService interface {
	LLMProvider
	Client() *genai.Client
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	maxRetries int
	log        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName, embedModel string, maxRetries int, log *zap.Logger) (GeminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if maxRetries < 1 {
		maxRetries = 1
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: embedModel,
		maxRetries: maxRetries,
		log:        log,
	}, nil
}

func (g *geminiService) Name() string {
	return "gemini:" + g.modelName
}

func (g *geminiService) Client() *genai.Client {
	return g.client
}

// Complete retries transient failures up to maxRetries. Rate limits are
// returned immediately so the fallback chain can move on.
func (g *geminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := withRequestTimeout(ctx, req.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		text, err := g.generateText(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			return "", err
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < g.maxRetries {
			g.log.Warn("gemini attempt failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", g.maxRetries, lastErr)
}

func (g *geminiService) generateText(ctx context.Context, req CompletionRequest) (string, error) {
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(req.Prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
			return "", NewRateLimitError("gemini", err, 0)
		}
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		// Some finish reasons leave Text() empty while parts still carry content.
		var textParts []string
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part != nil && part.Text != "" {
					textParts = append(textParts, part.Text)
				}
			}
		}
		if len(textParts) == 0 {
			return "", fmt.Errorf("no text content in response")
		}
		text = strings.Join(textParts, "\n")
	}

	g.log.Debug("gemini response received",
		zap.String("model", g.modelName),
		zap.String("response", logger.TruncateForLog(text, 200)),
	)
	return text, nil
}

func (g *geminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	// Embedding input is capped at roughly 10k tokens.
	text = truncateRunes(text, 40000)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
