package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/logger"
)

type openAIService struct {
	client     *openai.Client
	modelName  string
	embedModel string
	log        *zap.Logger
}

// NewOpenAIService talks to OpenAI or any API-compatible server when baseURL is set.
func NewOpenAIService(apiKey, baseURL, modelName, embedModel string, log *zap.Logger) LLMProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &openAIService{
		client:     openai.NewClientWithConfig(cfg),
		modelName:  modelName,
		embedModel: embedModel,
		log:        log,
	}
}

func (o *openAIService) Name() string {
	return "openai:" + o.modelName
}

func (o *openAIService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := withRequestTimeout(ctx, req.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", o.wrapError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no text content in response")
	}

	text := resp.Choices[0].Message.Content
	o.log.Debug("openai response received",
		zap.String("model", o.modelName),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("response", logger.TruncateForLog(text, 200)),
	)
	return text, nil
}

func (o *openAIService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", o.wrapError(err))
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return resp.Data[0].Embedding, nil
}

func (o *openAIService) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return NewRateLimitError("openai", err, 0)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return NewRateLimitError("openai", err, 0)
	}
	return fmt.Errorf("openai request failed: %w", err)
}
