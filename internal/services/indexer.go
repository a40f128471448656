package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/logger"
	"sjaggi1/resume-parser/internal/models"
)

const (
	indexChunkSize    = 1000
	indexChunkOverlap = 100
	// Several chunks of one resume can rank high, so over-fetch before grouping.
	searchOverFetch = 5
)

// ResumeIndexer keeps the similar-candidate index in step with completed
// profiles.
type ResumeIndexer interface {
	Index(ctx context.Context, resumeID string, profile models.Profile) error
	Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error)
	Remove(ctx context.Context, resumeID string) error
}

type resumeIndexer struct {
	embedder      Embedder
	store         VectorStore
	chunker       TextChunker
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

func NewResumeIndexer(embedder Embedder, store VectorStore, log *zap.Logger) ResumeIndexer {
	return &resumeIndexer{
		embedder:      embedder,
		store:         store,
		chunker:       NewTextChunker(),
		promptBuilder: NewPromptBuilder(),
		log:           log,
	}
}

func (ix *resumeIndexer) Index(ctx context.Context, resumeID string, profile models.Profile) error {
	document := ix.promptBuilder.BuildSearchDocument(&profile)
	if document == "" {
		return nil
	}

	// Replace whatever an earlier run indexed.
	if err := ix.store.DeleteResume(ctx, resumeID); err != nil {
		return err
	}

	texts := ix.chunker.ChunkText(document, indexChunkSize, indexChunkOverlap)
	chunks := make([]EmbeddedChunk, 0, len(texts))
	for i, text := range texts {
		vector, err := ix.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, EmbeddedChunk{Index: i, Text: text, Vector: vector})
	}

	if err := ix.store.UpsertChunks(ctx, resumeID, chunks); err != nil {
		return err
	}

	ix.log.Debug("resume indexed", zap.String("resume_id", resumeID), zap.Int("chunks", len(chunks)))
	return nil
}

// Search ranks resumes by their best matching chunk.
func (ix *resumeIndexer) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", models.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	vector, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := ix.store.SearchSimilar(ctx, vector, limit*searchOverFetch)
	if err != nil {
		return nil, err
	}

	best := make(map[string]VectorHit)
	for _, h := range hits {
		if cur, ok := best[h.ResumeID]; !ok || h.Score > cur.Score {
			best[h.ResumeID] = h
		}
	}

	results := make([]models.SearchHit, 0, len(best))
	for id, h := range best {
		results = append(results, models.SearchHit{
			ResumeID: id,
			Score:    h.Score,
			Snippet:  logger.TruncateForLog(h.Text, 200),
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ResumeID < results[j].ResumeID
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (ix *resumeIndexer) Remove(ctx context.Context, resumeID string) error {
	return ix.store.DeleteResume(ctx, resumeID)
}
