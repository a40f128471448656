package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

// MockVectorStore is a mock implementation of services.VectorStore.
type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) InitCollection(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorStore) UpsertChunks(ctx context.Context, resumeID string, chunks []services.EmbeddedChunk) error {
	args := m.Called(ctx, resumeID, chunks)
	return args.Error(0)
}

func (m *MockVectorStore) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]services.VectorHit, error) {
	args := m.Called(ctx, queryEmbedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.VectorHit), args.Error(1)
}

func (m *MockVectorStore) DeleteResume(ctx context.Context, resumeID string) error {
	args := m.Called(ctx, resumeID)
	return args.Error(0)
}

func (m *MockVectorStore) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockResumeIndexer is a mock implementation of services.ResumeIndexer.
type MockResumeIndexer struct {
	mock.Mock
}

func (m *MockResumeIndexer) Index(ctx context.Context, resumeID string, profile models.Profile) error {
	args := m.Called(ctx, resumeID, profile)
	return args.Error(0)
}

func (m *MockResumeIndexer) Search(ctx context.Context, query string, limit int) ([]models.SearchHit, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchHit), args.Error(1)
}

func (m *MockResumeIndexer) Remove(ctx context.Context, resumeID string) error {
	args := m.Called(ctx, resumeID)
	return args.Error(0)
}
