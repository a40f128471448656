package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sjaggi1/resume-parser/internal/models"
	"sjaggi1/resume-parser/internal/services"
)

// MockResumeService is a mock implementation of services.ResumeService.
type MockResumeService struct {
	mock.Mock
}

func (m *MockResumeService) ProcessResume(ctx context.Context, resumeID string) error {
	args := m.Called(ctx, resumeID)
	return args.Error(0)
}

func (m *MockResumeService) AttachQueue(q services.JobQueue) {
	m.Called(q)
}

func (m *MockResumeService) Submit(ctx context.Context, filename string, data []byte, opts models.ParseOptions) (*models.UploadResponse, error) {
	args := m.Called(ctx, filename, data, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UploadResponse), args.Error(1)
}

func (m *MockResumeService) ParseDocument(ctx context.Context, doc models.RawDocument, opts models.ParseOptions) (*models.Profile, error) {
	args := m.Called(ctx, doc, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockResumeService) Get(ctx context.Context, id string) (*models.ResumeRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResumeRecord), args.Error(1)
}

func (m *MockResumeService) Status(ctx context.Context, id string) (*models.StatusResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StatusResponse), args.Error(1)
}

func (m *MockResumeService) Update(ctx context.Context, id string, patch []byte) (*models.Profile, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockResumeService) Reprocess(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResumeService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResumeService) Match(ctx context.Context, id string, job models.JobDescription, opts models.MatchOptions) (*models.MatchResponse, error) {
	args := m.Called(ctx, id, job, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchResponse), args.Error(1)
}

func (m *MockResumeService) Search(ctx context.Context, query string, limit int) (*models.SearchResponse, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchResponse), args.Error(1)
}
