package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockOCRService is a mock implementation of services.OCRService.
type MockOCRService struct {
	mock.Mock
}

func (m *MockOCRService) RecognizeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

func (m *MockOCRService) RecognizePDF(ctx context.Context, pdf []byte) (string, error) {
	args := m.Called(ctx, pdf)
	return args.String(0), args.Error(1)
}

// MockOCREngine is a mock implementation of services.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Name() string {
	return "mock-ocr"
}

func (m *MockOCREngine) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	args := m.Called(ctx, image, mimeType)
	return args.String(0), args.Error(1)
}

// MockRasterizer is a mock implementation of services.Rasterizer.
type MockRasterizer struct {
	mock.Mock
}

func (m *MockRasterizer) Rasterize(ctx context.Context, pdf []byte) ([][]byte, error) {
	args := m.Called(ctx, pdf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]byte), args.Error(1)
}
