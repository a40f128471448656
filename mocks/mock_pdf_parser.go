package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockPDFParser is a mock implementation of services.PDFParserService.
type MockPDFParser struct {
	mock.Mock
}

func (m *MockPDFParser) ExtractStructured(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *MockPDFParser) ExtractGeneric(data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

func (m *MockPDFParser) PageCount(data []byte) (int, error) {
	args := m.Called(data)
	return args.Int(0), args.Error(1)
}
