package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of services.JobQueue.
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueJob(resumeID string) {
	m.Called(resumeID)
}

func (m *MockJobQueue) Cancel(resumeID string) bool {
	args := m.Called(resumeID)
	return args.Bool(0)
}
