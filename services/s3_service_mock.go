package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	uploadedFiles map[string][]byte // map of S3 key to file content
	mu            sync.RWMutex

	// FailUploads makes every UploadFile call return an error
	FailUploads bool
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		uploadedFiles: make(map[string][]byte),
	}
}

// UploadFile stores the content in memory and returns a fake bucket URL
func (m *MockS3Service) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.FailUploads {
		return "", fmt.Errorf("mock S3 upload failure for %s", key)
	}

	m.mu.Lock()
	m.uploadedFiles[key] = data
	m.mu.Unlock()

	return m.ObjectURL(key), nil
}

// ObjectURL returns the fake bucket URL for key
func (m *MockS3Service) ObjectURL(key string) string {
	return "https://test-bucket.s3.ap-south-1.amazonaws.com/" + key
}

// DeleteFile removes the key from memory
func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.uploadedFiles, key)
	m.mu.Unlock()
	return nil
}

// FileExists checks if a file exists in mock storage
func (m *MockS3Service) FileExists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.uploadedFiles[key]
	return exists
}

// Count returns the number of stored objects
func (m *MockS3Service) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.uploadedFiles)
}
