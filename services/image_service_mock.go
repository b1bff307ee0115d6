package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/sparesx/sparesx-api/utils"
)

// MockImageURLPrefix prefixes every URL the mock hands out and is the only prefix it owns
const MockImageURLPrefix = "https://cdn.test/products/"

// MockImageService is an in-memory ImageService for tests
type MockImageService struct {
	uploaded []string
	deleted  []string
	mu       sync.Mutex

	// FailOnUpload makes the n-th UploadImage call (1-based) fail; 0 disables it
	FailOnUpload int
	calls        int
}

// NewMockImageService creates a new mock image service
func NewMockImageService() *MockImageService {
	return &MockImageService{}
}

// UploadImage validates the file like the real services and records a fake URL
func (m *MockImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.FailOnUpload != 0 && m.calls == m.FailOnUpload {
		return "", fmt.Errorf("mock upload failure on call %d", m.calls)
	}

	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	imageURL := fmt.Sprintf("%s%d_%s", MockImageURLPrefix, m.calls, fileHeader.Filename)
	m.uploaded = append(m.uploaded, imageURL)
	return imageURL, nil
}

// Owns reports whether imageURL carries the mock's prefix
func (m *MockImageService) Owns(imageURL string) bool {
	return strings.HasPrefix(imageURL, MockImageURLPrefix)
}

// DeleteImage records the deletion of owned URLs
func (m *MockImageService) DeleteImage(ctx context.Context, imageURL string) error {
	if !m.Owns(imageURL) {
		return ErrForeignImage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, imageURL)
	return nil
}

// Uploaded returns the URLs handed out so far
func (m *MockImageService) Uploaded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.uploaded...)
}

// Deleted returns the URLs passed to DeleteImage
func (m *MockImageService) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
