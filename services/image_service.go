package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/utils"
)

// ImageService stores uploaded listing images and returns their public URLs
type ImageService interface {
	// UploadImage validates, normalizes and stores an image, returning its URL
	UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)

	// DeleteImage removes a previously stored image by URL. URLs the service
	// did not issue are refused with ErrForeignImage.
	DeleteImage(ctx context.Context, imageURL string) error

	// Owns reports whether imageURL points at storage managed by this service
	Owns(imageURL string) bool
}

// ErrForeignImage is returned when asked to delete an image this service did not store
var ErrForeignImage = errors.New("image is not managed by this service")

var imageServiceInstance ImageService

// InitImageService picks S3 storage when a bucket is configured and the local
// upload directory otherwise.
func InitImageService(ctx context.Context, cfg *config.Config) (ImageService, error) {
	if cfg.UsesS3() {
		s3Service, err := NewS3Service(ctx, cfg)
		if err != nil {
			return nil, err
		}
		imageServiceInstance = NewS3ImageService(s3Service)
		return imageServiceInstance, nil
	}

	imageServiceInstance = NewLocalImageService(cfg.UploadDir, cfg.PublicBaseURL)
	return imageServiceInstance, nil
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

func newObjectName(ext string) string {
	return uuid.NewString() + ext
}

const s3ProductPrefix = "products/"

// S3ImageService implements ImageService using AWS S3 for storage
type S3ImageService struct {
	s3Service S3Interface
}

// NewS3ImageService wraps an S3 client
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service}
}

// UploadImage validates and uploads an image file to S3
func (s *S3ImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	img, err := utils.ProcessImage(fileHeader)
	if err != nil {
		return "", err
	}

	key := s3ProductPrefix + newObjectName(img.Extension)
	imageURL, err := s.s3Service.UploadFile(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}

	return imageURL, nil
}

// Owns reports whether imageURL is a product object in this bucket
func (s *S3ImageService) Owns(imageURL string) bool {
	prefix := s.s3Service.ObjectURL(s3ProductPrefix)
	if !strings.HasPrefix(imageURL, prefix) {
		return false
	}
	return utils.IsSafeFilename(strings.TrimPrefix(imageURL, prefix))
}

// DeleteImage deletes the object behind an S3 URL
func (s *S3ImageService) DeleteImage(ctx context.Context, imageURL string) error {
	if !s.Owns(imageURL) {
		return ErrForeignImage
	}

	key := s3ProductPrefix + strings.TrimPrefix(imageURL, s.s3Service.ObjectURL(s3ProductPrefix))
	if err := s.s3Service.DeleteFile(ctx, key); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// LocalImageService stores images in a directory served by GET /api/uploads/:filename
type LocalImageService struct {
	dir     string
	baseURL string
}

// NewLocalImageService stores files under dir; baseURL prefixes returned URLs
func NewLocalImageService(dir, baseURL string) *LocalImageService {
	return &LocalImageService{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

// Dir returns the directory files are written to
func (s *LocalImageService) Dir() string {
	return s.dir
}

// UploadImage validates and writes the image to the local upload directory
func (s *LocalImageService) UploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	img, err := utils.ProcessImage(fileHeader)
	if err != nil {
		return "", err
	}

	filename := newObjectName(img.Extension)
	if err := utils.SaveFile(img.Data, s.dir, filename); err != nil {
		return "", err
	}

	return s.urlPrefix() + filename, nil
}

func (s *LocalImageService) urlPrefix() string {
	return s.baseURL + "/api/uploads/"
}

// Owns reports whether imageURL was issued by this service's upload route
func (s *LocalImageService) Owns(imageURL string) bool {
	if !strings.HasPrefix(imageURL, s.urlPrefix()) {
		return false
	}
	return utils.IsSafeFilename(strings.TrimPrefix(imageURL, s.urlPrefix()))
}

// DeleteImage removes a locally stored image by URL
func (s *LocalImageService) DeleteImage(ctx context.Context, imageURL string) error {
	if !s.Owns(imageURL) {
		return ErrForeignImage
	}
	filename := strings.TrimPrefix(imageURL, s.urlPrefix())

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}
