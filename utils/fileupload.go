package utils

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
	// MaxImageDimension bounds the width and height of stored images
	MaxImageDimension = 1600
)

var allowedImageFormats = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
	".gif":  imaging.GIF,
}

var contentTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ProcessedImage is a validated image ready to be stored
type ProcessedImage struct {
	Data        []byte
	Extension   string
	ContentType string
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedImageFormats[ext]; !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .jpg, .jpeg, .png and .gif files are allowed",
		}
	}

	return nil
}

// ProcessImage validates the upload, decodes it to make sure it really is an
// image and downscales anything larger than MaxImageDimension on either side.
func ProcessImage(fileHeader *multipart.FileHeader) (*ProcessedImage, error) {
	if err := ValidateImageFile(fileHeader); err != nil {
		return nil, err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	raw, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	format := allowedImageFormats[ext]

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &FileUploadError{
			Code:    "INVALID_IMAGE",
			Message: "File is not a readable image",
		}
	}

	if !exceedsMaxDimension(img.Bounds()) {
		return &ProcessedImage{Data: raw, Extension: ext, ContentType: contentTypes[format]}, nil
	}

	resized := imaging.Fit(img, MaxImageDimension, MaxImageDimension, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}

	return &ProcessedImage{Data: buf.Bytes(), Extension: ext, ContentType: contentTypes[format]}, nil
}

func exceedsMaxDimension(bounds image.Rectangle) bool {
	return bounds.Dx() > MaxImageDimension || bounds.Dy() > MaxImageDimension
}

// SaveFile writes data to uploadDir/filename, creating the directory if needed
func SaveFile(data []byte, uploadDir, filename string) error {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(uploadDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}

	return nil
}

// IsSafeFilename rejects names that could escape the upload directory
func IsSafeFilename(filename string) bool {
	return filename != "" &&
		!strings.Contains(filename, "..") &&
		!strings.Contains(filename, "/") &&
		!strings.Contains(filename, "\\")
}

// ContentTypeFor returns the MIME type for an allowed image extension
func ContentTypeFor(filename string) (string, bool) {
	format, ok := allowedImageFormats[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return "", false
	}
	return contentTypes[format], true
}
