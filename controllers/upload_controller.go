package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/logger"
	"github.com/sparesx/sparesx-api/services"
	"github.com/sparesx/sparesx-api/utils"
)

// MaxFilesPerUpload caps how many images one upload request may carry
const MaxFilesPerUpload = 10

// UploadImages handles POST /api/upload - stores one or more images sent as
// multipart "files" (repeatable) or "file" and returns their URLs
func UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request must be multipart/form-data")
		return
	}

	var files []*multipart.FileHeader
	files = append(files, form.File["files"]...)
	files = append(files, form.File["file"]...)

	if len(files) == 0 {
		respondError(c, http.StatusBadRequest, "NO_FILES", "No files were uploaded")
		return
	}
	if len(files) > MaxFilesPerUpload {
		respondError(c, http.StatusBadRequest, "TOO_MANY_FILES", "Too many files in one upload")
		return
	}

	// Reject the whole batch before storing anything
	for _, fh := range files {
		if err := utils.ValidateImageFile(fh); err != nil {
			respondUploadError(c, err)
			return
		}
	}

	imageService := services.GetImageService()
	if imageService == nil {
		respondError(c, http.StatusInternalServerError, "STORAGE_UNAVAILABLE", "Image storage is not configured")
		return
	}

	urls := make([]string, 0, len(files))
	for _, fh := range files {
		url, err := imageService.UploadImage(c.Request.Context(), fh)
		if err != nil {
			for _, stored := range urls {
				if derr := imageService.DeleteImage(c.Request.Context(), stored); derr != nil {
					logger.L().Warnw("failed to roll back uploaded image", "url", stored, "error", derr)
				}
			}
			respondUploadError(c, err)
			return
		}
		urls = append(urls, url)
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"urls": urls,
		},
	})
}

func respondUploadError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	logger.L().Errorw("failed to store image", "error", err)
	respondError(c, http.StatusInternalServerError, "UPLOAD_FAILED", "Failed to store image")
}

// uploadDir is where locally stored images live
func uploadDir() string {
	if local, ok := services.GetImageService().(*services.LocalImageService); ok {
		return local.Dir()
	}
	if cfg := config.GetConfig(); cfg != nil && cfg.UploadDir != "" {
		return cfg.UploadDir
	}
	return "./uploads"
}

// GetUploadedImage handles GET /api/uploads/:filename - serves locally stored images
func GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Security: Prevent directory traversal attacks
	if !utils.IsSafeFilename(filename) {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType, ok := utils.ContentTypeFor(filename)
	if !ok {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only image files are served")
		return
	}

	filePath := filepath.Join(uploadDir(), filename)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
