// Image file reading and writing for the command line tools
package io

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultMaxFileSize bounds a single input file.
const DefaultMaxFileSize = 256 << 20

var nativeExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger  logrus.FieldLogger
	maxSize int64
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger:  logger,
		maxSize: DefaultMaxFileSize,
	}
}

// WithMaxSize returns a copy of the loader with a different size limit.
func (il *ImageLoader) WithMaxSize(n int64) *ImageLoader {
	c := *il
	c.maxSize = n
	return &c
}

// LoadImage reads the raw bytes of an image file. Extensions outside the native list
// are still read; decoding is then left to OpenCV.
func (il *ImageLoader) LoadImage(path string) ([]byte, error) {
	path = filepath.Clean(path)
	log := il.logger.WithField("filepath", path)
	log.Debug("Loading image")

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("failed to load image: %s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("failed to load image: %s is empty", path)
	}
	if info.Size() > il.maxSize {
		return nil, fmt.Errorf("image file too large: %d bytes (max: %d)", info.Size(), il.maxSize)
	}
	if !IsSupportedImageFormat(path) {
		log.Debug("Unrecognised extension, decoding will fall back to OpenCV")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}

	log.WithField("bytes", len(data)).Debug("Image loaded successfully")
	return data, nil
}

// SaveImage writes data through a temporary file in the target directory so readers
// never see a partial image.
func (il *ImageLoader) SaveImage(data []byte, path string) error {
	path = filepath.Clean(path)
	il.logger.WithField("filepath", path).Debug("Saving image")

	if len(data) == 0 {
		return fmt.Errorf("cannot save empty image")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to save image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"bytes":    len(data),
	}).Info("Image saved successfully")
	return nil
}

// IsSupportedImageFormat reports whether the extension is decoded without OpenCV.
func IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range nativeExtensions {
		if ext == format {
			return true
		}
	}
	return false
}

// SupportedExtensions lists the natively decoded file extensions.
func SupportedExtensions() []string {
	out := make([]string, len(nativeExtensions))
	copy(out, nativeExtensions)
	return out
}
