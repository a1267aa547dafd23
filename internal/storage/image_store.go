package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

var (
	ErrInvalidImageFormat   = errors.New("did not match data URI with image data")
	ErrUnsupportedImageType = errors.New("invalid image type")
	ErrImageDecode          = errors.New("base64 decode failed")
)

const imageDir = "images"

var dataURIPattern = regexp.MustCompile(`^data:image/(\w+);base64,`)

var allowedTypes = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"png":  true,
}

type localImageStore struct {
	root   string
	appURL string
}

// NewLocalImageStore stores images under <root>/images. appURL, when set,
// prefixes the URLs handed to clients.
func NewLocalImageStore(root, appURL string) domain.ImageStore {
	return &localImageStore{root: root, appURL: strings.TrimRight(appURL, "/")}
}

// Save decodes a base64 image data URI and writes it under a random name.
// Nothing is written when the payload is rejected.
func (s *localImageStore) Save(payload string) (string, error) {
	m := dataURIPattern.FindStringSubmatch(payload)
	if m == nil {
		return "", ErrInvalidImageFormat
	}
	ext := strings.ToLower(m[1])
	if !allowedTypes[ext] {
		return "", ErrUnsupportedImageType
	}

	encoded := payload[strings.Index(payload, ",")+1:]
	encoded = strings.ReplaceAll(encoded, " ", "+")
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	dir := filepath.Join(s.root, imageDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	name := uuid.New().String() + "." + ext
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return imageDir + "/" + name, nil
}

// Delete removes a stored image. Missing files are ignored.
func (s *localImageStore) Delete(relativePath string) error {
	if relativePath == "" {
		return nil
	}
	abs, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	logger.AppLogger.Debug("image deleted", zap.String("path", relativePath))
	return nil
}

func (s *localImageStore) URL(relativePath string) string {
	if relativePath == "" {
		return ""
	}
	return s.appURL + "/" + strings.TrimLeft(relativePath, "/")
}

// resolve maps a relative path into the root, refusing anything outside it.
func (s *localImageStore) resolve(relativePath string) (string, error) {
	root, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve public root: %w", err)
	}
	abs := filepath.Join(root, filepath.FromSlash(relativePath))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image path %q escapes the public root", relativePath)
	}
	return abs, nil
}
