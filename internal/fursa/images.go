package fursa

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageBytes is the per-image upload limit.
const MaxImageBytes = 5 << 20

var allowedMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// LoadImage reads an image from disk and resolves its media type.
func LoadImage(path string) (ImageAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ImageAsset{}, &ValidationError{Field: "images", Reason: fmt.Sprintf("image %q not found", path)}
		}
		return ImageAsset{}, fmt.Errorf("read image: %w", err)
	}

	mediaType, err := resolveMediaType(path, data)
	if err != nil {
		return ImageAsset{}, err
	}

	asset := ImageAsset{
		Name:      filepath.Base(path),
		MediaType: mediaType,
		Data:      data,
	}
	if err := ValidateImage(asset); err != nil {
		return ImageAsset{}, err
	}
	return asset, nil
}

// ValidateImage checks the media type and size of an attachment.
func ValidateImage(img ImageAsset) error {
	mediaType := normalizeMediaType(img.MediaType)
	if _, ok := allowedMediaTypes[mediaType]; !ok {
		return &ValidationError{Field: "images", Reason: fmt.Sprintf("%s: unsupported media type %q (JPEG, PNG, GIF, WebP only)", img.Name, img.MediaType)}
	}
	if len(img.Data) == 0 {
		return &ValidationError{Field: "images", Reason: fmt.Sprintf("%s: image is empty", img.Name)}
	}
	if len(img.Data) > MaxImageBytes {
		return &ValidationError{Field: "images", Reason: fmt.Sprintf("%s: image exceeds %d MB", img.Name, MaxImageBytes>>20)}
	}
	return nil
}

func normalizeMediaType(mediaType string) string {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" {
		return "image/jpeg"
	}
	return mediaType
}

func resolveMediaType(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".png":
		return "image/png", nil
	case ".gif":
		return "image/gif", nil
	case ".webp":
		return "image/webp", nil
	}

	// fallback to content sniffing
	detected := http.DetectContentType(data)
	switch {
	case strings.Contains(detected, "jpeg"):
		return "image/jpeg", nil
	case strings.Contains(detected, "png"):
		return "image/png", nil
	case strings.Contains(detected, "gif"):
		return "image/gif", nil
	case strings.Contains(detected, "webp"):
		return "image/webp", nil
	}

	return "", &ValidationError{Field: "images", Reason: fmt.Sprintf("unsupported image type for %q", path)}
}
