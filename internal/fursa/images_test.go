package fursa

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	id PlatformID
}

func (s stubAdapter) Platform() PlatformID { return s.id }

func (s stubAdapter) Send(context.Context, string, []ImageAsset) (*Receipt, error) {
	return &Receipt{}, nil
}

// smallest valid PNG header is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoadImageByExtension(t *testing.T) {
	img, err := LoadImage(writeFile(t, "photo.JPG", []byte("jpegdata")))
	require.NoError(t, err)
	assert.Equal(t, "photo.JPG", img.Name)
	assert.Equal(t, "image/jpeg", img.MediaType)
	assert.Equal(t, []byte("jpegdata"), img.Data)
}

func TestLoadImageSniffsContent(t *testing.T) {
	img, err := LoadImage(writeFile(t, "upload", pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MediaType)
}

func TestLoadImageRejectsUnsupported(t *testing.T) {
	_, err := LoadImage(writeFile(t, "notes.txt", []byte("plain text")))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		img     ImageAsset
		wantErr bool
	}{
		{name: "png", img: ImageAsset{Name: "a.png", MediaType: "image/png", Data: pngHeader}},
		{name: "jpg alias", img: ImageAsset{Name: "a.jpg", MediaType: "image/jpg", Data: []byte{1}}},
		{name: "webp", img: ImageAsset{Name: "a.webp", MediaType: "IMAGE/WEBP", Data: []byte{1}}},
		{name: "svg", img: ImageAsset{Name: "a.svg", MediaType: "image/svg+xml", Data: []byte{1}}, wantErr: true},
		{name: "empty", img: ImageAsset{Name: "a.gif", MediaType: "image/gif"}, wantErr: true},
		{name: "too large", img: ImageAsset{Name: "big.png", MediaType: "image/png", Data: bytes.Repeat([]byte{0}, MaxImageBytes+1)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImage(tt.img)
			if tt.wantErr {
				assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
