package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"moodblog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newImageService(t *testing.T) *ImageService {
	t.Helper()
	return NewImageService(&config.Config{
		ImageUploadDir:       t.TempDir(),
		ImageMaxUploadSizeMB: 1,
		MediaBaseURL:         "/media",
	})
}

func TestImageService_Upload(t *testing.T) {
	t.Parallel()
	svc := newImageService(t)

	uploaded, err := svc.Upload(UploadImageInput{
		UserID:      1,
		Filename:    "mood.png",
		ContentType: "image/png",
		Content:     pngBytes(t, 64, 48),
	})
	require.NoError(t, err)

	assert.Len(t, uploaded.Hash, 64)
	assert.Equal(t, "/media/i/"+uploaded.Hash+"/master.jpg", uploaded.URL)
	assert.Equal(t, "/media/i/"+uploaded.Hash+"/master.webp", uploaded.WebPURL)
	assert.Equal(t, 64, uploaded.Width)
	assert.Equal(t, 48, uploaded.Height)

	// Both normalized copies exist on disk.
	jpgPath, err := svc.ResolveForServing(uploaded.Hash, "jpg")
	require.NoError(t, err)
	webpPath, err := svc.ResolveForServing(uploaded.Hash, "webp")
	require.NoError(t, err)
	for _, p := range []string{jpgPath, webpPath} {
		info, statErr := os.Stat(p)
		require.NoError(t, statErr)
		assert.Positive(t, info.Size())
	}
}

func TestImageService_Upload_Validation(t *testing.T) {
	t.Parallel()
	svc := newImageService(t)

	t.Run("no user", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Upload(UploadImageInput{Content: pngBytes(t, 8, 8)})
		assertValidationError(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Upload(UploadImageInput{UserID: 1})
		assertValidationError(t, err)
	})

	t.Run("not an image", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Upload(UploadImageInput{UserID: 1, Content: []byte("plain text, not pixels")})
		assertValidationError(t, err)
	})

	t.Run("garbage with image magic", func(t *testing.T) {
		t.Parallel()
		corrupted := append([]byte("\x89PNG\r\n\x1a\n"), []byte("garbage body")...)
		_, err := svc.Upload(UploadImageInput{UserID: 1, Content: corrupted})
		assertValidationError(t, err)
	})
}

func TestImageService_Upload_ResizesOversized(t *testing.T) {
	t.Parallel()
	svc := newImageService(t)

	uploaded, err := svc.Upload(UploadImageInput{
		UserID:  1,
		Content: pngBytes(t, MasterMaxSize+512, 600),
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, uploaded.Width, MasterMaxSize)
	assert.LessOrEqual(t, uploaded.Height, MasterMaxSize)
}

func TestImageService_ResolveForServing_RejectsBadInput(t *testing.T) {
	t.Parallel()
	svc := newImageService(t)

	_, err := svc.ResolveForServing("../../etc/passwd", "jpg")
	assertValidationError(t, err)

	_, err = svc.ResolveForServing(strings.Repeat("a", 64), "gif")
	assertValidationError(t, err)

	_, err = svc.ResolveForServing(strings.Repeat("a", 64), "jpg")
	require.Error(t, err)
}
