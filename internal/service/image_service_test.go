package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessAvatarNormalizesToSquareWebP(t *testing.T) {
	svc, err := NewImageService(t.TempDir())
	require.NoError(t, err)

	name, err := svc.ProcessAvatar(tinyPNG(t, 1200, 800))
	require.NoError(t, err)
	assert.Equal(t, ".webp", filepath.Ext(name))

	data, err := os.ReadFile(svc.Path(name))
	require.NoError(t, err)

	decoded, err := webp.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, avatarSize, decoded.Bounds().Dx())
	assert.Equal(t, avatarSize, decoded.Bounds().Dy())
}

func TestProcessAvatarIsIdempotent(t *testing.T) {
	svc, err := NewImageService(t.TempDir())
	require.NoError(t, err)

	content := tinyPNG(t, 300, 300)
	first, err := svc.ProcessAvatar(content)
	require.NoError(t, err)
	second, err := svc.ProcessAvatar(content)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestProcessAvatarRejectsBadInput(t *testing.T) {
	svc, err := NewImageService(t.TempDir())
	require.NoError(t, err)

	_, err = svc.ProcessAvatar(nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))

	_, err = svc.ProcessAvatar([]byte("not an image"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrorCode(t, err))
}

func TestPathStripsDirectoryTraversal(t *testing.T) {
	dir := t.TempDir()
	svc, err := NewImageService(dir)
	require.NoError(t, err)

	got := svc.Path("../../etc/passwd")
	assert.Equal(t, filepath.Join(dir, "passwd"), got)
}
