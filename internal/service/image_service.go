package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"atelier/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

const (
	avatarSize     = 256
	maxAvatarBytes = 5 << 20
)

// ImageService normalizes uploaded avatars: decode, center-crop to a
// square, scale to a fixed size and re-encode as WebP. The output filename
// is a content hash, so re-uploads of the same image are idempotent.
type ImageService struct {
	dir string
}

func NewImageService(dir string) (*ImageService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating avatar dir: %w", err)
	}
	return &ImageService{dir: dir}, nil
}

// ProcessAvatar returns the stored filename. Accepts PNG, JPEG and WebP
// input.
func (s *ImageService) ProcessAvatar(data []byte) (string, error) {
	if len(data) == 0 {
		return "", models.NewValidationError("Avatar file is empty")
	}
	if len(data) > maxAvatarBytes {
		return "", models.NewValidationError("Avatar must be at most 5 MB")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// The stdlib decoders do not know WebP.
		img, err = webp.Decode(bytes.NewReader(data))
		if err != nil {
			return "", models.NewValidationError("Avatar must be a PNG, JPEG or WebP image")
		}
	}

	square := centerCrop(img)
	dst := image.NewRGBA(image.Rect(0, 0, avatarSize, avatarSize))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), square, square.Bounds(), xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: 85}); err != nil {
		return "", models.NewInternalError(err)
	}

	sum := sha256.Sum256(buf.Bytes())
	name := hex.EncodeToString(sum[:16]) + ".webp"
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return name, nil
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return name, nil
}

// Path resolves a stored avatar filename to its absolute path.
func (s *ImageService) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

func centerCrop(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return img
	}
	side := w
	if h < side {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2
	rect := image.Rect(x0, y0, x0+side, y0+side)

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := img.(subImager); ok {
		return si.SubImage(rect)
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.Copy(dst, image.Point{}, img, rect, xdraw.Over, nil)
	return dst
}
