package imaging

import (
	"bytes"
	"context"
	"io"

	"github.com/disintegration/imaging"

	"rotulo/internal/config"
	"rotulo/internal/services"
)

// ContentType is the MIME type of every normalized blob.
const ContentType = "image/jpeg"

// Normalizer converts raw captured images into bounded-size JPEG blobs.
type Normalizer struct {
	maxWidth int
	quality  int
}

// NewNormalizer builds a normalizer from capture configuration.
func NewNormalizer(cfg *config.Config) *Normalizer {
	return &Normalizer{
		maxWidth: cfg.Capture.MaxImageWidth,
		quality:  cfg.Capture.JPEGQuality,
	}
}

// Normalize decodes a raw image, scales it down to the configured maximum
// width when it exceeds it (aspect ratio preserved, never scaled up), and
// re-encodes it as JPEG at the configured quality. Undecodable input fails
// with an image decode fault.
func (n *Normalizer) Normalize(ctx context.Context, source io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(source)
	if err != nil {
		return nil, services.Wrap(services.ErrDecode, "imaging", "decode", "source is not a decodable image", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if width := img.Bounds().Dx(); width > n.maxWidth {
		img = imaging.Resize(img, n.maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return nil, services.Wrap(services.ErrDecode, "imaging", "encode", "jpeg encode failed", err)
	}
	return buf.Bytes(), nil
}
