package imaging_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"rotulo/internal/imaging"
	"rotulo/internal/services"
	"rotulo/internal/testsupport"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, blob []byte) (int, int) {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob))
	if err != nil {
		t.Fatalf("decode normalized blob: %v", err)
	}
	return cfg.Width, cfg.Height
}

func TestNormalizeScalesDownWideImages(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxImageWidth(100))
	norm := imaging.NewNormalizer(cfg)

	blob, err := norm.Normalize(context.Background(), bytes.NewReader(encodePNG(t, 400, 200)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	width, height := decodeSize(t, blob)
	if width != 100 {
		t.Fatalf("expected width 100, got %d", width)
	}
	if height != 50 {
		t.Fatalf("expected aspect preserved (height 50), got %d", height)
	}
}

func TestNormalizeNeverScalesUp(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxImageWidth(1200))
	norm := imaging.NewNormalizer(cfg)

	blob, err := norm.Normalize(context.Background(), bytes.NewReader(encodePNG(t, 80, 60)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	width, height := decodeSize(t, blob)
	if width != 80 || height != 60 {
		t.Fatalf("expected 80x60 unchanged, got %dx%d", width, height)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxImageWidth(100))
	norm := imaging.NewNormalizer(cfg)
	source := encodePNG(t, 400, 200)

	first, err := norm.Normalize(context.Background(), bytes.NewReader(source))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	second, err := norm.Normalize(context.Background(), bytes.NewReader(source))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected identical output for identical input and configuration")
	}
}

func TestNormalizeRejectsUndecodableInput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	norm := imaging.NewNormalizer(cfg)

	_, err := norm.Normalize(context.Background(), bytes.NewReader([]byte("not an image")))
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestNormalizeHonorsCancelledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	norm := imaging.NewNormalizer(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := norm.Normalize(ctx, bytes.NewReader(encodePNG(t, 10, 10))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
