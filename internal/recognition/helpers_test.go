package recognition

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

const testDim = 8

// Red channel values with special meaning for the fakes.
const (
	blankPixel  uint8 = 0   // detector finds no face
	brokenPixel uint8 = 255 // extractor fails
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// solid returns a uniformly coloured image whose red channel identifies the "face".
func solid(id uint8) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: id, A: 255})
		}
	}
	return img
}

func redOf(img image.Image) uint8 {
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return uint8(r >> 8)
}

// fakeDetector reports one full-frame face unless the image is blank.
type fakeDetector struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (d *fakeDetector) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.err != nil {
		return nil, d.err
	}
	if redOf(img) == blankPixel {
		return []provider.DetectedFace{}, nil
	}

	b := img.Bounds()
	return []provider.DetectedFace{{
		BoundingBox: provider.BoundingBox{Width: float64(b.Dx()), Height: float64(b.Dy())},
		Confidence:  0.9,
	}}, nil
}

// fakeExtractor maps the red channel of a face to a predefined vector.
type fakeExtractor struct {
	vectors map[uint8][]float64
}

func (e *fakeExtractor) Extract(ctx context.Context, face image.Image) ([]float64, error) {
	id := redOf(face)
	if id == brokenPixel {
		return nil, errors.New("inference failed")
	}
	v, ok := e.vectors[id]
	if !ok {
		return nil, errors.New("unknown face")
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out, nil
}

// basis returns the i-th unit vector.
func basis(i int) []float64 {
	v := make([]float64, testDim)
	v[i] = 1
	return v
}

// variant returns base + eps·basis(k): a photo of the same person under a small change.
func variant(base, k int, eps float64) []float64 {
	v := basis(base)
	v[k] += eps
	return v
}

// countingGallery wraps a gallery and counts scans.
type countingGallery struct {
	Gallery
	mu    sync.Mutex
	scans int
}

func (g *countingGallery) Scan(ctx context.Context) ([]ProfileRecord, error) {
	g.mu.Lock()
	g.scans++
	g.mu.Unlock()
	return g.Gallery.Scan(ctx)
}

func (g *countingGallery) scanCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scans
}

// staticGallery returns fixed records.
type staticGallery struct {
	records []ProfileRecord
	err     error
}

func (g *staticGallery) Scan(ctx context.Context) ([]ProfileRecord, error) {
	return g.records, g.err
}

func (g *staticGallery) Put(ctx context.Context, key string, profile Profile) error {
	return errors.New("read only")
}

func (g *staticGallery) Delete(ctx context.Context, key string) error {
	return errors.New("read only")
}
