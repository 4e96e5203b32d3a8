package mock

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

func uniform(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}
	return img
}

func stripes(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x * 255) / w)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestProvider_DetectFaces(t *testing.T) {
	p := New()
	ctx := context.Background()

	tests := []struct {
		name      string
		image     image.Image
		wantFaces int
	}{
		{name: "textured image", image: stripes(100, 50), wantFaces: 1},
		{name: "flat image", image: uniform(100, 50), wantFaces: 0},
		{name: "empty image", image: image.NewRGBA(image.Rect(0, 0, 0, 0)), wantFaces: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faces, err := p.DetectFaces(ctx, tt.image)
			require.NoError(t, err)
			assert.Len(t, faces, tt.wantFaces)
		})
	}
}

func TestProvider_DetectFaces_PixelBox(t *testing.T) {
	faces, err := New().DetectFaces(context.Background(), stripes(100, 50))
	require.NoError(t, err)
	require.Len(t, faces, 1)

	assert.InDelta(t, 10, faces[0].BoundingBox.X, 1e-9)
	assert.InDelta(t, 5, faces[0].BoundingBox.Y, 1e-9)
	assert.InDelta(t, 80, faces[0].BoundingBox.Width, 1e-9)
	assert.InDelta(t, 40, faces[0].BoundingBox.Height, 1e-9)
	assert.Equal(t, 0.99, faces[0].Confidence)
}

func TestProvider_DetectFaces_Custom(t *testing.T) {
	p := &Provider{Faces: []provider.DetectedFace{
		{BoundingBox: provider.BoundingBox{X: 0, Y: 0, Width: 0.5, Height: 0.5}, Confidence: 0.4},
		{BoundingBox: provider.BoundingBox{X: 0.5, Y: 0.5, Width: 0.25, Height: 0.25}, Confidence: 0.9},
	}}

	faces, err := p.DetectFaces(context.Background(), stripes(200, 200))
	require.NoError(t, err)
	require.Len(t, faces, 2)
	assert.InDelta(t, 100, faces[0].BoundingBox.Width, 1e-9)
	assert.InDelta(t, 100, faces[1].BoundingBox.X, 1e-9)
}

func TestProvider_DetectFaces_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().DetectFaces(ctx, stripes(10, 10))
	assert.ErrorIs(t, err, context.Canceled)
}
