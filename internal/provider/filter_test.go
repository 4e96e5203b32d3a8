package provider

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	faces []DetectedFace
	err   error
}

func (s stubDetector) DetectFaces(ctx context.Context, img image.Image) ([]DetectedFace, error) {
	return s.faces, s.err
}

func TestConfidenceFilter_DetectFaces(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))

	t.Run("drops low confidence detections", func(t *testing.T) {
		d := WithMinConfidence(stubDetector{faces: []DetectedFace{
			{Confidence: 0.3},
			{Confidence: 0.5},
			{Confidence: 0.9},
		}}, 0.5)

		faces, err := d.DetectFaces(context.Background(), img)
		require.NoError(t, err)
		require.Len(t, faces, 2)
		assert.Equal(t, 0.5, faces[0].Confidence)
		assert.Equal(t, 0.9, faces[1].Confidence)
	})

	t.Run("propagates detector error", func(t *testing.T) {
		d := WithMinConfidence(stubDetector{err: errors.New("boom")}, 0.5)

		faces, err := d.DetectFaces(context.Background(), img)
		assert.Error(t, err)
		assert.Nil(t, faces)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		d := WithMinConfidence(stubDetector{}, 0.5)

		faces, err := d.DetectFaces(context.Background(), img)
		require.NoError(t, err)
		assert.Empty(t, faces)
	})
}

func TestFromRelative(t *testing.T) {
	box := FromRelative(0.25, 0.5, 0.5, 0.25, image.Rect(0, 0, 200, 100))

	assert.Equal(t, BoundingBox{X: 50, Y: 50, Width: 100, Height: 25}, box)
	assert.Equal(t, 2500.0, box.Area())
}
