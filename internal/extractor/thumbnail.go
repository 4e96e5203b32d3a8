package extractor

import (
	"context"
	"image"
	"image/color"

	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/facegate/internal/imaging"
)

const defaultThumbnailSide = 16

// Thumbnail is a model-free extractor for development and tests: the feature
// vector is the mean-centred grayscale thumbnail of the face. It is
// deterministic but has no invariance to pose or lighting.
type Thumbnail struct {
	Side int
}

// NewThumbnail creates a thumbnail extractor with the default 16x16 grid.
func NewThumbnail() *Thumbnail {
	return &Thumbnail{Side: defaultThumbnailSide}
}

func (t *Thumbnail) Extract(ctx context.Context, face image.Image) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	side := t.Side
	if side <= 0 {
		side = defaultThumbnailSide
	}

	small := imaging.Resize(face, side, side)
	features := make([]float64, 0, side*side)
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			gray := color.GrayModel.Convert(small.At(x, y)).(color.Gray)
			features = append(features, float64(gray.Y))
		}
	}

	mean := floats.Sum(features) / float64(len(features))
	floats.AddConst(-mean, features)
	return features, nil
}
