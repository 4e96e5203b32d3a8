package mock

import (
	"context"
	"image"
	"image/color"

	"gonum.org/v1/gonum/stat"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

const (
	sampleGrid = 8
	// abaixo disso a imagem é considerada lisa (sem rosto)
	minVariance = 4.0
)

// Provider implementa provider.FaceDetector para testes e desenvolvimento
type Provider struct {
	// Faces, se definido, é devolvido para toda imagem não lisa (coordenadas relativas)
	Faces []provider.DetectedFace
}

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

// DetectFaces simula detecção: imagens lisas não têm rosto, as demais têm um
// rosto centralizado ocupando 80% do quadro.
func (p *Provider) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Empty() || isFlat(img) {
		return []provider.DetectedFace{}, nil
	}

	relative := p.Faces
	if relative == nil {
		relative = []provider.DetectedFace{{
			BoundingBox: provider.BoundingBox{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8},
			Confidence:  0.99,
		}}
	}

	faces := make([]provider.DetectedFace, 0, len(relative))
	for _, f := range relative {
		b := f.BoundingBox
		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.FromRelative(b.X, b.Y, b.Width, b.Height, bounds),
			Confidence:  f.Confidence,
		})
	}
	return faces, nil
}

// isFlat amostra uma grade de pixels e verifica a variância da luminância
func isFlat(img image.Image) bool {
	bounds := img.Bounds()
	samples := make([]float64, 0, sampleGrid*sampleGrid)

	for gy := 0; gy < sampleGrid; gy++ {
		for gx := 0; gx < sampleGrid; gx++ {
			x := bounds.Min.X + gx*bounds.Dx()/sampleGrid
			y := bounds.Min.Y + gy*bounds.Dy()/sampleGrid
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			samples = append(samples, float64(gray.Y))
		}
	}

	return stat.Variance(samples, nil) < minVariance
}

var _ provider.FaceDetector = (*Provider)(nil)
