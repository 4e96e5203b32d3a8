package deepface

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facegate/internal/imaging"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// skipDetector makes DeepFace embed the submitted image as a single face.
const skipDetector = "skip"

// Provider detects faces and extracts embeddings through a DeepFace server.
type Provider struct {
	client       *Client
	maxImageSide int
	logger       *slog.Logger
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config, logger *slog.Logger) *Provider {
	return &Provider{
		client:       NewClient(config),
		maxImageSide: config.MaxImageSide,
		logger:       logger,
	}
}

// DetectFaces returns the faces DeepFace localizes in img, in img pixels.
func (p *Provider) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	sent := imaging.Fit(img, p.maxImageSide)
	payload, err := encode(sent)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	resp, err := p.client.Represent(ctx, payload, "")
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	scale := float64(img.Bounds().Dx()) / float64(sent.Bounds().Dx())

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		// without enforced detection a miss comes back as the whole frame at confidence 0
		if result.FaceConfidence <= 0 {
			continue
		}

		area := result.FacialArea
		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(area.X) * scale,
				Y:      float64(area.Y) * scale,
				Width:  float64(area.W) * scale,
				Height: float64(area.H) * scale,
			},
			Confidence: result.FaceConfidence,
		})
	}

	p.logger.Debug("deepface detection",
		slog.Int("results", len(resp.Results)),
		slog.Int("faces", len(faces)),
	)
	return faces, nil
}

// Extract embeds an already cropped face.
func (p *Provider) Extract(ctx context.Context, face image.Image) ([]float64, error) {
	payload, err := encode(imaging.Fit(face, p.maxImageSide))
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	resp, err := p.client.Represent(ctx, payload, skipDetector)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Embedding) == 0 {
		return nil, ErrNoFaceInResponse
	}

	return resp.Results[0].Embedding, nil
}

func encode(img image.Image) (string, error) {
	data, err := imaging.EncodeJPEG(img, imaging.DefaultJPEGQuality)
	if err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

var _ provider.FaceDetector = (*Provider)(nil)
