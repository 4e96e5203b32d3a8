package rekognition

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/facegate/internal/imaging"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
const maxImageSize = 5 * 1024 * 1024

// Provider implements provider.FaceDetector using AWS Rekognition DetectFaces.
// Embeddings are never requested from AWS; they are computed locally.
type Provider struct {
	client *Client
	logger *slog.Logger
}

// Ensure Provider implements provider.FaceDetector interface at compile time
var _ provider.FaceDetector = (*Provider)(nil)

// NewProvider creates a new Rekognition detector
func NewProvider(ctx context.Context, cfg Config, logger *slog.Logger) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &Provider{client: client, logger: logger}, nil
}

// DetectFaces detects faces using the DetectFaces API.
// Returns an empty slice if no faces are detected (not an error).
func (p *Provider) DetectFaces(ctx context.Context, img image.Image) ([]provider.DetectedFace, error) {
	data, err := imaging.EncodeJPEG(imaging.Fit(img, p.client.config.MaxImageSide), p.client.config.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(data), maxImageSize)
	}

	output, err := p.client.rekognition.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: data},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", ParseDetectError(err))
	}

	bounds := img.Bounds()
	faces := make([]provider.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		box := detail.BoundingBox
		if box == nil || box.Left == nil || box.Top == nil || box.Width == nil || box.Height == nil {
			continue
		}

		var confidence float64
		if detail.Confidence != nil {
			confidence = float64(*detail.Confidence) / 100
		}

		// Rekognition boxes are ratios of the frame and may extend past its edges
		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.FromRelative(
				float64(*box.Left), float64(*box.Top),
				float64(*box.Width), float64(*box.Height),
				bounds,
			),
			Confidence: confidence,
		})
	}

	p.logger.Debug("rekognition detection",
		slog.Int("faces", len(faces)),
		slog.Int("image_bytes", len(data)),
	)

	return faces, nil
}
