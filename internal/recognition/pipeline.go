package recognition

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// Extractor turns the pixels of one face into a fixed-length feature vector.
// Implementations wrap a frozen model and must be deterministic for identical input.
// The returned vector does not need to be normalized.
type Extractor interface {
	Extract(ctx context.Context, face image.Image) ([]float64, error)
}

// probeStatus classifies what a single image yielded.
type probeStatus int

const (
	probeOK probeStatus = iota
	probeNoFace
	probeExtractionFailed
)

func (s probeStatus) String() string {
	switch s {
	case probeOK:
		return "ok"
	case probeNoFace:
		return "no_face"
	case probeExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}

// pipeline runs localize → select → extract for one image.
type pipeline struct {
	detector  provider.FaceDetector
	extractor Extractor
	logger    *slog.Logger
}

// probe returns the embedding of the primary face in img.
// Detector failures are returned as errors; a missing face or a failed extraction
// are reported through the status with a nil embedding.
func (p *pipeline) probe(ctx context.Context, img image.Image) (Embedding, probeStatus, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, probeNoFace, nil
	}

	faces, err := p.detector.DetectFaces(ctx, img)
	if err != nil {
		return nil, probeNoFace, fmt.Errorf("detect faces: %w", err)
	}

	primary := SelectPrimaryFace(cropRegions(img, faces))
	if primary == nil {
		return nil, probeNoFace, nil
	}

	embedding := p.embed(ctx, *primary)
	if embedding == nil {
		return nil, probeExtractionFailed, nil
	}

	return embedding, probeOK, nil
}

// embed extracts and normalizes the embedding of one region.
// Any failure yields nil; it is never fatal.
func (p *pipeline) embed(ctx context.Context, region FaceRegion) Embedding {
	raw, err := p.extractor.Extract(ctx, region.Image)
	if err != nil {
		p.logger.Warn("feature extraction failed",
			slog.String("error", err.Error()),
			slog.Int("face_area", region.Area()),
		)
		return nil
	}

	embedding := Normalize(raw)
	if embedding == nil {
		p.logger.Warn("feature extraction returned an unusable vector",
			slog.Int("length", len(raw)),
		)
	}
	return embedding
}
