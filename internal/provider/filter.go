package provider

import (
	"context"
	"image"
)

// ConfidenceFilter drops detections below a minimum confidence.
type ConfidenceFilter struct {
	next          FaceDetector
	minConfidence float64
}

// WithMinConfidence wraps a detector so that only detections with
// confidence >= minConfidence are returned.
func WithMinConfidence(next FaceDetector, minConfidence float64) *ConfidenceFilter {
	return &ConfidenceFilter{next: next, minConfidence: minConfidence}
}

// DetectFaces implements FaceDetector
func (f *ConfidenceFilter) DetectFaces(ctx context.Context, img image.Image) ([]DetectedFace, error) {
	faces, err := f.next.DetectFaces(ctx, img)
	if err != nil {
		return nil, err
	}

	kept := faces[:0:0]
	for _, face := range faces {
		if face.Confidence >= f.minConfidence {
			kept = append(kept, face)
		}
	}
	return kept, nil
}

var _ FaceDetector = (*ConfidenceFilter)(nil)
