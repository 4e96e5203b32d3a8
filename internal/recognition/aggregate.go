package recognition

import (
	"context"
	"image"
	"log/slog"
)

// DefaultMinEnrollmentPhotos is the hard floor of usable photos for an enrollment.
const DefaultMinEnrollmentPhotos = 2

// Aggregator builds enrollment profiles from several photos of one person.
type Aggregator struct {
	pipeline  *pipeline
	minPhotos int
	logger    *slog.Logger
}

// Aggregate embeds the primary face of every image and builds a profile.
// Images without a face or without a usable embedding are skipped.
// It returns a nil profile when fewer than the minimum number of photos were
// usable; valid is the number of usable photos either way.
func (a *Aggregator) Aggregate(ctx context.Context, images []image.Image) (profile *EnrollmentProfile, valid int, err error) {
	return a.aggregate(ctx, images, nil)
}

// probeResult is the already computed outcome for one image.
type probeResult struct {
	embedding Embedding
	status    probeStatus
}

// aggregate uses first as the outcome of images[0] when it is not nil.
func (a *Aggregator) aggregate(ctx context.Context, images []image.Image, first *probeResult) (*EnrollmentProfile, int, error) {
	embeddings := make([]Embedding, 0, len(images))

	for i, img := range images {
		var (
			embedding Embedding
			status    probeStatus
			err       error
		)
		if i == 0 && first != nil {
			embedding, status = first.embedding, first.status
		} else {
			embedding, status, err = a.pipeline.probe(ctx, img)
		}
		if err != nil {
			return nil, len(embeddings), err
		}

		if status != probeOK {
			a.logger.Debug("enrollment photo skipped",
				slog.Int("image", i+1),
				slog.String("reason", status.String()),
			)
			continue
		}

		embeddings = append(embeddings, embedding)
	}

	return BuildProfile(embeddings, len(images), a.minPhotos), len(embeddings), nil
}

// BuildProfile aggregates accepted embeddings into an EnrollmentProfile.
// submitted is the number of images originally offered. It returns nil when
// fewer than minPhotos (never less than 2) embeddings are given or when the
// ensemble cannot be normalized.
func BuildProfile(embeddings []Embedding, submitted, minPhotos int) *EnrollmentProfile {
	minPhotos = max(minPhotos, DefaultMinEnrollmentPhotos)
	if len(embeddings) < minPhotos || submitted < len(embeddings) {
		return nil
	}

	dim := len(embeddings[0])
	for _, e := range embeddings {
		if len(e) != dim || len(e) == 0 {
			return nil
		}
	}

	ensemble := Normalize(meanEmbedding(embeddings))
	if ensemble == nil {
		return nil
	}

	individual := make([]Embedding, len(embeddings))
	for i, e := range embeddings {
		individual[i] = e.Clone()
	}

	return &EnrollmentProfile{
		Ensemble:        ensemble,
		Individual:      individual,
		PhotoCount:      len(individual),
		TrainingQuality: float64(len(individual)) / float64(submitted),
	}
}
