package recognition

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

// EngineConfig configures the identity-matching engine.
type EngineConfig struct {
	Scoring             ScoringConfig
	MinEnrollmentPhotos int
}

// DefaultEngineConfig returns the default engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Scoring:             DefaultScoringConfig(),
		MinEnrollmentPhotos: DefaultMinEnrollmentPhotos,
	}
}

// Enrollment describes a successfully stored identity.
type Enrollment struct {
	IdentityKey string
	Profile     *EnrollmentProfile
	Submitted   int
	Valid       int
}

// Engine owns the gallery and its access discipline: recognition scans under a
// shared lock, enrollment writes under the exclusive lock.
type Engine struct {
	pipeline   *pipeline
	aggregator *Aggregator
	scanner    *Scanner
	gallery    Gallery
	minPhotos  int
	logger     *slog.Logger

	mu sync.RWMutex
}

// NewEngine wires the collaborators into an engine.
func NewEngine(detector provider.FaceDetector, extractor Extractor, gallery Gallery, cfg EngineConfig, logger *slog.Logger) *Engine {
	logger = logger.With("component", "recognition")

	p := &pipeline{
		detector:  detector,
		extractor: extractor,
		logger:    logger,
	}

	minPhotos := max(cfg.MinEnrollmentPhotos, DefaultMinEnrollmentPhotos)

	return &Engine{
		pipeline: p,
		aggregator: &Aggregator{
			pipeline:  p,
			minPhotos: minPhotos,
			logger:    logger,
		},
		scanner:   NewScanner(NewScorer(cfg.Scoring), logger),
		gallery:   gallery,
		minPhotos: minPhotos,
		logger:    logger,
	}
}

// Recognize finds the identity behind the primary face of img.
// When no usable face is found the outcome is no_face and the gallery is not touched.
func (e *Engine) Recognize(ctx context.Context, img image.Image) (MatchResult, error) {
	embedding, status, err := e.pipeline.probe(ctx, img)
	if err != nil {
		return MatchResult{}, fmt.Errorf("recognize: %w", err)
	}
	if status != probeOK {
		e.logger.Debug("no usable face in probe image", slog.String("reason", status.String()))
		return MatchResult{Outcome: OutcomeNoFace}, nil
	}

	return e.Identify(ctx, embedding)
}

// Identify scans the gallery for the best match of an already extracted embedding.
func (e *Engine) Identify(ctx context.Context, embedding Embedding) (MatchResult, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result, err := e.scanner.Identify(ctx, e.gallery, embedding)
	if err != nil {
		return MatchResult{}, fmt.Errorf("identify: %w", err)
	}

	e.logger.Info("gallery scan completed",
		slog.String("outcome", string(result.Outcome)),
		slog.String("identity_key", result.IdentityKey),
		slog.Float64("score", result.Score),
		slog.Int("scanned", result.Scanned),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Enroll stores a new identity built from images under key.
//
// The first image is checked against the gallery before anything is stored; a
// match fails with *DuplicateIdentityError. Fewer usable photos than the minimum
// fail with *InsufficientSamplesError. The gallery is unchanged on any error.
func (e *Engine) Enroll(ctx context.Context, key string, images []image.Image) (*Enrollment, error) {
	if key == "" {
		return nil, errors.New("enroll: empty identity key")
	}
	if len(images) < e.minPhotos {
		return nil, &InsufficientSamplesError{Submitted: len(images), Required: e.minPhotos}
	}

	probe, status, err := e.pipeline.probe(ctx, images[0])
	if err != nil {
		return nil, fmt.Errorf("enroll: duplicate check: %w", err)
	}
	if status == probeOK {
		if err := e.checkDuplicate(ctx, probe, true); err != nil {
			return nil, err
		}
	}

	profile, valid, err := e.aggregator.aggregate(ctx, images, &probeResult{embedding: probe, status: status})
	if err != nil {
		return nil, fmt.Errorf("enroll: aggregate: %w", err)
	}
	if profile == nil {
		return nil, &InsufficientSamplesError{Submitted: len(images), Usable: valid, Required: e.minPhotos}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// A concurrent enrollment may have stored the same face since the first check.
	if status == probeOK {
		if err := e.checkDuplicate(ctx, probe, false); err != nil {
			return nil, err
		}
	}

	if err := e.gallery.Put(ctx, key, MultiPhotoProfile(profile)); err != nil {
		return nil, fmt.Errorf("enroll: store profile: %w", err)
	}

	e.logger.Info("identity enrolled",
		slog.String("identity_key", key),
		slog.Int("submitted", len(images)),
		slog.Int("valid", valid),
		slog.Float64("training_quality", profile.TrainingQuality),
	)

	return &Enrollment{
		IdentityKey: key,
		Profile:     profile,
		Submitted:   len(images),
		Valid:       valid,
	}, nil
}

// checkDuplicate fails when probe matches a stored identity.
// lock selects whether to take the shared lock; callers already holding the
// exclusive lock pass false.
func (e *Engine) checkDuplicate(ctx context.Context, probe Embedding, lock bool) error {
	if lock {
		e.mu.RLock()
		defer e.mu.RUnlock()
	}

	result, err := e.scanner.Identify(ctx, e.gallery, probe)
	if err != nil {
		return fmt.Errorf("enroll: duplicate check: %w", err)
	}
	if result.Matched() {
		e.logger.Warn("enrollment rejected: face already enrolled",
			slog.String("identity_key", result.IdentityKey),
			slog.Float64("score", result.Score),
		)
		return &DuplicateIdentityError{IdentityKey: result.IdentityKey, Score: result.Score}
	}
	return nil
}

// Remove deletes a stored identity. It is used to roll back a registration whose
// metadata could not be saved.
func (e *Engine) Remove(ctx context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.gallery.Delete(ctx, key); err != nil {
		return fmt.Errorf("remove profile %s: %w", key, err)
	}
	return nil
}

// Profiles returns every gallery entry, including unreadable ones, for reporting.
func (e *Engine) Profiles(ctx context.Context) ([]ProfileRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	records, err := e.gallery.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return records, nil
}
