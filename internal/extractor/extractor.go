// Package extractor provides the feature extractors behind face embeddings.
package extractor

import (
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
)

// Config selects and tunes the extractor.
type Config struct {
	// ModelPath points at a .tflite embedding model. Empty selects Thumbnail.
	ModelPath string
	Threads   int
}

// New returns the extractor described by cfg.
func New(cfg Config, logger *slog.Logger) (recognition.Extractor, error) {
	if cfg.ModelPath == "" {
		logger.Warn("no embedding model configured, using thumbnail extractor")
		return NewThumbnail(), nil
	}

	model, err := NewTFLite(cfg.ModelPath, cfg.Threads, logger)
	if err != nil {
		return nil, err
	}
	return model, nil
}
