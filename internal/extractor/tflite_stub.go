//go:build !tflite

package extractor

import (
	"context"
	"errors"
	"image"
	"log/slog"
)

// ErrTFLiteUnavailable is returned when the binary was built without the tflite tag.
var ErrTFLiteUnavailable = errors.New("tflite support not compiled in: rebuild with -tags tflite")

// TFLite is unavailable in this build.
type TFLite struct{}

// NewTFLite always fails without the tflite build tag.
func NewTFLite(path string, threads int, logger *slog.Logger) (*TFLite, error) {
	return nil, ErrTFLiteUnavailable
}

func (t *TFLite) Extract(ctx context.Context, face image.Image) ([]float64, error) {
	return nil, ErrTFLiteUnavailable
}

func (t *TFLite) Close() error { return nil }
