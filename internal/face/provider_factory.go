package face

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/facegate/internal/config"
	"github.com/saturnino-fabrica-de-software/facegate/internal/extractor"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider/rekognition"
	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
)

// DetectorType defines supported face detector types
type DetectorType string

const (
	// DetectorTypeMock is the offline detector (dev/test)
	DetectorTypeMock DetectorType = "mock"
	// DetectorTypeDeepFace is the DeepFace detector (self-hosted)
	DetectorTypeDeepFace DetectorType = "deepface"
	// DetectorTypeRekognition is the AWS Rekognition detector (cloud)
	DetectorTypeRekognition DetectorType = "rekognition"
)

// NewFaceDetector creates the configured detector wrapped in the minimum
// detection confidence filter.
//
// Environment variables:
//   - DETECTOR_TYPE: "mock", "deepface" or "rekognition" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - MIN_DETECTION_CONFIDENCE: detections below it are dropped (default: 0.5)
func NewFaceDetector(ctx context.Context, cfg *config.Config, logger *slog.Logger) (provider.FaceDetector, error) {
	var detector provider.FaceDetector

	switch DetectorType(cfg.DetectorType) {
	case DetectorTypeRekognition:
		rekogConfig := rekognition.DefaultConfig()
		rekogConfig.Region = cfg.AWSRegion

		prov, err := rekognition.NewProvider(ctx, rekogConfig, logger.With("component", "rekognition"))
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		detector = prov

	case DetectorTypeDeepFace, "":
		detector = newDeepFace(cfg, logger)

	case DetectorTypeMock:
		detector = mock.New()

	default:
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s, %s)",
			cfg.DetectorType, DetectorTypeMock, DetectorTypeDeepFace, DetectorTypeRekognition)
	}

	return provider.WithMinConfidence(detector, cfg.MinDetectionConfidence), nil
}

// NewExtractor creates the embedding extractor. A configured model file always
// wins; otherwise the DeepFace detector doubles as extractor and the offline
// detectors fall back to the thumbnail extractor.
func NewExtractor(cfg *config.Config, logger *slog.Logger) (recognition.Extractor, error) {
	kind := DetectorType(cfg.DetectorType)
	if cfg.ExtractorModelPath == "" && (kind == DetectorTypeDeepFace || kind == "") {
		return newDeepFace(cfg, logger), nil
	}

	return extractor.New(extractor.Config{
		ModelPath: cfg.ExtractorModelPath,
		Threads:   cfg.ExtractorThreads,
	}, logger.With("component", "extractor"))
}

func newDeepFace(cfg *config.Config, logger *slog.Logger) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		deepfaceConfig.Model = cfg.DeepFaceModel
	}
	if cfg.DeepFaceDetector != "" {
		deepfaceConfig.Detector = cfg.DeepFaceDetector
	}

	return deepface.NewProvider(deepfaceConfig, logger.With("component", "deepface"))
}
