package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
)

type Config struct {
	// Server
	Port           int           `envconfig:"PORT" default:"3000"`
	Environment    string        `envconfig:"ENV" default:"development"`
	LogLevel       string        `envconfig:"LOG_LEVEL"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	LoginRateLimit int           `envconfig:"LOGIN_RATE_LIMIT" default:"30"`

	// Database; empty keeps every store in memory
	DatabaseURL string `envconfig:"DATABASE_URL"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"false"`

	// Detector
	DetectorType           string  `envconfig:"DETECTOR_TYPE" default:"deepface"`
	DeepFaceURL            string  `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel          string  `envconfig:"DEEPFACE_MODEL" default:"VGG-Face"`
	DeepFaceDetector       string  `envconfig:"DEEPFACE_DETECTOR" default:"mediapipe"`
	AWSRegion              string  `envconfig:"AWS_REGION" default:"us-east-1"`
	MinDetectionConfidence float64 `envconfig:"MIN_DETECTION_CONFIDENCE" default:"0.5"`

	// Extractor; empty model path selects the thumbnail extractor
	ExtractorModelPath string `envconfig:"EXTRACTOR_MODEL_PATH"`
	ExtractorThreads   int    `envconfig:"EXTRACTOR_THREADS" default:"0"`

	// Scoring
	EnsembleWeight       float64 `envconfig:"ENSEMBLE_WEIGHT" default:"0.4"`
	BestIndividualWeight float64 `envconfig:"BEST_INDIVIDUAL_WEIGHT" default:"0.3"`
	AvgIndividualWeight  float64 `envconfig:"AVG_INDIVIDUAL_WEIGHT" default:"0.3"`
	StrictThreshold      float64 `envconfig:"STRICT_THRESHOLD" default:"0.75"`
	MultiPhotoThreshold  float64 `envconfig:"MULTI_PHOTO_THRESHOLD" default:"0.70"`
	MultiPhotoMinCount   int     `envconfig:"MULTI_PHOTO_MIN_COUNT" default:"3"`
	MinEnrollmentPhotos  int     `envconfig:"MIN_ENROLLMENT_PHOTOS" default:"2"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MinEnrollmentPhotos < recognition.DefaultMinEnrollmentPhotos {
		return fmt.Errorf("MIN_ENROLLMENT_PHOTOS must be at least %d", recognition.DefaultMinEnrollmentPhotos)
	}
	if c.MinDetectionConfidence < 0 || c.MinDetectionConfidence > 1 {
		return fmt.Errorf("MIN_DETECTION_CONFIDENCE must be within [0,1]")
	}
	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// InMemory reports whether no database is configured.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == ""
}

// Scoring builds the scorer configuration.
func (c *Config) Scoring() recognition.ScoringConfig {
	return recognition.ScoringConfig{
		EnsembleWeight:       c.EnsembleWeight,
		BestIndividualWeight: c.BestIndividualWeight,
		AvgIndividualWeight:  c.AvgIndividualWeight,
		StrictThreshold:      c.StrictThreshold,
		MultiPhotoThreshold:  c.MultiPhotoThreshold,
		MultiPhotoMinCount:   c.MultiPhotoMinCount,
	}
}

// Engine builds the recognition engine configuration.
func (c *Config) Engine() recognition.EngineConfig {
	return recognition.EngineConfig{
		Scoring:             c.Scoring(),
		MinEnrollmentPhotos: c.MinEnrollmentPhotos,
	}
}
