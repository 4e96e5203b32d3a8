package rekognition

import "github.com/saturnino-fabrica-de-software/facegate/internal/imaging"

// Config controls how frames are shipped to DetectFaces
type Config struct {
	// Region of the Rekognition endpoint, e.g. "us-east-1"
	Region string

	// MaxImageSide caps the longest side before upload; larger frames are
	// downscaled so the JPEG stays under the 5MB request limit.
	MaxImageSide int

	// JPEGQuality of the re-encoded upload (1..100)
	JPEGQuality int

	// MaxAttempts is the SDK retry budget for throttled calls; zero keeps the SDK default
	MaxAttempts int
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:       "us-east-1",
		MaxImageSide: 1920,
		JPEGQuality:  imaging.DefaultJPEGQuality,
		MaxAttempts:  3,
	}
}
