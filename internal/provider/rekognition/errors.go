package rekognition

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates that Rekognition rejected the image bytes
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrThrottled indicates that the request rate exceeded the account limits
	ErrThrottled = fmt.Errorf("rekognition request throttled: %w", provider.ErrUnavailable)
)
