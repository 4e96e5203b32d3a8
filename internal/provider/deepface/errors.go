package deepface

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
)

var (
	ErrDeepFaceUnavailable = fmt.Errorf("deepface service unavailable: %w", provider.ErrUnavailable)
	ErrInvalidResponse     = errors.New("invalid response from deepface")
	ErrNoFaceInResponse    = errors.New("no face data in deepface response")
)
