package recognition

import "fmt"

// InsufficientSamplesError is returned when enrollment has fewer usable photos than required.
type InsufficientSamplesError struct {
	Submitted int
	Usable    int
	Required  int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("insufficient samples: %d of %d images usable, %d required",
		e.Usable, e.Submitted, e.Required)
}

// DuplicateIdentityError is returned when the face being enrolled already matches a stored identity.
type DuplicateIdentityError struct {
	IdentityKey string
	Score       float64
}

func (e *DuplicateIdentityError) Error() string {
	return "duplicate-identity: " + e.IdentityKey
}
