package recognition

import (
	"errors"
	"fmt"
)

// ProfileKind tags the stored shape of an identity.
type ProfileKind string

const (
	// KindLegacy is a single bare embedding without ensemble metadata.
	KindLegacy ProfileKind = "legacy"
	// KindMultiPhoto is an EnrollmentProfile built from several photos.
	KindMultiPhoto ProfileKind = "multi_photo"
)

// ErrCorruptProfile is wrapped by every structural validation failure.
var ErrCorruptProfile = errors.New("corrupt profile")

// EnrollmentProfile is what gets persisted for a multi-photo identity.
type EnrollmentProfile struct {
	// Ensemble is the re-normalized mean of Individual.
	Ensemble Embedding
	// Individual holds one embedding per accepted training photo, in submission order.
	Individual []Embedding
	// PhotoCount equals len(Individual).
	PhotoCount int
	// TrainingQuality is accepted photos / submitted photos.
	TrainingQuality float64
}

// Profile is the tagged variant Legacy(Embedding) | MultiPhoto(EnrollmentProfile).
type Profile struct {
	Kind   ProfileKind
	Legacy Embedding
	Multi  *EnrollmentProfile
}

// LegacyProfile wraps a single stored embedding.
func LegacyProfile(e Embedding) Profile {
	return Profile{Kind: KindLegacy, Legacy: e}
}

// MultiPhotoProfile wraps an enrollment profile.
func MultiPhotoProfile(p *EnrollmentProfile) Profile {
	return Profile{Kind: KindMultiPhoto, Multi: p}
}

// PhotoCount returns the number of training photos behind the profile.
// Legacy profiles count as one photo.
func (p Profile) PhotoCount() int {
	switch p.Kind {
	case KindMultiPhoto:
		if p.Multi == nil {
			return 0
		}
		return p.Multi.PhotoCount
	case KindLegacy:
		return 1
	default:
		return 0
	}
}

// TrainingQuality returns the profile quality; legacy profiles report 1.0.
func (p Profile) TrainingQuality() float64 {
	if p.Kind == KindMultiPhoto && p.Multi != nil {
		return p.Multi.TrainingQuality
	}
	if p.Kind == KindLegacy {
		return 1.0
	}
	return 0
}

// Validate checks the data-model invariants: unit-norm embeddings of a single
// dimension and, for multi-photo profiles, PhotoCount >= 2 matching the stored
// individual embeddings.
func (p Profile) Validate() error {
	switch p.Kind {
	case KindLegacy:
		if !p.Legacy.IsUnit() {
			return fmt.Errorf("%w: legacy embedding is not unit length", ErrCorruptProfile)
		}
		return nil

	case KindMultiPhoto:
		m := p.Multi
		if m == nil {
			return fmt.Errorf("%w: missing enrollment data", ErrCorruptProfile)
		}
		if !m.Ensemble.IsUnit() {
			return fmt.Errorf("%w: ensemble embedding is not unit length", ErrCorruptProfile)
		}
		if m.PhotoCount < 2 {
			return fmt.Errorf("%w: photo count %d below 2", ErrCorruptProfile, m.PhotoCount)
		}
		if m.PhotoCount != len(m.Individual) {
			return fmt.Errorf("%w: photo count %d but %d individual embeddings",
				ErrCorruptProfile, m.PhotoCount, len(m.Individual))
		}
		if m.TrainingQuality <= 0 || m.TrainingQuality > 1 {
			return fmt.Errorf("%w: training quality %.3f outside (0,1]", ErrCorruptProfile, m.TrainingQuality)
		}
		for i, e := range m.Individual {
			if len(e) != len(m.Ensemble) {
				return fmt.Errorf("%w: individual embedding %d has dimension %d, want %d",
					ErrCorruptProfile, i, len(e), len(m.Ensemble))
			}
			if !e.IsUnit() {
				return fmt.Errorf("%w: individual embedding %d is not unit length", ErrCorruptProfile, i)
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown kind %q", ErrCorruptProfile, p.Kind)
	}
}

// clone deep-copies the profile so stored values never alias caller slices.
func (p Profile) clone() Profile {
	out := Profile{Kind: p.Kind, Legacy: p.Legacy.Clone()}
	if p.Multi != nil {
		individual := make([]Embedding, len(p.Multi.Individual))
		for i, e := range p.Multi.Individual {
			individual[i] = e.Clone()
		}
		out.Multi = &EnrollmentProfile{
			Ensemble:        p.Multi.Ensemble.Clone(),
			Individual:      individual,
			PhotoCount:      p.Multi.PhotoCount,
			TrainingQuality: p.Multi.TrainingQuality,
		}
	}
	return out
}
