package recognition

import "math"

// ScoringConfig holds the empirical weights and thresholds of the scorer.
type ScoringConfig struct {
	EnsembleWeight       float64
	BestIndividualWeight float64
	AvgIndividualWeight  float64

	// StrictThreshold applies to legacy profiles and profiles with few photos.
	StrictThreshold float64
	// MultiPhotoThreshold applies once a profile has MultiPhotoMinCount photos.
	MultiPhotoThreshold float64
	MultiPhotoMinCount  int
}

// DefaultScoringConfig returns the tuned defaults: 0.4/0.3/0.3 weights,
// 0.75 strict threshold, 0.70 threshold from 3 photos upward.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		EnsembleWeight:       0.4,
		BestIndividualWeight: 0.3,
		AvgIndividualWeight:  0.3,
		StrictThreshold:      0.75,
		MultiPhotoThreshold:  0.70,
		MultiPhotoMinCount:   3,
	}
}

// Score is the outcome of comparing one unknown embedding with one profile.
type Score struct {
	IsMatch   bool
	Value     float64
	Threshold float64

	// Strategy breakdown, zero for legacy comparisons.
	EnsembleSim       float64
	BestIndividualSim float64
	AvgIndividualSim  float64
}

// Scorer compares unknown embeddings with stored profiles.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer with the given configuration
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Config returns the scorer configuration.
func (s *Scorer) Config() ScoringConfig {
	return s.cfg
}

// Score dispatches on the profile kind.
func (s *Scorer) Score(p Profile, unknown Embedding) Score {
	switch p.Kind {
	case KindMultiPhoto:
		return s.ScoreAdvanced(p.Multi, unknown)
	case KindLegacy:
		return s.ScoreSimple(p.Legacy, unknown, s.cfg.StrictThreshold)
	default:
		return Score{}
	}
}

// ThresholdFor returns the threshold the profile is scored against.
func (s *Scorer) ThresholdFor(p Profile) float64 {
	if p.Kind == KindMultiPhoto && p.Multi != nil {
		return s.multiThreshold(p.Multi.PhotoCount)
	}
	return s.cfg.StrictThreshold
}

func (s *Scorer) multiThreshold(photoCount int) float64 {
	if photoCount >= s.cfg.MultiPhotoMinCount {
		return s.cfg.MultiPhotoThreshold
	}
	return s.cfg.StrictThreshold
}

// ScoreAdvanced combines ensemble, best-individual and average-individual cosine
// similarity, scales by training quality and applies the photo-count dependent threshold.
// A nil profile or unknown embedding is a non-match with score 0.
func (s *Scorer) ScoreAdvanced(p *EnrollmentProfile, unknown Embedding) Score {
	if p == nil || len(unknown) == 0 {
		return Score{}
	}

	ensembleSim := CosineSimilarity(p.Ensemble, unknown)

	var best, sum float64
	if len(p.Individual) > 0 {
		best = math.Inf(-1)
		for _, e := range p.Individual {
			sim := CosineSimilarity(e, unknown)
			sum += sim
			if sim > best {
				best = sim
			}
		}
	}
	var avg float64
	if n := len(p.Individual); n > 0 {
		avg = sum / float64(n)
	}

	qualityWeight := math.Min(p.TrainingQuality, 1.0)

	final := (s.cfg.EnsembleWeight*ensembleSim +
		s.cfg.BestIndividualWeight*best +
		s.cfg.AvgIndividualWeight*avg) * qualityWeight

	threshold := s.multiThreshold(p.PhotoCount)

	return Score{
		IsMatch:           final >= threshold,
		Value:             final,
		Threshold:         threshold,
		EnsembleSim:       ensembleSim,
		BestIndividualSim: best,
		AvgIndividualSim:  avg,
	}
}

// ScoreSimple is plain cosine similarity against one stored embedding.
// A nil embedding on either side is a non-match with score 0.
func (s *Scorer) ScoreSimple(stored, unknown Embedding, threshold float64) Score {
	if len(stored) == 0 || len(unknown) == 0 {
		return Score{}
	}

	sim := CosineSimilarity(stored, unknown)
	return Score{
		IsMatch:   sim >= threshold,
		Value:     sim,
		Threshold: threshold,
	}
}
