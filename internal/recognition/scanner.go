package recognition

import (
	"context"
	"fmt"
	"log/slog"
)

// Outcome is the decision of a recognition attempt.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeNoFace  Outcome = "no_face"
)

// MatchResult is returned by Identify and Recognize.
type MatchResult struct {
	Outcome     Outcome
	IdentityKey string
	// Score is the winning score for a match, or the best score seen otherwise.
	Score float64
	// Scanned counts profiles that were scored; Skipped counts corrupt entries.
	Scanned int
	Skipped int
}

// Matched reports whether an identity was found.
func (r MatchResult) Matched() bool {
	return r.Outcome == OutcomeMatched
}

// Scanner performs the linear gallery scan.
type Scanner struct {
	scorer *Scorer
	logger *slog.Logger
}

// NewScanner creates a gallery scanner
func NewScanner(scorer *Scorer, logger *slog.Logger) *Scanner {
	return &Scanner{scorer: scorer, logger: logger}
}

// Identify loads every profile from the gallery and returns the best match.
// It takes no locks; callers own the gallery access discipline.
func (s *Scanner) Identify(ctx context.Context, gallery Gallery, unknown Embedding) (MatchResult, error) {
	records, err := gallery.Scan(ctx)
	if err != nil {
		return MatchResult{}, fmt.Errorf("scan gallery: %w", err)
	}
	return s.identifyRecords(records, unknown), nil
}

// identifyRecords scores unknown against every record. Records that failed to
// load or violate the data-model invariants are skipped, not fatal.
// On equal scores the first record visited wins.
func (s *Scanner) identifyRecords(records []ProfileRecord, unknown Embedding) MatchResult {
	result := MatchResult{Outcome: OutcomeNoMatch}
	if len(unknown) == 0 {
		return result
	}

	var (
		found     bool
		bestKey   string
		bestScore float64
		bestSeen  float64
	)

	for _, rec := range records {
		if err := s.usable(rec); err != nil {
			result.Skipped++
			s.logger.Warn("skipping unreadable profile",
				slog.String("identity_key", rec.Key),
				slog.String("error", err.Error()),
			)
			continue
		}

		score := s.scorer.Score(rec.Profile, unknown)
		result.Scanned++

		s.logger.Debug("profile scored",
			slog.String("identity_key", rec.Key),
			slog.String("kind", string(rec.Profile.Kind)),
			slog.Float64("ensemble", score.EnsembleSim),
			slog.Float64("best_individual", score.BestIndividualSim),
			slog.Float64("avg_individual", score.AvgIndividualSim),
			slog.Float64("final", score.Value),
			slog.Float64("threshold", score.Threshold),
		)

		if score.Value > bestSeen {
			bestSeen = score.Value
		}

		if score.IsMatch && (!found || score.Value > bestScore) {
			found = true
			bestKey = rec.Key
			bestScore = score.Value
		}
	}

	if found {
		result.Outcome = OutcomeMatched
		result.IdentityKey = bestKey
		result.Score = bestScore
	} else {
		result.Score = bestSeen
	}

	return result
}

func (s *Scanner) usable(rec ProfileRecord) error {
	if rec.Err != nil {
		return rec.Err
	}
	return rec.Profile.Validate()
}
