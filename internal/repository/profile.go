package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/pgvector/pgvector-go"
	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
)

// storedUnitTolerance absorbs the float32 rounding of the vector column.
const storedUnitTolerance = 1e-4

// ProfileRepository is the Postgres recognition.Gallery.
//
// The ensemble (or the single legacy embedding) lives in a pgvector column;
// the individual embeddings are kept as a JSONB array of float64 so they
// round-trip exactly. Rows are read back by shape: a row with an individual
// set is multi-photo, a row without one is legacy. kind is informational.
type ProfileRepository struct {
	pool PgxPool
}

func NewProfileRepository(pool PgxPool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Scan loads every profile ordered by identity key. A row that cannot be
// decoded is returned with Err set instead of failing the whole scan.
func (r *ProfileRepository) Scan(ctx context.Context) ([]recognition.ProfileRecord, error) {
	query := `
		SELECT identity_key, ensemble, individual, photo_count, training_quality
		FROM profiles
		ORDER BY identity_key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	defer rows.Close()

	var records []recognition.ProfileRecord
	for rows.Next() {
		var (
			key        string
			ensemble   *pgvector.Vector
			individual []byte
			photoCount int
			quality    float64
		)
		if err := rows.Scan(&key, &ensemble, &individual, &photoCount, &quality); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}

		profile, err := decodeProfile(ensemble, individual, photoCount, quality)
		records = append(records, recognition.ProfileRecord{Key: key, Profile: profile, Err: err})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return records, nil
}

// Put upserts the profile in a single statement.
func (r *ProfileRepository) Put(ctx context.Context, key string, profile recognition.Profile) error {
	query := `
		INSERT INTO profiles (identity_key, kind, ensemble, individual, photo_count, training_quality, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (identity_key) DO UPDATE SET
			kind = EXCLUDED.kind,
			ensemble = EXCLUDED.ensemble,
			individual = EXCLUDED.individual,
			photo_count = EXCLUDED.photo_count,
			training_quality = EXCLUDED.training_quality,
			updated_at = NOW()
	`

	var (
		vector     pgvector.Vector
		individual []byte
	)

	switch profile.Kind {
	case recognition.KindLegacy:
		vector = toVector(profile.Legacy)

	case recognition.KindMultiPhoto:
		if profile.Multi == nil {
			return fmt.Errorf("put profile %s: missing enrollment data", key)
		}
		vector = toVector(profile.Multi.Ensemble)

		encoded, err := json.Marshal(profile.Multi.Individual)
		if err != nil {
			return fmt.Errorf("put profile %s: encode embeddings: %w", key, err)
		}
		individual = encoded

	default:
		return fmt.Errorf("put profile %s: unknown kind %q", key, profile.Kind)
	}

	_, err := r.pool.Exec(ctx, query,
		key,
		string(profile.Kind),
		vector,
		individual,
		profile.PhotoCount(),
		profile.TrainingQuality(),
	)
	if err != nil {
		return fmt.Errorf("put profile %s: %w", key, err)
	}

	return nil
}

// Delete removes a profile. Deleting a missing key is not an error.
func (r *ProfileRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE identity_key = $1`, key); err != nil {
		return fmt.Errorf("delete profile %s: %w", key, err)
	}
	return nil
}

// decodeProfile picks the variant from the row's shape: no individual set
// (NULL or JSON null) means a legacy single embedding.
func decodeProfile(ensemble *pgvector.Vector, individual []byte, photoCount int, quality float64) (recognition.Profile, error) {
	stored, err := decodeStoredVector(ensemble)
	if err != nil {
		return recognition.Profile{}, err
	}

	var raw [][]float64
	if len(individual) > 0 {
		if err := json.Unmarshal(individual, &raw); err != nil {
			return recognition.Profile{}, fmt.Errorf("%w: decode individual embeddings: %v", recognition.ErrCorruptProfile, err)
		}
	}
	if raw == nil {
		return recognition.LegacyProfile(stored), nil
	}

	embeddings := make([]recognition.Embedding, len(raw))
	for i, e := range raw {
		embeddings[i] = recognition.Embedding(e)
	}

	return recognition.MultiPhotoProfile(&recognition.EnrollmentProfile{
		Ensemble:        stored,
		Individual:      embeddings,
		PhotoCount:      photoCount,
		TrainingQuality: quality,
	}), nil
}

// decodeStoredVector widens the column back to float64 and re-normalizes it.
// Vectors that were not unit length when written are rejected.
func decodeStoredVector(v *pgvector.Vector) (recognition.Embedding, error) {
	values := fromVector(v)
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: missing stored embedding", recognition.ErrCorruptProfile)
	}
	if math.Abs(floats.Norm(values, 2)-1) > storedUnitTolerance {
		return nil, fmt.Errorf("%w: stored embedding is not unit length", recognition.ErrCorruptProfile)
	}
	return recognition.Normalize(values), nil
}
