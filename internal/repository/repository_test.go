package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
)

var profileColumns = []string{"identity_key", "ensemble", "individual", "photo_count", "training_quality"}

// ProfileRepository Tests

func TestProfileRepository_Scan(t *testing.T) {
	half := 1 / math.Sqrt2
	ensemble := pgvector.NewVector([]float32{float32(half), float32(half)})
	legacy := pgvector.NewVector([]float32{0, 1})
	notUnit := pgvector.NewVector([]float32{3, 4})

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(profileColumns).
		AddRow("alice", &ensemble, []byte(`[[1,0],[0,1]]`), 2, 1.0).
		AddRow("bob", &legacy, nil, 1, 1.0).
		AddRow("carol", &ensemble, []byte(`not json`), 2, 1.0).
		AddRow("dave", &notUnit, nil, 1, 1.0).
		AddRow("erin", &legacy, []byte(`null`), 1, 1.0)

	mock.ExpectQuery(`SELECT identity_key, ensemble, individual, photo_count, training_quality FROM profiles ORDER BY identity_key`).
		WillReturnRows(rows)

	repo := NewProfileRepository(mock)
	records, err := repo.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)

	alice := records[0]
	require.NoError(t, alice.Err)
	assert.Equal(t, recognition.KindMultiPhoto, alice.Profile.Kind)
	assert.Equal(t, 2, alice.Profile.PhotoCount())
	assert.NoError(t, alice.Profile.Validate(), "float32 rounding must not corrupt the ensemble")
	assert.Equal(t, recognition.Embedding{1, 0}, alice.Profile.Multi.Individual[0])

	// rows without an individual set (NULL or JSON null) read as legacy
	for _, rec := range []recognition.ProfileRecord{records[1], records[4]} {
		require.NoError(t, rec.Err, rec.Key)
		assert.Equal(t, recognition.KindLegacy, rec.Profile.Kind, rec.Key)
		assert.NoError(t, rec.Profile.Validate(), rec.Key)
	}

	for _, rec := range records[2:4] {
		assert.ErrorIs(t, rec.Err, recognition.ErrCorruptProfile, rec.Key)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Scan_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT identity_key`).WillReturnError(errors.New("connection refused"))

	repo := NewProfileRepository(mock)
	_, err = repo.Scan(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan profiles")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Put(t *testing.T) {
	half := 1 / math.Sqrt2
	multi := recognition.MultiPhotoProfile(&recognition.EnrollmentProfile{
		Ensemble:        recognition.Embedding{half, half},
		Individual:      []recognition.Embedding{{1, 0}, {0, 1}, {0, 1}},
		PhotoCount:      3,
		TrainingQuality: 0.75,
	})

	tests := []struct {
		name      string
		key       string
		profile   recognition.Profile
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   string
	}{
		{
			name:    "multi photo profile",
			key:     "ab12cd34",
			profile: multi,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO profiles .* ON CONFLICT \(identity_key\) DO UPDATE`).
					WithArgs(
						"ab12cd34",
						"multi_photo",
						pgxmock.AnyArg(),
						[]byte(`[[1,0],[0,1],[0,1]]`),
						3,
						0.75,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:    "legacy profile",
			key:     "legacy01",
			profile: recognition.LegacyProfile(recognition.Embedding{0, 1}),
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO profiles`).
					WithArgs("legacy01", "legacy", pgxmock.AnyArg(), pgxmock.AnyArg(), 1, 1.0).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:      "unknown kind",
			key:       "x",
			profile:   recognition.Profile{Kind: "hologram"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {},
			wantErr:   "unknown kind",
		},
		{
			name:    "database error",
			key:     "ab12cd34",
			profile: multi,
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO profiles`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("disk full"))
			},
			wantErr: "put profile ab12cd34: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewProfileRepository(mock)
			err = repo.Put(context.Background(), tt.key, tt.profile)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM profiles WHERE identity_key = \$1`).
		WithArgs("ab12cd34").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewProfileRepository(mock)
	assert.NoError(t, repo.Delete(context.Background(), "ab12cd34"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// UserRepository Tests

var userColumnNames = []string{
	"id", "name", "email", "phone", "date_of_birth", "gender", "address", "department", "position",
	"emergency_contact", "emergency_phone", "registered_at", "last_login_at", "login_count",
}

func userRow(id, name, email string, registered time.Time, lastLogin *time.Time, count int) *pgxmock.Rows {
	return pgxmock.NewRows(userColumnNames).AddRow(
		id, name, email, "", "", "", "", "Ops", "", "", "", registered, lastLogin, count,
	)
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		user      *domain.User
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful creation normalizes email",
			user: &domain.User{ID: "ab12cd34", Name: " Ana ", Email: " ANA@Example.com"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("ab12cd34", "Ana", "ana@example.com", "", "", "", "", "", "", "", "").
					WillReturnRows(pgxmock.NewRows([]string{"registered_at"}).AddRow(now))
			},
		},
		{
			name: "email already registered",
			user: &domain.User{ID: "ab12cd34", Email: "ana@example.com"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})
			},
			wantErr: domain.ErrEmailExists,
		},
		{
			name: "database error",
			user: &domain.User{ID: "ab12cd34"},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("create user: connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewUserRepository(mock)
			err = repo.Create(context.Background(), tt.user)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrEmailExists) {
					assert.ErrorIs(t, err, domain.ErrEmailExists)
				} else {
					assert.Equal(t, tt.wantErr.Error(), err.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, now, tt.user.RegisteredAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "successful retrieval",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, name, email, .* FROM users WHERE id = \$1`).
					WithArgs("ab12cd34").
					WillReturnRows(userRow("ab12cd34", "Ana", "ana@example.com", now, &now, 3))
			},
		},
		{
			name: "user not found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("ab12cd34").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrUserNotFound,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("ab12cd34").
					WillReturnError(errors.New("timeout"))
			},
			wantErr: errors.New("get user by id: timeout"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewUserRepository(mock)
			got, err := repo.GetByID(context.Background(), "ab12cd34")

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrUserNotFound) {
					assert.ErrorIs(t, err, domain.ErrUserNotFound)
				} else {
					assert.Equal(t, tt.wantErr.Error(), err.Error())
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Ana", got.Name)
				assert.Equal(t, "Ops", got.Department)
				assert.Equal(t, 3, got.LoginCount)
				require.NotNil(t, got.LastLoginAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_EmailExists(t *testing.T) {
	t.Run("empty email skips the query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		exists, err := NewUserRepository(mock).EmailExists(context.Background(), "  ")
		require.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("compares lower-cased", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM users WHERE lower\(email\) = \$1\)`).
			WithArgs("ana@example.com").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := NewUserRepository(mock).EmailExists(context.Background(), "ANA@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_RecordLogin(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`UPDATE users SET last_login_at = \$2, login_count = login_count \+ 1`).
		WithArgs("ab12cd34", now).
		WillReturnRows(userRow("ab12cd34", "Ana", "", now, &now, 4))
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("missing", now).
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)

	user, err := repo.RecordLogin(context.Background(), "ab12cd34", now)
	require.NoError(t, err)
	assert.Equal(t, 4, user.LoginCount)

	_, err = repo.RecordLogin(context.Background(), "missing", now)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(userColumnNames).
		AddRow("a1", "Ana", "", "", "", "", "", "", "", "", "", now, nil, 0).
		AddRow("b2", "Bia", "", "", "", "", "", "", "", "", "", now, &now, 2)
	mock.ExpectQuery(`FROM users ORDER BY registered_at, id`).WillReturnRows(rows)

	users, err := NewUserRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Nil(t, users[0].LastLoginAt)
	assert.Equal(t, 2, users[1].LoginCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Delete(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		wantErr      error
	}{
		{"deleted", 1, nil},
		{"not found", 0, domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
				WithArgs("ab12cd34").
				WillReturnResult(pgxmock.NewResult("DELETE", tt.rowsAffected))

			err = NewUserRepository(mock).Delete(context.Background(), "ab12cd34")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// AccessEventRepository Tests

func TestAccessEventRepository_Append(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO access_events`).
		WithArgs(pgxmock.AnyArg(), "ab12cd34", "Ana", "in", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewAccessEventRepository(mock)
	err = repo.Append(context.Background(), domain.AccessEvent{
		Timestamp: now,
		UserID:    "ab12cd34",
		Name:      "Ana",
		Action:    domain.ActionIn,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccessEventRepository_Recent(t *testing.T) {
	now := time.Now()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"id", "user_id", "name", "action", "created_at"}).
		AddRow("e2", "ab12cd34", "Ana", "out", now).
		AddRow("e1", "ab12cd34", "Ana", "in", now.Add(-time.Minute))
	mock.ExpectQuery(`FROM access_events ORDER BY created_at DESC, id LIMIT \$1`).
		WithArgs(50).
		WillReturnRows(rows)

	events, err := NewAccessEventRepository(mock).Recent(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.ActionOut, events[0].Action)
	assert.Equal(t, domain.ActionIn, events[1].Action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "postgres error code 23505",
			err:  fmt.Errorf("pq: duplicate key value violates unique constraint (23505)"),
			want: true,
		},
		{
			name: "typed pg error",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
			want: true,
		},
		{
			name: "typed pg error with another code",
			err:  &pgconn.PgError{Code: "23503", Message: "foreign key violation"},
			want: false,
		},
		{
			name: "error contains unique",
			err:  fmt.Errorf("ERROR: unique constraint violated"),
			want: true,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "different error",
			err:  fmt.Errorf("connection timeout"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isUniqueViolation(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}
