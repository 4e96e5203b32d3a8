package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/facegate/internal/audit"
	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
	"github.com/saturnino-fabrica-de-software/facegate/internal/imaging"
	"github.com/saturnino-fabrica-de-software/facegate/internal/provider"
	"github.com/saturnino-fabrica-de-software/facegate/internal/recognition"
	"github.com/saturnino-fabrica-de-software/facegate/internal/repository"
)

// RecentLogLimit is how many access events the admin overview returns.
const RecentLogLimit = 50

// Recognizer is the part of *recognition.Engine the service depends on.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (recognition.MatchResult, error)
	Enroll(ctx context.Context, key string, images []image.Image) (*recognition.Enrollment, error)
	Remove(ctx context.Context, key string) error
	Profiles(ctx context.Context) ([]recognition.ProfileRecord, error)
}

// AccessLogReader lists recent access events.
type AccessLogReader interface {
	Recent(ctx context.Context, limit int) ([]domain.AccessEvent, error)
}

// RegisterRequest carries the user metadata and the base64 training photos.
type RegisterRequest struct {
	User   domain.User
	Images []string
}

// RegisterResult describes a completed registration.
type RegisterResult struct {
	User            *domain.User
	TrainingPhotos  int
	ValidPhotos     int
	TrainingQuality float64
}

// LoginResult is a recognized user with the winning score.
type LoginResult struct {
	User  *domain.User
	Score float64
}

type AccountService struct {
	engine    Recognizer
	users     repository.UserStore
	accessLog AccessLogReader
	audit     audit.Logger
	minPhotos int
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewAccountService(
	engine Recognizer,
	users repository.UserStore,
	accessLog AccessLogReader,
	auditLogger audit.Logger,
	minPhotos int,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		engine:    engine,
		users:     users,
		accessLog: accessLog,
		audit:     auditLogger,
		minPhotos: max(minPhotos, recognition.DefaultMinEnrollmentPhotos),
		logger:    logger.With("component", "account"),
		now:       time.Now,
		newID:     newUserID,
	}
}

// newUserID returns the first 8 hex characters of a random UUID.
func newUserID() string {
	return uuid.NewString()[:8]
}

// Register validates the request, enrolls the face and stores the user.
// The stored profile is removed again when the user cannot be saved.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	submitted := len(req.Images)
	if submitted == 0 {
		return nil, domain.ErrNoImages
	}
	if submitted < s.minPhotos {
		return nil, domain.ErrTooFewImages.WithMessage(
			"At least %d images are required for registration (received %d)", s.minPhotos, submitted)
	}

	user := req.User
	user.Normalize()

	if user.Email != "" {
		exists, err := s.users.EmailExists(ctx, user.Email)
		if err != nil {
			return nil, domain.ErrInternal.WithError(err)
		}
		if exists {
			return nil, domain.ErrEmailExists
		}
	}

	images := make([]image.Image, submitted)
	for i, payload := range req.Images {
		img, err := imaging.DecodeBase64(payload)
		if err != nil {
			return nil, domain.ErrInvalidImage.WithMessage("Image %d could not be decoded", i+1).WithError(err)
		}
		images[i] = img
	}

	key, err := s.allocateID(ctx)
	if err != nil {
		return nil, err
	}

	enrollment, err := s.engine.Enroll(ctx, key, images)
	if err != nil {
		return nil, s.enrollError(ctx, err)
	}

	user.ID = key
	if err := s.users.Create(ctx, &user); err != nil {
		if rmErr := s.engine.Remove(ctx, key); rmErr != nil {
			s.logger.ErrorContext(ctx, "rollback of enrolled profile failed",
				slog.String("user_id", key),
				slog.String("error", rmErr.Error()),
			)
		}
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, domain.ErrInternal.WithError(fmt.Errorf("save user: %w", err))
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", key),
		slog.Int("training_photos", submitted),
		slog.Int("valid_photos", enrollment.Valid),
	)

	return &RegisterResult{
		User:            &user,
		TrainingPhotos:  submitted,
		ValidPhotos:     enrollment.Valid,
		TrainingQuality: enrollment.Profile.TrainingQuality,
	}, nil
}

// allocateID draws ids until one is free.
func (s *AccountService) allocateID(ctx context.Context) (string, error) {
	const attempts = 5
	for range attempts {
		id := s.newID()
		_, err := s.users.GetByID(ctx, id)
		if errors.Is(err, domain.ErrUserNotFound) {
			return id, nil
		}
		if err != nil {
			return "", domain.ErrInternal.WithError(err)
		}
	}
	return "", domain.ErrInternal.WithError(fmt.Errorf("no free user id after %d attempts", attempts))
}

func (s *AccountService) enrollError(ctx context.Context, err error) error {
	var dup *recognition.DuplicateIdentityError
	if errors.As(err, &dup) {
		name := dup.IdentityKey
		if existing, getErr := s.users.GetByID(ctx, dup.IdentityKey); getErr == nil {
			name = existing.DisplayName()
		}
		return domain.ErrFaceBiometricExists.
			WithMessage("This face is already registered as %s", name).
			WithError(err)
	}

	var insufficient *recognition.InsufficientSamplesError
	if errors.As(err, &insufficient) {
		return domain.ErrInsufficientSamples.WithMessage(
			"Only %d out of %d images had detectable faces.", insufficient.Usable, insufficient.Submitted)
	}

	return providerError(err)
}

// Login recognizes the face in a base64 photo and records a check-in.
func (s *AccountService) Login(ctx context.Context, payload string) (*LoginResult, error) {
	img, err := imaging.DecodeBase64(payload)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	result, err := s.engine.Recognize(ctx, img)
	if err != nil {
		return nil, providerError(err)
	}
	if !result.Matched() {
		return nil, domain.ErrFaceNotRecognized
	}

	user, err := s.users.RecordLogin(ctx, result.IdentityKey, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, domain.ErrInternal.WithError(err)
	}

	s.recordAccess(ctx, user.ID, user.Name, domain.ActionIn)

	return &LoginResult{User: user, Score: result.Score}, nil
}

// Logout records a check-out. A name alone doubles as the user id.
func (s *AccountService) Logout(ctx context.Context, userID, name string) error {
	userID, name = strings.TrimSpace(userID), strings.TrimSpace(name)
	if userID == "" && name == "" {
		return domain.ErrBadRequest.WithMessage("user_id or name is required")
	}
	if userID == "" {
		userID = name
	}

	s.recordAccess(ctx, userID, name, domain.ActionOut)
	return nil
}

// recordAccess never fails the request.
func (s *AccountService) recordAccess(ctx context.Context, userID, name string, action domain.AccessAction) {
	err := s.audit.Log(ctx, audit.Event{
		Timestamp: s.now().UTC(),
		UserID:    userID,
		Name:      name,
		Action:    action,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to record access event",
			slog.String("user_id", userID),
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
	}
}

// AdminOverview builds the dashboard: users with training stats, the recent
// access log and aggregate statistics.
func (s *AccountService) AdminOverview(ctx context.Context) (*domain.AdminOverview, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}

	records, err := s.engine.Profiles(ctx)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	byKey := make(map[string]recognition.ProfileRecord, len(records))
	for _, rec := range records {
		byKey[rec.Key] = rec
	}

	logs, err := s.accessLog.Recent(ctx, RecentLogLimit)
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	if logs == nil {
		logs = []domain.AccessEvent{}
	}

	overview := &domain.AdminOverview{
		Users: make([]domain.UserOverview, 0, len(users)),
		Logs:  logs,
	}

	totalPhotos := 0
	for _, u := range users {
		stats := trainingStats(byKey, u.ID)
		overview.Users = append(overview.Users, domain.UserOverview{User: u, TrainingStats: stats})

		totalPhotos += stats.Photos
		if stats.Type == domain.TrainingMultiPhoto {
			overview.Statistics.MultiPhotoUsers++
		}
	}

	// users without usable training data count as single-photo
	overview.Statistics.TotalUsers = len(users)
	overview.Statistics.SinglePhotoUsers = len(users) - overview.Statistics.MultiPhotoUsers
	if len(users) > 0 {
		avg := float64(totalPhotos) / float64(len(users))
		overview.Statistics.AvgPhotosPerUser = math.Round(avg*100) / 100
	}
	for _, e := range logs {
		if e.Action == domain.ActionIn {
			overview.Statistics.TotalLogins++
		}
	}

	return overview, nil
}

func trainingStats(records map[string]recognition.ProfileRecord, key string) domain.TrainingStats {
	rec, ok := records[key]
	if !ok {
		return domain.TrainingStats{Type: domain.TrainingNoData}
	}
	if rec.Err != nil || rec.Profile.Validate() != nil {
		return domain.TrainingStats{Type: domain.TrainingError}
	}

	photos := rec.Profile.PhotoCount()
	stats := domain.TrainingStats{
		Photos:  photos,
		Quality: rec.Profile.TrainingQuality(),
		Type:    domain.TrainingSinglePhoto,
	}
	if photos > 1 {
		stats.Type = domain.TrainingMultiPhoto
	}
	return stats
}

// providerError maps engine failures: unreachable providers become 503,
// everything else 500.
func providerError(err error) error {
	if errors.Is(err, provider.ErrUnavailable) {
		return domain.ErrServiceUnavailable.WithError(err)
	}
	return domain.ErrInternal.WithError(err)
}
