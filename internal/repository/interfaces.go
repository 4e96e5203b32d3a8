package repository

import (
	"context"
	"time"

	"github.com/saturnino-fabrica-de-software/facegate/internal/domain"
)

// UserStore defines operations for user metadata access
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	RecordLogin(ctx context.Context, id string, at time.Time) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, id string) error
}

// AccessLog defines operations for the access event log
type AccessLog interface {
	Append(ctx context.Context, event domain.AccessEvent) error
	Recent(ctx context.Context, limit int) ([]domain.AccessEvent, error)
}
