package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrProtected = errors.New("record is protected")
)

type UserRepository interface {
	// Create inserts the user together with its quota record. On success
	// user.ID and the timestamps are filled in.
	Create(ctx context.Context, user *models.User, apiCalls int) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListUsers reports users with their live quota; users without a quota
	// record show defaultCalls.
	ListUsers(ctx context.Context, defaultCalls int) ([]models.SafeUser, error)
	UpdateUsername(ctx context.Context, id uuid.UUID, username string) (*models.User, error)
	// DeleteNonAdmin removes a regular user. Admin rows yield ErrProtected.
	DeleteNonAdmin(ctx context.Context, id uuid.UUID) error
}

type QuotaRepository interface {
	// Decrement charges one call without going below zero. A missing record
	// is created holding fallback calls and reported as Defaulted.
	Decrement(ctx context.Context, userID uuid.UUID, fallback int) (models.QuotaResult, error)
	// GetOrCreate returns the remaining calls, creating a record holding
	// initial calls when none exists.
	GetOrCreate(ctx context.Context, userID uuid.UUID, initial int) (int, error)
	// Credit adds topUp.Calls once per topUp.EventID. applied is false when
	// the event was already credited.
	Credit(ctx context.Context, topUp models.TopUp, initial int) (remaining int, applied bool, err error)
}

type UsageRepository interface {
	Increment(ctx context.Context, method, endpoint string) error
	ListResources(ctx context.Context) ([]models.Resource, error)
}
