package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/repositories"
)

type AdminService struct {
	users repositories.UserRepository
	quota *QuotaService
	usage *UsageService
}

func NewAdminService(users repositories.UserRepository, quota *QuotaService, usage *UsageService) *AdminService {
	return &AdminService{users: users, quota: quota, usage: usage}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.SafeUser, error) {
	return s.users.ListUsers(ctx, s.quota.DefaultCalls())
}

// DeleteUser removes a regular user and its quota record. Admin accounts,
// the caller's own included, are refused with ErrForbidden.
func (s *AdminService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.users.DeleteNonAdmin(ctx, id); err != nil {
		return storeError(err)
	}
	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *AdminService) ListResources(ctx context.Context) ([]models.Resource, error) {
	return s.usage.List(ctx)
}
