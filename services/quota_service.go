package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/repositories"
)

type QuotaService struct {
	repo         repositories.QuotaRepository
	defaultCalls int
	enforce      bool
}

func NewQuotaService(repo repositories.QuotaRepository, defaultCalls int, enforce bool) *QuotaService {
	return &QuotaService{repo: repo, defaultCalls: defaultCalls, enforce: enforce}
}

func (s *QuotaService) DefaultCalls() int {
	return s.defaultCalls
}

// Enforced reports whether callers at zero are refused instead of served.
func (s *QuotaService) Enforced() bool {
	return s.enforce
}

// Decrement charges one call. A missing record starts from the default
// allotment with the current call already charged.
func (s *QuotaService) Decrement(ctx context.Context, userID uuid.UUID) (models.QuotaResult, error) {
	res, err := s.repo.Decrement(ctx, userID, s.defaultCalls-1)
	if err != nil {
		return models.QuotaResult{}, storeError(err)
	}
	if res.Defaulted {
		slog.InfoContext(ctx, "quota record created on decrement", "user_id", userID, "remaining", res.Remaining)
	}
	if !res.Charged {
		slog.InfoContext(ctx, "quota exhausted, call not charged", "user_id", userID)
	}
	return res, nil
}

func (s *QuotaService) Read(ctx context.Context, userID uuid.UUID) (int, error) {
	remaining, err := s.repo.GetOrCreate(ctx, userID, s.defaultCalls)
	if err != nil {
		return 0, storeError(err)
	}
	return remaining, nil
}

func (s *QuotaService) Credit(ctx context.Context, topUp models.TopUp) (int, bool, error) {
	remaining, applied, err := s.repo.Credit(ctx, topUp, s.defaultCalls)
	if err != nil {
		return 0, false, storeError(err)
	}
	return remaining, applied, nil
}
