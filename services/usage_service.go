package services

import (
	"context"

	"github.com/ravigill3969/textgen-quota/models"
	"github.com/ravigill3969/textgen-quota/repositories"
)

type UsageService struct {
	repo repositories.UsageRepository
}

func NewUsageService(repo repositories.UsageRepository) *UsageService {
	return &UsageService{repo: repo}
}

// Record bumps the request count for one (method, path) pair.
func (s *UsageService) Record(ctx context.Context, method, path string) error {
	return s.repo.Increment(ctx, method, path)
}

func (s *UsageService) List(ctx context.Context) ([]models.Resource, error) {
	return s.repo.ListResources(ctx)
}
