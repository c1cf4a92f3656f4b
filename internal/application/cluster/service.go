package cluster

import (
	"context"

	domain "github.com/legisequity/bloggen/internal/domain/cluster"
	gen "github.com/legisequity/bloggen/internal/domain/generation"
)

// Service exposes the read-only cluster surface consumed by the admin UI
// and the generation pipeline collaborators.
type Service struct {
	Repo        domain.Repository
	Generations gen.Repository
	Failures    gen.FailureRepository
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.Cluster, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) LatestAnalysis(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	return s.Repo.LatestAnalysis(ctx, id)
}

func (s *Service) Bills(ctx context.Context, id domain.ID) ([]domain.Bill, error) {
	return s.Repo.Bills(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, f)
}

// Generations lists past generation response versions for a cluster.
func (s *Service) ListGenerations(ctx context.Context, id domain.ID) ([]*gen.Response, error) {
	return s.Generations.Versions(ctx, string(id))
}

// ListFailures returns the most recent failed generation attempts for a
// cluster, for admin troubleshooting.
func (s *Service) ListFailures(ctx context.Context, id domain.ID, limit int) ([]*gen.Failure, error) {
	return s.Failures.ListByCluster(ctx, string(id), limit)
}
