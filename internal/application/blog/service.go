package blog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/legisequity/bloggen/internal/application"
	domain "github.com/legisequity/bloggen/internal/domain/blog"
	"github.com/legisequity/bloggen/internal/infra/cache"
)

// Service implements the CMS use-cases plus the public read surface.
type Service struct {
	Repo  domain.Repository
	Cache *cache.Cache // optional; nil disables feed caching
	Clock application.Clock
	Log   zerolog.Logger
}

func (s *Service) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	if p.ID == "" {
		p.ID = domain.PostID(uuid.New().String())
	}
	now := s.Clock.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	p.UpdatedAt = s.Clock.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) BatchUpdate(ctx context.Context, ids []domain.PostID, u domain.BatchUpdate) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: at least one post id is required", domain.ErrInvalid)
	}
	if u.Status == nil && u.IsCurated == nil {
		return 0, fmt.Errorf("%w: update data is required", domain.ErrInvalid)
	}
	if u.Status != nil && !u.Status.Valid() {
		return 0, fmt.Errorf("%w: invalid status", domain.ErrInvalid)
	}
	return s.Repo.BatchUpdate(ctx, ids, u)
}

func (s *Service) Delete(ctx context.Context, id domain.PostID) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, f)
}

// ListPublished serves the public feed, cached under a short TTL when Redis
// is wired. Admin edits become visible once the cached page expires.
func (s *Service) ListPublished(ctx context.Context, page, pageSize int) (domain.PaginatedResult, error) {
	now := s.Clock.Now()
	if s.Cache == nil {
		return s.Repo.ListPublished(ctx, page, pageSize, now)
	}

	key := fmt.Sprintf("blog:feed:p%d:s%d", page, pageSize)
	var cached domain.PaginatedResult
	if ok, err := s.Cache.GetJSON(ctx, key, &cached); err != nil {
		s.Log.Warn().Err(err).Msg("feed cache read failed")
	} else if ok {
		return cached, nil
	}

	res, err := s.Repo.ListPublished(ctx, page, pageSize, now)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	if err := s.Cache.SetJSON(ctx, key, res); err != nil {
		s.Log.Warn().Err(err).Msg("feed cache write failed")
	}
	return res, nil
}

func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return s.Repo.GetPublishedBySlug(ctx, slug, s.Clock.Now())
}
