package blog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/legisequity/bloggen/internal/domain/blog"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type memRepo struct {
	posts map[domain.PostID]*domain.Post

	batchIDs    []domain.PostID
	batchUpdate domain.BatchUpdate
}

func newMemRepo() *memRepo {
	return &memRepo{posts: map[domain.PostID]*domain.Post{}}
}

func (r *memRepo) Create(ctx context.Context, p *domain.Post) error {
	for _, existing := range r.posts {
		if existing.Slug == p.Slug {
			return domain.ErrSlugTaken
		}
	}
	r.posts[p.ID] = p
	return nil
}

func (r *memRepo) Get(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) Update(ctx context.Context, p *domain.Post) error {
	if _, ok := r.posts[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.posts[p.ID] = p
	return nil
}

func (r *memRepo) BatchUpdate(ctx context.Context, ids []domain.PostID, u domain.BatchUpdate) (int64, error) {
	r.batchIDs = ids
	r.batchUpdate = u
	return int64(len(ids)), nil
}

func (r *memRepo) Delete(ctx context.Context, id domain.PostID) error {
	if _, ok := r.posts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *memRepo) Paginate(ctx context.Context, f domain.ListFilter) (domain.PaginatedResult, error) {
	return domain.PaginatedResult{}, nil
}

func (r *memRepo) ListPublished(ctx context.Context, page, pageSize int, now time.Time) (domain.PaginatedResult, error) {
	var out []*domain.Post
	for _, p := range r.posts {
		if p.Visible(now) {
			out = append(out, p)
		}
	}
	return domain.PaginatedResult{Data: out, Page: page, PageSize: pageSize, Total: int64(len(out))}, nil
}

func (r *memRepo) GetPublishedBySlug(ctx context.Context, slug string, now time.Time) (*domain.Post, error) {
	for _, p := range r.posts {
		if p.Slug == slug && p.Visible(now) {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func newService(repo *memRepo) *Service {
	return &Service{
		Repo:  repo,
		Clock: fixedClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		Log:   zerolog.Nop(),
	}
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)

	p, err := svc.Create(context.Background(), &domain.Post{
		Title:   "Housing Week",
		Slug:    "housing-week",
		Content: "<p>x</p>",
		Status:  domain.StatusDraft,
		Author:  "ops",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, svc.Clock.Now(), p.CreatedAt)
	assert.Equal(t, svc.Clock.Now(), p.UpdatedAt)
	assert.Contains(t, repo.posts, p.ID)
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := newService(newMemRepo())

	_, err := svc.Create(context.Background(), &domain.Post{
		Slug:    "no-title",
		Content: "x",
		Status:  domain.StatusDraft,
		Author:  "ops",
	})
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestBatchUpdateValidation(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()

	_, err := svc.BatchUpdate(ctx, nil, domain.BatchUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	ids := []domain.PostID{"11111111-2222-3333-4444-555555555555"}

	_, err = svc.BatchUpdate(ctx, ids, domain.BatchUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	bad := domain.Status("live")
	_, err = svc.BatchUpdate(ctx, ids, domain.BatchUpdate{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	archived := domain.StatusArchived
	n, err := svc.BatchUpdate(ctx, ids, domain.BatchUpdate{Status: &archived})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, ids, repo.batchIDs)
}

func TestListPublishedFiltersVisibility(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	now := svc.Clock.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	repo.posts["a"] = &domain.Post{ID: "a", Slug: "live-post", Status: domain.StatusPublished, PublishedAt: &past}
	repo.posts["b"] = &domain.Post{ID: "b", Slug: "scheduled", Status: domain.StatusPublished, PublishedAt: &future}
	repo.posts["c"] = &domain.Post{ID: "c", Slug: "draft", Status: domain.StatusDraft}

	res, err := svc.ListPublished(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "live-post", res.Data[0].Slug)
}

func TestGetPublishedBySlugHidesScheduled(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	future := svc.Clock.Now().Add(time.Hour)
	repo.posts["b"] = &domain.Post{ID: "b", Slug: "scheduled", Status: domain.StatusPublished, PublishedAt: &future}

	_, err := svc.GetPublishedBySlug(context.Background(), "scheduled")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
