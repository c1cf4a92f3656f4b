package blog

import (
	"context"
	"time"
)

// ListFilter narrows the admin post index.
type ListFilter struct {
	Status   Status
	Search   string
	Page     int
	PageSize int
}

// BatchUpdate carries the fields an admin may flip over a set of posts.
// Nil fields are left untouched.
type BatchUpdate struct {
	Status    *Status
	IsCurated *bool
}

// Repository port (interface untuk persistence)
type Repository interface {
	Create(ctx context.Context, p *Post) error
	Get(ctx context.Context, id PostID) (*Post, error)
	Update(ctx context.Context, p *Post) error
	BatchUpdate(ctx context.Context, ids []PostID, u BatchUpdate) (int64, error)
	Delete(ctx context.Context, id PostID) error
	Paginate(ctx context.Context, f ListFilter) (PaginatedResult, error)

	// Public surface: only posts visible at the given instant
	// (status published, published_at <= now).
	ListPublished(ctx context.Context, page, pageSize int, now time.Time) (PaginatedResult, error)
	GetPublishedBySlug(ctx context.Context, slug string, now time.Time) (*Post, error)
}
