package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/legisequity/bloggen/internal/domain/blog"
)

type BlogRepository struct{ db *sql.DB }

func NewBlogRepository(db *sql.DB) *BlogRepository { return &BlogRepository{db: db} }

const postColumns = `
post_id, title, slug, content, status, published_at, author, is_curated,
COALESCE(hero_image, ''), COALESCE(main_image, ''), COALESCE(thumb, ''),
COALESCE(cluster_id, ''), COALESCE(analysis_id, ''), created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*domain.Post, error) {
	var p domain.Post
	var publishedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Status, &publishedAt, &p.Author, &p.IsCurated,
		&p.HeroImage, &p.MainImage, &p.Thumb,
		&p.ClusterID, &p.AnalysisID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		p.PublishedAt = &t
	}
	return &p, nil
}

func (r *BlogRepository) Create(ctx context.Context, p *domain.Post) error {
	const q = `
INSERT INTO blog_posts
 (post_id, title, slug, content, status, published_at, author, is_curated,
  hero_image, main_image, thumb, cluster_id, analysis_id, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?);`
	_, err := r.db.ExecContext(ctx, q,
		p.ID, p.Title, p.Slug, p.Content, p.Status, p.PublishedAt, p.Author, p.IsCurated,
		nullIfEmpty(p.HeroImage), nullIfEmpty(p.MainImage), nullIfEmpty(p.Thumb),
		nullIfEmpty(p.ClusterID), nullIfEmpty(p.AnalysisID), p.CreatedAt, p.UpdatedAt,
	)
	if isDuplicate(err) {
		return domain.ErrSlugTaken
	}
	return err
}

func (r *BlogRepository) Get(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	q := `SELECT ` + postColumns + ` FROM blog_posts WHERE post_id = ? LIMIT 1;`
	p, err := scanPost(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *BlogRepository) Update(ctx context.Context, p *domain.Post) error {
	const q = `
UPDATE blog_posts
SET title = ?, slug = ?, content = ?, status = ?, published_at = ?,
    author = ?, is_curated = ?, hero_image = ?, main_image = ?, thumb = ?,
    updated_at = ?
WHERE post_id = ?;`
	res, err := r.db.ExecContext(ctx, q,
		p.Title, p.Slug, p.Content, p.Status, p.PublishedAt,
		p.Author, p.IsCurated,
		nullIfEmpty(p.HeroImage), nullIfEmpty(p.MainImage), nullIfEmpty(p.Thumb),
		p.UpdatedAt, p.ID,
	)
	if isDuplicate(err) {
		return domain.ErrSlugTaken
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return err
}

func (r *BlogRepository) BatchUpdate(ctx context.Context, ids []domain.PostID, u domain.BatchUpdate) (int64, error) {
	set := "updated_at = NOW()"
	args := []interface{}{}
	if u.Status != nil {
		set += ", status = ?"
		args = append(args, *u.Status)
	}
	if u.IsCurated != nil {
		set += ", is_curated = ?"
		args = append(args, *u.IsCurated)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	q := fmt.Sprintf("UPDATE blog_posts SET %s WHERE post_id IN (%s);", set, placeholders)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *BlogRepository) Delete(ctx context.Context, id domain.PostID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE post_id = ?;`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return err
}

func (r *BlogRepository) Paginate(ctx context.Context, f domain.ListFilter) (domain.PaginatedResult, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	offset := (f.Page - 1) * f.PageSize

	where := ""
	args := []interface{}{}
	if f.Status != "" {
		where += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Search != "" {
		where += " AND (title LIKE ? OR content LIKE ?)"
		term := "%" + f.Search + "%"
		args = append(args, term, term)
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM blog_posts WHERE 1=1" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("counting posts: %w", err)
	}

	q := `SELECT ` + postColumns + ` FROM blog_posts WHERE 1=1` + where +
		" ORDER BY created_at DESC LIMIT ? OFFSET ?;"
	args = append(args, f.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}

	return domain.PaginatedResult{
		Data:       posts,
		Page:       f.Page,
		PageSize:   f.PageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(f.PageSize))),
	}, nil
}

func (r *BlogRepository) ListPublished(ctx context.Context, page, pageSize int, now time.Time) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	var total int64
	const countQuery = `
SELECT COUNT(*) FROM blog_posts
WHERE status = 'published' AND published_at <= ?;`
	if err := r.db.QueryRowContext(ctx, countQuery, now).Scan(&total); err != nil {
		return domain.PaginatedResult{}, err
	}

	const q = `
SELECT post_id, title, slug, SUBSTRING(content, 1, 300), status, published_at, author, is_curated,
       COALESCE(hero_image, ''), COALESCE(main_image, ''), COALESCE(thumb, ''),
       COALESCE(cluster_id, ''), COALESCE(analysis_id, ''), created_at, updated_at
FROM blog_posts
WHERE status = 'published' AND published_at <= ?
ORDER BY published_at DESC
LIMIT ? OFFSET ?;`
	rows, err := r.db.QueryContext(ctx, q, now, pageSize, offset)
	if err != nil {
		return domain.PaginatedResult{}, err
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return domain.PaginatedResult{}, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}

	return domain.PaginatedResult{
		Data:       posts,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

func (r *BlogRepository) GetPublishedBySlug(ctx context.Context, slug string, now time.Time) (*domain.Post, error) {
	q := `SELECT ` + postColumns + `
FROM blog_posts
WHERE slug = ? AND status = 'published' AND published_at <= ?
LIMIT 1;`
	p, err := scanPost(r.db.QueryRowContext(ctx, q, slug, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}
