package mysql

import (
	"context"
	"database/sql"

	domain "github.com/legisequity/bloggen/internal/domain/generation"
)

type FailureRepository struct{ db *sql.DB }

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.Failure) error {
	const q = `
INSERT INTO blog_generation_failures (cluster_id, stage, message, created_at)
VALUES (?, ?, ?, ?);`
	res, err := r.db.ExecContext(ctx, q, f.ClusterID, f.Stage, f.Message, f.CreatedAt)
	if err != nil {
		return err
	}
	f.ID, err = res.LastInsertId()
	return err
}

func (r *FailureRepository) ListByCluster(ctx context.Context, clusterID string, limit int) ([]*domain.Failure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, cluster_id, stage, message, created_at
FROM blog_generation_failures
WHERE cluster_id = ?
ORDER BY created_at DESC
LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, clusterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Failure
	for rows.Next() {
		var f domain.Failure
		if err := rows.Scan(&f.ID, &f.ClusterID, &f.Stage, &f.Message, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
