package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	domain "github.com/legisequity/bloggen/internal/domain/generation"
)

const maxVersionRetries = 3

type GenerationRepository struct{ db *sql.DB }

func NewGenerationRepository(db *sql.DB) *GenerationRepository { return &GenerationRepository{db: db} }

// Save inserts the response with the next version for its cluster in a
// single INSERT ... SELECT, so version assignment and insert are atomic.
// The unique (cluster_id, version) index turns a concurrent race into a
// conflict that is retried with a freshly computed version.
func (r *GenerationRepository) Save(ctx context.Context, resp *domain.Response) error {
	const q = `
INSERT INTO blog_generation_responses
 (response_id, cluster_id, version, model_name, prompt, generated_content,
  hero_image_prompt, main_image_prompt, thumbnail_image_prompt, created_at)
SELECT $1, $2, COALESCE(MAX(version), 0) + 1, $3, $4, $5, $6, $7, $8, $9
FROM blog_generation_responses
WHERE cluster_id = $2
RETURNING version;`

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		err := r.db.QueryRowContext(ctx, q,
			resp.ID, resp.ClusterID, resp.ModelName, resp.Prompt, []byte(resp.GeneratedContent),
			resp.HeroImagePrompt, resp.MainImagePrompt, resp.ThumbnailImagePrompt, resp.CreatedAt,
		).Scan(&resp.Version)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("%w: cluster %s", domain.ErrVersionConflict, resp.ClusterID)
}

// Versions lists responses for a cluster newest first, bodies omitted
func (r *GenerationRepository) Versions(ctx context.Context, clusterID string) ([]*domain.Response, error) {
	const q = `
SELECT response_id, cluster_id, version, model_name,
       hero_image_prompt, main_image_prompt, thumbnail_image_prompt, created_at
FROM blog_generation_responses
WHERE cluster_id = $1
ORDER BY version DESC;`
	rows, err := r.db.QueryContext(ctx, q, clusterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Response
	for rows.Next() {
		var resp domain.Response
		if err := rows.Scan(
			&resp.ID, &resp.ClusterID, &resp.Version, &resp.ModelName,
			&resp.HeroImagePrompt, &resp.MainImagePrompt, &resp.ThumbnailImagePrompt, &resp.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &resp)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
