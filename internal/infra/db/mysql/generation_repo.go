package mysql

import (
	"context"
	"database/sql"
	"fmt"

	domain "github.com/legisequity/bloggen/internal/domain/generation"
)

const maxVersionRetries = 3

type GenerationRepository struct{ db *sql.DB }

func NewGenerationRepository(db *sql.DB) *GenerationRepository { return &GenerationRepository{db: db} }

// Save assigns the next version in the INSERT itself. MySQL cannot SELECT
// from the target table directly in an INSERT ... SELECT, so the current
// max version comes from a derived table; the unique (cluster_id, version)
// key catches concurrent races and the insert is retried.
func (r *GenerationRepository) Save(ctx context.Context, resp *domain.Response) error {
	const q = `
INSERT INTO blog_generation_responses
 (response_id, cluster_id, version, model_name, prompt, generated_content,
  hero_image_prompt, main_image_prompt, thumbnail_image_prompt, created_at)
SELECT ?, ?, COALESCE(MAX(v.version), 0) + 1, ?, ?, ?, ?, ?, ?, ?
FROM (SELECT version FROM blog_generation_responses WHERE cluster_id = ?) AS v;`

	for attempt := 0; attempt < maxVersionRetries; attempt++ {
		_, err := r.db.ExecContext(ctx, q,
			resp.ID, resp.ClusterID, resp.ModelName, resp.Prompt, []byte(resp.GeneratedContent),
			resp.HeroImagePrompt, resp.MainImagePrompt, resp.ThumbnailImagePrompt, resp.CreatedAt,
			resp.ClusterID,
		)
		if err == nil {
			return r.db.QueryRowContext(ctx,
				`SELECT version FROM blog_generation_responses WHERE response_id = ?;`, resp.ID,
			).Scan(&resp.Version)
		}
		if !isDuplicate(err) {
			return err
		}
	}
	return fmt.Errorf("%w: cluster %s", domain.ErrVersionConflict, resp.ClusterID)
}

func (r *GenerationRepository) Versions(ctx context.Context, clusterID string) ([]*domain.Response, error) {
	const q = `
SELECT response_id, cluster_id, version, model_name,
       hero_image_prompt, main_image_prompt, thumbnail_image_prompt, created_at
FROM blog_generation_responses
WHERE cluster_id = ?
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
