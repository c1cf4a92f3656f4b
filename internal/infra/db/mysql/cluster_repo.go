package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	domain "github.com/legisequity/bloggen/internal/domain/cluster"
)

type ClusterRepository struct{ db *sql.DB }

func NewClusterRepository(db *sql.DB) *ClusterRepository { return &ClusterRepository{db: db} }

func (r *ClusterRepository) Get(ctx context.Context, id domain.ID) (*domain.Cluster, error) {
	const q = `
SELECT c.cluster_id, c.bill_count, c.state_count, c.min_date, c.max_date,
       COALESCE(cs.min_confidence, 0), COALESCE(cs.avg_confidence, 0), COALESCE(cs.max_confidence, 0),
       COALESCE(cs.analysis_count, 0), COALESCE(cs.blog_post_count, 0),
       c.created_at, c.updated_at
FROM legislation_clusters c
LEFT JOIN cluster_stats cs ON c.cluster_id = cs.cluster_id
WHERE c.cluster_id = ?
LIMIT 1;`
	var cl domain.Cluster
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&cl.ID, &cl.BillCount, &cl.StateCount, &cl.MinDate, &cl.MaxDate,
		&cl.MinConfidence, &cl.AvgConfidence, &cl.MaxConfidence,
		&cl.AnalysisCount, &cl.BlogPostCount,
		&cl.CreatedAt, &cl.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *ClusterRepository) LatestAnalysis(ctx context.Context, id domain.ID) (*domain.Analysis, error) {
	const q = `
SELECT analysis_id, cluster_id, status,
       COALESCE(executive_summary, ''), COALESCE(policy_impacts, ''),
       COALESCE(risk_assessment, ''), COALESCE(future_outlook, ''),
       created_at
FROM cluster_analysis
WHERE cluster_id = ?
ORDER BY created_at DESC
LIMIT 1;`
	var a domain.Analysis
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.ClusterID, &a.Status,
		&a.ExecutiveSummary, &a.PolicyImpacts, &a.RiskAssessment, &a.FutureOutlook,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ClusterRepository) Bills(ctx context.Context, id domain.ID) ([]domain.Bill, error) {
	const q = `
SELECT cb.bill_id, b.bill_number, b.title, COALESCE(b.description, ''), b.status_date,
       s.state_abbr, s.state_name, cb.membership_confidence
FROM cluster_bills cb
JOIN ls_bill b ON cb.bill_id = b.bill_id
JOIN ls_state s ON b.state_id = s.state_id
WHERE cb.cluster_id = ?
ORDER BY cb.membership_confidence DESC;`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bill
	for rows.Next() {
		var b domain.Bill
		if err := rows.Scan(
			&b.BillID, &b.BillNumber, &b.Title, &b.Description, &b.StatusDate,
			&b.StateAbbr, &b.StateName, &b.MembershipConfidence,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *ClusterRepository) Paginate(ctx context.Context, f domain.ListFilter) (domain.PaginatedResult, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	offset := (f.Page - 1) * f.PageSize

	where := "\nWHERE 1=1"
	args := []interface{}{}
	if f.Week > 0 {
		where += " AND WEEK(c.min_date, 3) = ?"
		args = append(args, f.Week)
	}
	if f.Year > 0 {
		where += " AND YEAR(c.min_date) = ?"
		args = append(args, f.Year)
	}
	if f.Status != "" {
		where += " AND ca.status = ?"
		args = append(args, f.Status)
	}

	countQuery := `
SELECT COUNT(DISTINCT c.cluster_id)
FROM legislation_clusters c
JOIN cluster_analysis ca ON c.cluster_id = ca.cluster_id` + where

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("counting clusters: %w", err)
	}

	query := `
SELECT DISTINCT c.cluster_id, c.bill_count, c.state_count,
       ca.status, COALESCE(ca.executive_summary, ''), c.created_at, c.updated_at
FROM legislation_clusters c
JOIN cluster_analysis ca ON c.cluster_id = ca.cluster_id` + where + `
ORDER BY c.created_at DESC
LIMIT ? OFFSET ?`
	args = append(args, f.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying clusters: %w", err)
	}
	defer rows.Close()

	var items []*domain.Summary
	for rows.Next() {
		var s domain.Summary
		if err := rows.Scan(&s.ID, &s.BillCount, &s.StateCount, &s.Status, &s.ExecutiveSummary, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		items = append(items, &s)
	}
	if err := rows.Err(); err != nil {
		return domain.PaginatedResult{}, err
	}

	return domain.PaginatedResult{
		Items:      items,
		Page:       f.Page,
		PageSize:   f.PageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(f.PageSize))),
	}, nil
}
