package cluster

import (
	"errors"
	"time"
)

// ID tipe untuk Cluster
type ID string

// AnalysisStatus enum
type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

var (
	ErrNotFound         = errors.New("cluster not found")
	ErrAnalysisNotFound = errors.New("cluster analysis not found")
	// ErrAnalysisIncomplete is returned when the latest analysis exists but
	// has not finished; generation requires a completed analysis.
	ErrAnalysisIncomplete = errors.New("cluster analysis incomplete")
)

// Cluster is a group of topically related bills computed by the upstream
// analysis job. Read-only in this service.
type Cluster struct {
	ID            ID        `json:"cluster_id"`
	BillCount     int       `json:"bill_count"`
	StateCount    int       `json:"state_count"`
	MinDate       time.Time `json:"min_date"`
	MaxDate       time.Time `json:"max_date"`
	MinConfidence float64   `json:"min_confidence"`
	AvgConfidence float64   `json:"avg_confidence"`
	MaxConfidence float64   `json:"max_confidence"`
	AnalysisCount int       `json:"analysis_count"`
	BlogPostCount int       `json:"blog_post_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Analysis is a summary record for a cluster; one cluster may accumulate
// several over time and the pipeline uses the most recent completed one.
type Analysis struct {
	ID               string         `json:"analysis_id"`
	ClusterID        ID             `json:"cluster_id"`
	Status           AnalysisStatus `json:"status"`
	ExecutiveSummary string         `json:"executive_summary"`
	PolicyImpacts    string         `json:"policy_impacts"`
	RiskAssessment   string         `json:"risk_assessment"`
	FutureOutlook    string         `json:"future_outlook"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Bill is a member bill of a cluster with its membership confidence.
type Bill struct {
	BillID               int64     `json:"bill_id"`
	BillNumber           string    `json:"bill_number"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	StatusDate           time.Time `json:"status_date"`
	StateAbbr            string    `json:"state_abbr"`
	StateName            string    `json:"state_name"`
	MembershipConfidence float64   `json:"membership_confidence"`
}

// Summary is the listing projection used by the admin cluster index.
type Summary struct {
	ID               ID             `json:"cluster_id"`
	BillCount        int            `json:"bill_count"`
	StateCount       int            `json:"state_count"`
	Status           AnalysisStatus `json:"status"`
	ExecutiveSummary string         `json:"executive_summary"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
