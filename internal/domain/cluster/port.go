package cluster

import "context"

// ListFilter narrows the admin cluster index.
type ListFilter struct {
	Week     int
	Year     int
	Status   AnalysisStatus
	Page     int
	PageSize int
}

// Repository port (interface untuk read-only cluster data)
type Repository interface {
	Get(ctx context.Context, id ID) (*Cluster, error)
	// LatestAnalysis returns the most recently created analysis for the
	// cluster regardless of status.
	LatestAnalysis(ctx context.Context, id ID) (*Analysis, error)
	// Bills returns all member bills ordered by membership confidence
	// descending.
	Bills(ctx context.Context, id ID) ([]Bill, error)
	Paginate(ctx context.Context, f ListFilter) (PaginatedResult, error)
}
