package generation

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	// Save inserts the response and assigns r.Version atomically:
	// version selection and insert happen in one statement guarded by the
	// unique (cluster_id, version) constraint.
	Save(ctx context.Context, r *Response) error
	// Versions lists past responses for a cluster, newest first, without
	// the prompt and generated content bodies.
	Versions(ctx context.Context, clusterID string) ([]*Response, error)
}

// FailureRepository persists failed generation attempts.
type FailureRepository interface {
	Save(ctx context.Context, f *Failure) error
	ListByCluster(ctx context.Context, clusterID string, limit int) ([]*Failure, error)
}

// ImageStore port: re-hosts an image reachable at srcURL under key and
// returns its permanent URL.
type ImageStore interface {
	UploadFromURL(ctx context.Context, srcURL, key string) (string, error)
}
