package store

import "context"

// Cache is the interface for analysis persistence.
// This enables dependency injection and mocking for testing
type Cache interface {
	// Lifecycle
	Close() error
	HealthCheck(ctx context.Context) error
	Path() string
	Driver() string

	// Metadata operations
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error

	// Analysis operations
	SaveAnalysis(ctx context.Context, projectID, fingerprint string, payload *Payload) error
	LoadAnalysis(ctx context.Context, projectID string) (*Analysis, error)
	Fingerprint(ctx context.Context, projectID string) (string, error)
	DeleteAnalysis(ctx context.Context, projectID string) error
	ListProjects(ctx context.Context) ([]*ProjectInfo, error)

	// Index operations
	LookupAsset(ctx context.Context, projectID, guid string) (*IndexedAsset, error)
	Dependents(ctx context.Context, projectID, guid string) ([]*IndexedEdge, error)
	Dependencies(ctx context.Context, projectID, guid string) ([]*IndexedEdge, error)
	CountAssets(ctx context.Context, projectID string) (int64, error)
	CountEdges(ctx context.Context, projectID string) (int64, error)
}

// Ensure Store implements Cache interface
var _ Cache = (*Store)(nil)
