package reconfig

import "context"

// ManifestStore is the port for loading and saving per-service manifests.
// Implementations are provided by adapters in the outbound layer.
type ManifestStore interface {
	// Services returns the registered services in declaration order.
	Services() []ServiceRef

	Load(ctx context.Context, service string) ([]byte, error)

	Save(ctx context.Context, service string, data []byte) error
}

// BackupStore is the port for the append-only snapshot store.
type BackupStore interface {
	// Snapshot stores an immutable copy of data and returns its backup id.
	// Existing records are never overwritten.
	Snapshot(ctx context.Context, service string, data []byte) (string, error)

	// Restore returns the exact bytes stored under id. Repeatable; the
	// record is not mutated or deleted.
	Restore(ctx context.Context, id string) ([]byte, error)
}

// Applier is the boundary port handing manifests to the orchestration
// platform.
type Applier interface {
	// CheckContext validates the platform session and target namespace.
	// It is evaluated once per run, before any service is touched.
	CheckContext(ctx context.Context) error

	Apply(ctx context.Context, manifest []byte) error
}

// notFound is a private interface for checking "not found" errors
// without importing the adapter packages.
type notFound interface {
	IsNotFound()
}

// rejected is a private interface for checking platform rejections
// without importing the adapter packages.
type rejected interface {
	IsRejected()
}
