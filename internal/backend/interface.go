package backend

import (
	"context"

	"finviz/internal/store"
)

// Backend is the dataset storage the server and worker run against.
type Backend interface {
	store.Store
	store.DigestStore
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Publisher announces stored datasets. Implemented by *amqp.Client.
type Publisher interface {
	PublishDatasetUploaded(ctx context.Context, datasetID, name string, rows int) error
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds the backend and the optional collaborators built
// with it. Pinger and Publisher are nil when not available.
type BackendResult struct {
	Backend   Backend
	Pinger    Pinger
	Publisher Publisher
	Cleanup   CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	SQLiteDBPath string

	// AMQP is optional for every backend type.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
