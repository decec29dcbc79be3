package sessionflow

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/petrijr/sessionflow/internal/persistence"
	"github.com/petrijr/sessionflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Workflow             = api.Workflow
	Store                = api.Store
	Snapshot             = api.Snapshot
	UIState              = api.UIState
	DomainState          = api.DomainState
	Run                  = api.Run
	Status               = api.Status
	IdentitySDK          = api.IdentitySDK
	QRScanner            = api.QRScanner
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver

	// Slot is the durable cell a session record is kept in.
	Slot = persistence.Slot
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export status values for convenience.

const (
	StatusRunning   = api.StatusRunning
	StatusWaiting   = api.StatusWaiting
	StatusFailed    = api.StatusFailed
	StatusCompleted = api.StatusCompleted
)

// Re-export the errors callers are expected to match on.

var (
	ErrBusy            = api.ErrBusy
	ErrUserCancelled   = api.ErrUserCancelled
	ErrNoSelection     = api.ErrNoSelection
	ErrCancelled       = api.ErrCancelled
	ErrUnknownWorkflow = api.ErrUnknownWorkflow
)

// Session constructors
// These wrap the internal/persistence package so external callers
// never need to import internal packages.

// NewInMemorySession returns a Session whose record lives only in memory.
func NewInMemorySession(ctx context.Context, opts ...Option) (*Session, error) {
	return NewSession(ctx, persistence.NewInMemorySlot(), opts...)
}

// NewSQLiteSession returns a Session that keeps its record in SQLite.
// The caller imports the driver, e.g. modernc.org/sqlite.
func NewSQLiteSession(ctx context.Context, db *sql.DB, opts ...Option) (*Session, error) {
	slot, err := persistence.NewSQLiteSlot(db)
	if err != nil {
		return nil, err
	}
	return NewSession(ctx, slot, opts...)
}

// NewPostgresSession returns a Session that keeps its record in PostgreSQL.
// The caller imports the driver, e.g. github.com/jackc/pgx/v5/stdlib.
func NewPostgresSession(ctx context.Context, db *sql.DB, opts ...Option) (*Session, error) {
	slot, err := persistence.NewPostgresSlot(db)
	if err != nil {
		return nil, err
	}
	return NewSession(ctx, slot, opts...)
}

// NewRedisSession returns a Session that keeps its record in Redis under
// the given key prefix.
func NewRedisSession(ctx context.Context, client *redis.Client, prefix string, opts ...Option) (*Session, error) {
	return NewSession(ctx, persistence.NewRedisSlot(client, prefix), opts...)
}

// NewMongoSession returns a Session that keeps its record in MongoDB.
// An empty dbName means "sessionflow".
func NewMongoSession(ctx context.Context, client *mongo.Client, dbName string, opts ...Option) (*Session, error) {
	return NewSession(ctx, persistence.NewMongoSlot(client, dbName, ""), opts...)
}
