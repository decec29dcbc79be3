// Package testutil starts throwaway backing services for integration tests.
//
// Each container is started at most once per test binary. Tests are
// skipped under -short or when the container cannot be started (for
// example, no Docker daemon).
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type lazyContainer struct {
	once     sync.Once
	endpoint string
	err      error
}

var (
	redisC    lazyContainer
	postgresC lazyContainer
	mongoC    lazyContainer
)

func (c *lazyContainer) get(t *testing.T, name string, start func(ctx context.Context) (string, error)) string {
	t.Helper()
	if testing.Short() {
		t.Skipf("skipping %s integration test in short mode", name)
	}

	c.once.Do(func() {
		// Give generous timeout in CI environments
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		c.endpoint, c.err = start(ctx)
	})

	if c.err != nil {
		t.Skipf("%s container unavailable: %v", name, c.err)
	}
	return c.endpoint
}

// GetRedisAddress returns host:port of a running Redis.
func GetRedisAddress(t *testing.T) string {
	return redisC.get(t, "redis", func(ctx context.Context) (string, error) {
		ctr, err := testcontainers.Run(
			ctx, "redis:latest",
			testcontainers.WithExposedPorts("6379/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForListeningPort("6379/tcp"),
				wait.ForLog("Ready to accept connections"),
			),
		)
		if err != nil {
			return "", err
		}
		return ctr.Endpoint(ctx, "")
	})
}

// GetPostgresDSN returns a DSN for a running PostgreSQL database.
func GetPostgresDSN(t *testing.T) string {
	return postgresC.get(t, "postgres", func(ctx context.Context) (string, error) {
		ctr, err := testcontainers.Run(
			ctx, "postgres:16",
			testcontainers.WithExposedPorts("5432/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForAll(
					wait.ForListeningPort("5432/tcp"),
					// Postgres logs readiness twice: once for the init run, once for real.
					wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				).WithDeadline(2*time.Minute),
			),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_USER":     "sessionflow",
				"POSTGRES_PASSWORD": "sessionflow",
				"POSTGRES_DB":       "sessionflow_test",
			}),
		)
		if err != nil {
			return "", err
		}
		endpoint, err := ctr.Endpoint(ctx, "")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("postgres://sessionflow:sessionflow@%s/sessionflow_test?sslmode=disable", endpoint), nil
	})
}

// GetMongoURI returns a connection URI for a running MongoDB.
func GetMongoURI(t *testing.T) string {
	return mongoC.get(t, "mongo", func(ctx context.Context) (string, error) {
		ctr, err := testcontainers.Run(
			ctx, "mongo:7",
			testcontainers.WithExposedPorts("27017/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForListeningPort("27017/tcp"),
				wait.ForLog("mongod startup complete"),
			),
		)
		if err != nil {
			return "", err
		}
		endpoint, err := ctr.Endpoint(ctx, "")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("mongodb://%s", endpoint), nil
	})
}
