package store

import (
	"context"
	"fmt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Open returns the backend for driver. dsn is a file path for sqlite and a
// connection URL for postgres and redis; memory ignores it.
func Open(ctx context.Context, driver, dsn string) (Backend, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteBackend(ctx, dsn)
	case DriverPostgres:
		return NewPostgresBackend(ctx, dsn)
	case DriverRedis:
		return NewRedisBackend(ctx, dsn)
	case DriverMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
