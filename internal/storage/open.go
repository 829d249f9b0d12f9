package storage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Options struct {
	Backend string
	// Path is the file for the file and sqlite backends.
	Path  string
	DSN   string
	Redis RedisConfig
}

func Open(ctx context.Context, opts Options, log *zap.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		if opts.Path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		return NewFileStore(opts.Path, log)
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return NewSQLiteStore(opts.Path)
	case BackendPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres store requires a dsn")
		}
		return NewPostgresStore(opts.DSN)
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, fmt.Errorf("redis store requires an address")
		}
		return NewRedisStore(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
