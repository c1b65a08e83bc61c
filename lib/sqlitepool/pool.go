// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Config holds the parameters for opening a SQLite connection pool.
// Path is required; everything else has a usable zero value.
type Config struct {
	// Path is the filesystem path to the database file, created on
	// first open if absent. ":memory:" opens an in-memory database;
	// in that case Size must be 1 because each in-memory connection
	// sees its own private database.
	Path string

	// Size is the number of connections held by the pool. Zero or
	// negative selects max(NumCPU, 4). Writes are serialized by
	// SQLite no matter how large the pool is, so extra connections
	// only help concurrent readers.
	Size int

	// Logger receives open/close events. Nil discards them.
	Logger *slog.Logger

	// Setup runs once per connection after the standard pragmas,
	// before the connection is handed out. Schema creation and
	// custom function registration belong here. A Setup error
	// discards the connection and surfaces from Take.
	Setup func(conn *sqlite.Conn) error
}

// connectionPragmas are applied to every connection before Setup runs.
// WAL keeps readers unblocked during version writes; the busy timeout
// covers the publish transaction, which touches every sibling row of a
// document under a single IMMEDIATE lock.
var connectionPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=10000",
	"PRAGMA foreign_keys=ON",
	"PRAGMA cache_size=-16384",
	"PRAGMA temp_store=MEMORY",
}

// Pool is a fixed-size pool of prepared SQLite connections. It is safe
// for concurrent use; the connections it hands out are not. Each
// goroutine takes its own connection and returns it when done.
type Pool struct {
	inner  *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open creates the pool. Connections are established lazily on first
// Take, so Open succeeding does not guarantee the file is writable.
// The caller owns the pool and must Close it.
func Open(cfg Config) (*Pool, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlitepool: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	size := cfg.Size
	if size <= 0 {
		size = runtime.NumCPU()
		if size < 4 {
			size = 4
		}
	}

	inner, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{
		PoolSize: size,
		PrepareConn: func(conn *sqlite.Conn) error {
			for _, pragma := range connectionPragmas {
				if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
					return fmt.Errorf("sqlitepool: %s: %w", pragma, err)
				}
			}
			if cfg.Setup != nil {
				if err := cfg.Setup(conn); err != nil {
					return fmt.Errorf("sqlitepool: setup: %w", err)
				}
			}
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: opening %s: %w", cfg.Path, err)
	}

	logger.Info("sqlite pool opened", "path", cfg.Path, "size", size)
	return &Pool{inner: inner, logger: logger, path: cfg.Path}, nil
}

// Take borrows a connection, blocking until one is free or ctx is
// cancelled. Every successful Take must be paired with Put, typically
// via defer.
func (p *Pool) Take(ctx context.Context) (*sqlite.Conn, error) {
	conn, err := p.inner.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("sqlitepool: take: %w", err)
	}
	return conn, nil
}

// Put returns a connection to the pool. Put(nil) is a no-op. The
// caller must not touch the connection afterwards.
func (p *Pool) Put(conn *sqlite.Conn) {
	p.inner.Put(conn)
}

// Close waits for all borrowed connections to come back, then closes
// them. Take fails after Close.
func (p *Pool) Close() error {
	if err := p.inner.Close(); err != nil {
		p.logger.Error("sqlite pool close failed", "path", p.path, "error", err)
		return fmt.Errorf("sqlitepool: closing %s: %w", p.path, err)
	}
	p.logger.Info("sqlite pool closed", "path", p.path)
	return nil
}
