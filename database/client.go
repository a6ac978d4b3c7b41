/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/tomoncle/pgclient/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Client is a ready database handle: a connection pool, the database/sql
// adapter over it and the Bun client built on the adapter.
type Client struct {
	url     string
	dialect Dialect
	mode    config.Mode
	options *Options
	logger  Logger

	pool  *pgxpool.Pool
	sqlDB *sql.DB
	db    *bun.DB

	mu     sync.Mutex
	closed bool
}

// Open creates the pool for rawURL, wraps it for Bun and, unless
// opts.LazyConnect is set, pings the database. Query logging follows
// LogLevelsFor(mode). A nil opts means DefaultOptions.
func Open(ctx context.Context, rawURL string, mode config.Mode, opts *Options) (*Client, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	dialect, err := DialectOf(rawURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		url:     rawURL,
		dialect: dialect,
		mode:    mode,
		options: opts,
		logger:  opts.logger(),
	}

	switch dialect {
	case DialectPostgres:
		err = c.openPostgres(ctx)
	case DialectMySQL:
		err = c.openMySQL()
	case DialectSQLite:
		err = c.openSQLite()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	levels := LogLevelsFor(mode)
	for _, hook := range newQueryHooks(levels, opts, c.logger) {
		c.db.AddQueryHook(hook)
	}
	if opts.Models != nil {
		c.db.RegisterModel(opts.Models.Instances()...)
	}

	if !opts.LazyConnect {
		if err := c.ping(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("database connection test failed: %w", err)
		}
	}

	c.logger.Info("Database client ready",
		"dialect", dialect,
		"url", config.RedactURL(rawURL),
		"mode", mode,
		"log", levels,
	)
	return c, nil
}

func (c *Client) openPostgres(ctx context.Context) error {
	if c.options.Driver == DriverPQ {
		connector, err := pq.NewConnector(c.url)
		if err != nil {
			return err
		}
		c.sqlDB = sql.OpenDB(connector)
		c.configureSQLPool()
		c.db = bun.NewDB(c.sqlDB, pgdialect.New())
		return nil
	}
	if c.options.Driver != "" && c.options.Driver != DriverPgx {
		return fmt.Errorf("unsupported postgres driver: %s, supported drivers: %v",
			c.options.Driver, []string{DriverPgx, DriverPQ})
	}

	poolConfig, err := pgxpool.ParseConfig(c.url)
	if err != nil {
		return err
	}
	if c.options.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(c.options.MaxOpenConns)
	}
	if c.options.MinConns > 0 {
		poolConfig.MinConns = int32(c.options.MinConns)
	}
	if c.options.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = c.options.ConnMaxLifetime
	}
	if c.options.ConnMaxIdleTime > 0 {
		poolConfig.MaxConnIdleTime = c.options.ConnMaxIdleTime
	}
	if c.options.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = c.options.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return err
	}
	c.pool = pool
	// idle connections belong to the pgx pool, not to database/sql
	c.sqlDB = stdlib.OpenDBFromPool(pool)
	c.db = bun.NewDB(c.sqlDB, pgdialect.New())
	return nil
}

func (c *Client) openMySQL() error {
	cfg, err := mysqlConfig(c.url)
	if err != nil {
		return err
	}
	if c.options.ConnectTimeout > 0 {
		cfg.Timeout = c.options.ConnectTimeout
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return err
	}
	c.sqlDB = sql.OpenDB(connector)
	c.configureSQLPool()
	c.db = bun.NewDB(c.sqlDB, mysqldialect.New())
	return nil
}

func (c *Client) openSQLite() error {
	dsn := sqliteDSN(c.url)
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return err
	}
	c.sqlDB = sqlDB
	if isSQLiteMemory(dsn) {
		// an in-memory database lives as long as its last connection
		c.sqlDB.SetMaxOpenConns(1)
		c.sqlDB.SetMaxIdleConns(1)
		c.sqlDB.SetConnMaxLifetime(0)
		c.sqlDB.SetConnMaxIdleTime(0)
	} else {
		c.configureSQLPool()
	}
	c.db = bun.NewDB(c.sqlDB, sqlitedialect.New())
	return nil
}

func (c *Client) configureSQLPool() {
	c.sqlDB.SetMaxIdleConns(c.options.MaxIdleConns)
	c.sqlDB.SetMaxOpenConns(c.options.MaxOpenConns)
	c.sqlDB.SetConnMaxLifetime(c.options.ConnMaxLifetime)
	c.sqlDB.SetConnMaxIdleTime(c.options.ConnMaxIdleTime)
}

func (c *Client) ping(ctx context.Context) error {
	if c.options.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.options.ConnectTimeout)
		defer cancel()
	}
	return c.db.PingContext(ctx)
}

// DB returns the Bun client.
func (c *Client) DB() *bun.DB { return c.db }

// SQLDB returns the database/sql handle Bun runs on.
func (c *Client) SQLDB() *sql.DB { return c.sqlDB }

// Pool returns the pgx pool, or nil for the pq, mysql and sqlite drivers.
func (c *Client) Pool() *pgxpool.Pool { return c.pool }

func (c *Client) Dialect() Dialect { return c.dialect }

func (c *Client) Mode() config.Mode { return c.mode }

// URL returns the connection string with the password masked.
func (c *Client) URL() string { return config.RedactURL(c.url) }

func (c *Client) Logger() Logger { return c.logger }

func (c *Client) Ping(ctx context.Context) error {
	if c.isClosed() {
		return fmt.Errorf("database client closed")
	}
	return c.db.PingContext(ctx)
}

// HealthCheck pings the database with a five second timeout and reports pool usage.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Dialect:       c.dialect,
		Mode:          c.mode.String(),
		LastCheckTime: start,
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := c.Ping(ctxTimeout)
	status.ResponseTime = time.Since(start)
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
		status.Connected = true
	}

	stats := c.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConns
	return status
}

func (c *Client) Stats() *DBStats {
	if c.pool != nil {
		stat := c.pool.Stat()
		return &DBStats{
			MaxOpenConns: int(stat.MaxConns()),
			OpenConns:    int(stat.TotalConns()),
			InUse:        int(stat.AcquiredConns()),
			Idle:         int(stat.IdleConns()),
			WaitCount:    stat.EmptyAcquireCount(),
		}
	}

	stats := c.sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

// Close closes the Bun client and the pool under it. Later calls are no-ops.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	err := c.db.Close()
	if c.pool != nil {
		c.pool.Close()
	}
	if err != nil {
		c.logger.Error("Failed to close database connection", "error", err)
		return err
	}
	c.logger.Info("Database connection closed", "dialect", c.dialect)
	return nil
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
