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
	"io"
	"os"
	"strings"
	"time"

	"github.com/tomoncle/pgclient/config"
)

// Postgres drivers selectable through Options.Driver.
const (
	DriverPgx = "pgx"
	DriverPQ  = "pq"
)

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	Dialect       Dialect       `json:"dialect"`
	Mode          string        `json:"mode"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats reports pool statistics, from pgxpool when the pgx driver is used
// and from database/sql otherwise.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// Options tunes the pool and logging of a Client.
type Options struct {
	Driver          string        `json:"driver"` // pgx or pq, postgres only
	MaxOpenConns    int           `json:"max_open_conns"`
	MinConns        int           `json:"min_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `json:"connect_timeout"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
	LazyConnect     bool          `json:"lazy_connect"`

	Logger    Logger        `json:"-"`
	LogWriter io.Writer     `json:"-"` // query log output, stderr when nil
	Models    ModelRegistry `json:"-"`
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Driver:          DriverPgx,
		MaxOpenConns:    10,
		MinConns:        0,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
		ConnectTimeout:  time.Second * 10,
		SlowQueryTime:   time.Second * 2,
	}
}

// OptionsFromEnv starts from DefaultOptions and applies DB_* overrides from the
// snapshot. Malformed values keep the default.
func OptionsFromEnv(env config.Env) *Options {
	opts := DefaultOptions()
	if driver := strings.ToLower(strings.TrimSpace(env.Get("DB_DRIVER"))); driver != "" {
		opts.Driver = driver
	}
	opts.MaxOpenConns = env.Int("DB_MAX_OPEN_CONNS", opts.MaxOpenConns)
	opts.MinConns = env.Int("DB_MIN_CONNS", opts.MinConns)
	opts.MaxIdleConns = env.Int("DB_MAX_IDLE_CONNS", opts.MaxIdleConns)
	opts.ConnMaxLifetime = env.Seconds("DB_CONN_MAX_LIFETIME", opts.ConnMaxLifetime)
	opts.ConnMaxIdleTime = env.Seconds("DB_CONN_MAX_IDLE_TIME", opts.ConnMaxIdleTime)
	opts.ConnectTimeout = env.Seconds("DB_CONNECT_TIMEOUT", opts.ConnectTimeout)
	opts.SlowQueryTime = env.Millis("DB_SLOW_QUERY_TIME", opts.SlowQueryTime)
	opts.LazyConnect = env.Bool("DB_LAZY_CONNECT", opts.LazyConnect)
	return opts
}

func (o *Options) logWriter() io.Writer {
	if o.LogWriter != nil {
		return o.LogWriter
	}
	return os.Stderr
}

func (o *Options) logger() Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return GetLogger()
}
