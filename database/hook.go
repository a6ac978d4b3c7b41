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
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tomoncle/pgclient/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"
)

// EnvBunDebug overrides the query hook at runtime: 0 off, 1 failed queries, 2 all queries.
const EnvBunDebug = "BUNDEBUG"

// LogLevels selects which client events are logged.
type LogLevels struct {
	Query bool // every executed query
	Error bool // failed queries
	Warn  bool // slow queries
}

// LogLevelsFor returns query, error and warn logging in development and
// error-only logging in every other mode.
func LogLevelsFor(mode config.Mode) LogLevels {
	if mode.IsDevelopment() {
		return LogLevels{Query: true, Error: true, Warn: true}
	}
	return LogLevels{Error: true}
}

func (l LogLevels) String() string {
	var parts []string
	if l.Query {
		parts = append(parts, "query")
	}
	if l.Error {
		parts = append(parts, "error")
	}
	if l.Warn {
		parts = append(parts, "warn")
	}
	return strings.Join(parts, ",")
}

func newQueryHooks(levels LogLevels, opts *Options, logger Logger) []bun.QueryHook {
	var hooks []bun.QueryHook

	if levels.Query || levels.Error {
		hooks = append(hooks, bundebug.NewQueryHook(
			bundebug.WithEnabled(true),
			bundebug.WithVerbose(levels.Query),
			bundebug.WithWriter(opts.logWriter()),
			bundebug.FromEnv(EnvBunDebug),
		))
	}

	if levels.Warn && opts.SlowQueryTime > 0 {
		hooks = append(hooks, &slowQueryHook{
			slowTime: opts.SlowQueryTime,
			logger:   logger,
		})
	}
	return hooks
}

type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*slowQueryHook)(nil)

func (h *slowQueryHook) BeforeQuery(ctx context.Context, event *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil {
		return
	}

	duration := time.Since(event.StartTime)
	if duration <= h.slowTime {
		return
	}
	h.logger.Warn("Database slow query detected",
		"duration", duration.Round(time.Microsecond),
		"slow_threshold", h.slowTime,
		"query", operationColor(event.Operation()).Sprint(event.Query),
	)
}

func operationColor(operation string) *color.Color {
	switch operation {
	case "SELECT":
		return color.New(color.FgGreen)
	case "INSERT":
		return color.New(color.FgBlue)
	case "UPDATE":
		return color.New(color.FgYellow)
	case "DELETE":
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgRed)
	}
}
