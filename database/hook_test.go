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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/pgclient/config"
	"github.com/uptrace/bun"
)

func TestLogLevelsFor(t *testing.T) {
	assert.Equal(t, LogLevels{Query: true, Error: true, Warn: true}, LogLevelsFor(config.ModeDevelopment))
	assert.Equal(t, LogLevels{Error: true}, LogLevelsFor(config.ModeProduction))
	assert.Equal(t, LogLevels{Error: true}, LogLevelsFor(config.ModeOther))
	assert.Equal(t, "query,error,warn", LogLevelsFor(config.ModeDevelopment).String())
	assert.Equal(t, "error", LogLevelsFor(config.ModeProduction).String())
}

func TestNewQueryHooks(t *testing.T) {
	opts := testOptions()
	assert.Len(t, newQueryHooks(LogLevelsFor(config.ModeDevelopment), opts, NopLogger{}), 2)
	assert.Len(t, newQueryHooks(LogLevelsFor(config.ModeProduction), opts, NopLogger{}), 1)

	opts.SlowQueryTime = 0
	assert.Len(t, newQueryHooks(LogLevelsFor(config.ModeDevelopment), opts, NopLogger{}), 1)
	assert.Empty(t, newQueryHooks(LogLevels{}, opts, NopLogger{}))
}

func openLogged(t *testing.T, mode config.Mode) (*Client, *bytes.Buffer, *captureLogger) {
	var buf bytes.Buffer
	logger := &captureLogger{}
	opts := testOptions()
	opts.LogWriter = &buf
	opts.Logger = logger
	opts.SlowQueryTime = time.Nanosecond

	c, err := Open(context.Background(), memoryURL(t), mode, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, &buf, logger
}

func TestQueryLogging_Development(t *testing.T) {
	c, buf, logger := openLogged(t, config.ModeDevelopment)
	ctx := context.Background()

	_, err := c.DB().NewRaw("SELECT 1").Exec(ctx)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "SELECT 1")
	warnings := logger.byLevel("warn")
	require.Len(t, warnings, 1)
	assert.Equal(t, "Database slow query detected", warnings[0].msg)
	assert.Contains(t, warnings[0].fields, "query")
}

func TestQueryLogging_ErrorOnlyOutsideDevelopment(t *testing.T) {
	c, buf, logger := openLogged(t, config.ModeProduction)
	ctx := context.Background()

	_, err := c.DB().NewRaw("SELECT 1").Exec(ctx)
	require.NoError(t, err)
	assert.Empty(t, buf.String())

	_, err = c.DB().NewRaw("SELECT * FROM missing_table").Exec(ctx)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "missing_table")
	assert.Empty(t, logger.byLevel("warn"))
}

func TestSlowQueryHook_SkipsFailedAndFastQueries(t *testing.T) {
	logger := &captureLogger{}
	hook := &slowQueryHook{slowTime: time.Hour, logger: logger}

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now()})
	hook.AfterQuery(context.Background(), &bun.QueryEvent{
		Query:     "SELECT 1",
		StartTime: time.Now().Add(-2 * time.Hour),
		Err:       assert.AnError,
	})
	assert.Empty(t, logger.byLevel("warn"))

	hook.AfterQuery(context.Background(), &bun.QueryEvent{Query: "SELECT 1", StartTime: time.Now().Add(-2 * time.Hour)})
	assert.Len(t, logger.byLevel("warn"), 1)
}
