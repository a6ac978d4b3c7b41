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
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
)

type logEntry struct {
	level  string
	msg    string
	fields []interface{}
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *captureLogger) add(level, msg string, fields []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) SetLevel(LogLevel) {}

func (l *captureLogger) Debug(msg string, fields ...interface{}) { l.add("debug", msg, fields) }

func (l *captureLogger) Info(msg string, fields ...interface{}) { l.add("info", msg, fields) }

func (l *captureLogger) Warn(msg string, fields ...interface{}) { l.add("warn", msg, fields) }

func (l *captureLogger) Error(msg string, fields ...interface{}) { l.add("error", msg, fields) }

func (l *captureLogger) byLevel(level string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []logEntry
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e)
		}
	}
	return out
}

// memoryURL names a private shared-cache in-memory sqlite database per test.
func memoryURL(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

func testOptions() *Options {
	opts := DefaultOptions()
	opts.Logger = NopLogger{}
	opts.LogWriter = io.Discard
	return opts
}
