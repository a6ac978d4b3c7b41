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

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by LoadEnv when no file names are given.
const DefaultEnvFile = ".env"

// Env is an immutable snapshot of environment variables. Resolution functions
// take an Env instead of reading or writing the process environment.
type Env struct {
	vars map[string]string
}

// Environ returns a snapshot of the current process environment.
func Environ() Env {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		vars[k] = v
	}
	return Env{vars: vars}
}

// EnvFrom builds a snapshot from a literal map. The map is copied.
func EnvFrom(m map[string]string) Env {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return Env{vars: vars}
}

// LoadEnv reads dotenv files and merges them under the process environment:
// a variable already set in the process wins over the file value.
// Without arguments it reads DefaultEnvFile and ignores its absence.
func LoadEnv(files ...string) (Env, error) {
	optional := len(files) == 0
	if optional {
		files = []string{DefaultEnvFile}
	}

	fileVars, err := godotenv.Read(files...)
	if err != nil {
		if !(optional && errors.Is(err, fs.ErrNotExist)) {
			return Env{}, fmt.Errorf("failed to read env files %v: %w", files, err)
		}
		fileVars = map[string]string{}
	}

	env := Environ()
	for k, v := range fileVars {
		if _, ok := env.vars[k]; !ok {
			env.vars[k] = v
		}
	}
	return env, nil
}

// Get returns the value for key, or "" when unset.
func (e Env) Get(key string) string {
	return e.vars[key]
}

// Lookup returns the value for key and whether it is set at all.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// With returns a copy of the snapshot with key set to value.
func (e Env) With(key, value string) Env {
	next := EnvFrom(e.vars)
	next.vars[key] = value
	return next
}

// Keys returns the sorted variable names in the snapshot.
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Int parses key as an integer, returning def when unset or malformed.
func (e Env) Int(key string, def int) int {
	if v := e.Get(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Bool parses key as a boolean, returning def when unset or malformed.
func (e Env) Bool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(e.Get(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

// Seconds parses key as a whole number of seconds.
func (e Env) Seconds(key string, def time.Duration) time.Duration {
	if n := e.Int(key, -1); n >= 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

// Millis parses key as a whole number of milliseconds.
func (e Env) Millis(key string, def time.Duration) time.Duration {
	if n := e.Int(key, -1); n >= 0 {
		return time.Duration(n) * time.Millisecond
	}
	return def
}
