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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeDevelopment, ParseMode("development"))
	assert.Equal(t, ModeProduction, ParseMode("production"))
	assert.Equal(t, ModeOther, ParseMode(""))
	assert.Equal(t, ModeOther, ParseMode("test"))
	assert.Equal(t, ModeOther, ParseMode("Production"))

	assert.Equal(t, ModeDevelopment, ModeFrom(EnvFrom(map[string]string{EnvExecutionMode: "development"})))
	assert.True(t, ModeProduction.IsProduction())
	assert.False(t, ModeOther.IsDevelopment())
	assert.Equal(t, "other", ModeOther.String())
}

func TestEnvHelpers(t *testing.T) {
	env := EnvFrom(map[string]string{
		"N":    "42",
		"BAD":  "x",
		"B":    "yes",
		"SEC":  "3",
		"MS":   "250",
		"OFF":  "off",
		"NEG":  "-1",
		"NONE": "",
	})

	assert.Equal(t, 42, env.Int("N", 0))
	assert.Equal(t, 7, env.Int("BAD", 7))
	assert.True(t, env.Bool("B", false))
	assert.False(t, env.Bool("OFF", true))
	assert.True(t, env.Bool("MISSING", true))
	assert.Equal(t, 3*time.Second, env.Seconds("SEC", 0))
	assert.Equal(t, 250*time.Millisecond, env.Millis("MS", 0))
	assert.Equal(t, time.Minute, env.Seconds("NEG", time.Minute))

	v, ok := env.Lookup("NONE")
	assert.True(t, ok)
	assert.Empty(t, v)
	assert.Equal(t, []string{"B", "BAD", "MS", "N", "NEG", "NONE", "OFF", "SEC"}, env.Keys())
}

func TestEnvFrom_Copies(t *testing.T) {
	src := map[string]string{"A": "1"}
	env := EnvFrom(src)
	src["A"] = "2"

	assert.Equal(t, "1", env.Get("A"))
	assert.Equal(t, "3", env.With("A", "3").Get("A"))
	assert.Equal(t, "1", env.Get("A"))
}

func TestLoadEnv_ProcessWins(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(file, []byte("PGCLIENT_TEST_FROM_FILE=file\nPGCLIENT_TEST_SHADOWED=file\n"), 0o644))
	t.Setenv("PGCLIENT_TEST_SHADOWED", "process")

	env, err := LoadEnv(file)
	require.NoError(t, err)

	assert.Equal(t, "file", env.Get("PGCLIENT_TEST_FROM_FILE"))
	assert.Equal(t, "process", env.Get("PGCLIENT_TEST_SHADOWED"))
}

func TestLoadEnv_MissingExplicitFile(t *testing.T) {
	_, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadEnv_MissingDefaultFileIgnored(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PGCLIENT_TEST_PROCESS", "yes")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "yes", env.Get("PGCLIENT_TEST_PROCESS"))
}
