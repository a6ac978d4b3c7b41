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

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestLog4jFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo("DATABASE", &buf)

	l.WithFields(logrus.Fields{"b": 2, "a": "x"}).Info("connected")

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "[DATABASE] : connected a=x b=2")
	assert.NotContains(t, line, ansiReset)
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "DATABASE"}
	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{"error": errors.New("boom"), "n": 1})
	entry.Message = "failed"
	entry.Level = logrus.ErrorLevel

	out, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "DATABASE", rec["logger"])
	assert.Equal(t, "failed", rec["message"])
	assert.Equal(t, map[string]any{"error": "boom", "n": float64(1)}, rec["fields"])
}

func TestRegistryLevels(t *testing.T) {
	l := NewLoggerTo("REGISTRY_TEST", &bytes.Buffer{})
	RegisterLogger("REGISTRY_TEST", l)

	assert.True(t, SetLoggerLevel("REGISTRY_TEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("MISSING", "error"))
}

func TestFileLog(t *testing.T) {
	dir := t.TempDir()
	ConfigureFileLog(dir, 1)
	t.Cleanup(func() {
		loggerRegistryMu.Lock()
		fileLogEnabled = false
		loggerRegistryMu.Unlock()
	})

	l := NewLogger("FILETEST")
	l.Warn("to file")

	data, err := os.ReadFile(filepath.Join(dir, "filetest.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[FILETEST] : to file")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_STR", "v")
	t.Setenv("UTILS_TEST_BOOL", "true")
	t.Setenv("UTILS_TEST_BAD_BOOL", "maybe")

	assert.Equal(t, "v", EnvDefaultString("UTILS_TEST_STR", "d"))
	assert.Equal(t, "d", EnvDefaultString("UTILS_TEST_MISSING", "d"))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BAD_BOOL", true))
}

func TestConfigureConsoleLogFormat(t *testing.T) {
	t.Cleanup(func() { ConfigureConsoleLogFormat("text") })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ConfigureConsoleLogFormat("json")
		}()
		go func() {
			defer wg.Done()
			_ = NewLoggerTo("FORMAT", &bytes.Buffer{})
		}()
	}
	wg.Wait()

	ConfigureConsoleLogFormat(" JSON ")
	assert.IsType(t, &JSONLogFormatter{}, NewLoggerTo("FORMAT", &bytes.Buffer{}).Formatter)

	ConfigureConsoleLogFormat("plain")
	assert.IsType(t, &Log4jFormatter{}, NewLoggerTo("FORMAT", &bytes.Buffer{}).Formatter)
}
