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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger = logrus.Logger

const timestampFormat = "2006-01-02 15:04:05.000"

var (
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	defaultLevel     = ParseLogLevel(EnvDefaultString("LOG_LEVEL", "info"))
	consoleLogFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	fileLogEnabled   = EnvDefaultBool("FILE_LOG_ENABLED", false)
	fileLogDir       = EnvDefaultString("FILE_LOG_DIR", "logs")
	fileLogMaxAge    = 7
	fileLogMaxSizeMB = 100
)

// ConfigureFileLog enables rotated file output for loggers created afterwards.
// A maxAgeDays of zero keeps old files forever.
func ConfigureFileLog(dir string, maxAgeDays int) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	fileLogEnabled = true
	if dir != "" {
		fileLogDir = dir
	}
	if maxAgeDays >= 0 {
		fileLogMaxAge = maxAgeDays
	}
}

func ConfigureConsoleLogFormat(format string) {
	next := "text"
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		next = "json"
	}
	loggerRegistryMu.Lock()
	consoleLogFormat = next
	loggerRegistryMu.Unlock()
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// GetRegisteredLogger returns the logger registered under name.
func GetRegisteredLogger(name string) (*logrus.Logger, bool) {
	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	l, ok := loggerRegistry[name]
	return l, ok
}

func SetLoggerLevel(name string, lvlStr string) bool {
	l, ok := GetRegisteredLogger(name)
	if !ok {
		return false
	}
	l.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// ConfigureLogLevel sets the level of every registered logger and of loggers
// created afterwards.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	loggerRegistryMu.Lock()
	defaultLevel = lvl
	for _, l := range loggerRegistry {
		l.SetLevel(lvl)
	}
	loggerRegistryMu.Unlock()
}

// NewLogger creates and registers a named logger writing to stdout, plus a
// rotated file under the log directory when file logging is enabled.
func NewLogger(name string) *logrus.Logger {
	l := NewLoggerTo(name, os.Stdout)

	loggerRegistryMu.RLock()
	enabled, dir, maxAge := fileLogEnabled, fileLogDir, fileLogMaxAge
	loggerRegistryMu.RUnlock()
	if enabled {
		l.AddHook(&fileHook{
			writer: &lumberjack.Logger{
				Filename: filepath.Join(dir, strings.ToLower(name)+".log"),
				MaxSize:  fileLogMaxSizeMB,
				MaxAge:   maxAge,
				Compress: true,
			},
			formatter: &Log4jFormatter{LoggerName: name},
		})
	}
	RegisterLogger(name, l)
	return l
}

// NewLoggerTo creates an unregistered named logger writing to w.
func NewLoggerTo(name string, w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	loggerRegistryMu.RLock()
	l.SetLevel(defaultLevel)
	format := consoleLogFormat
	loggerRegistryMu.RUnlock()
	if format == "json" {
		l.SetFormatter(&JSONLogFormatter{LoggerName: name})
	} else {
		l.SetFormatter(&Log4jFormatter{LoggerName: name, Color: isTerminal(w)})
	}
	return l
}

type fileHook struct {
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

// Log4jFormatter renders "time LEVEL pid --- [name] : message k=v ...".
type Log4jFormatter struct {
	LoggerName string
	Color      bool
}

func (f *Log4jFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	lvl := fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String()))
	name := fmt.Sprintf("[%s]", f.LoggerName)
	if f.Color {
		lvl = colorLevel(lvl, entry.Level)
		name = colorWrap(name, ansiCyan)
	}

	var b strings.Builder
	b.WriteString(entry.Time.Format(timestampFormat))
	b.WriteString(" ")
	b.WriteString(lvl)
	b.WriteString(" ")
	b.WriteString(strconv.Itoa(os.Getpid()))
	b.WriteString(" --- ")
	b.WriteString(name)
	b.WriteString(" : ")
	b.WriteString(entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteString("\n")
	return []byte(b.String()), nil
}

// JSONLogFormatter renders one JSON object per entry.
type JSONLogFormatter struct {
	LoggerName string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Logger  string                 `json:"logger"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}{
		Time:    entry.Time.Format(timestampFormat),
		Level:   entry.Level.String(),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if len(entry.Data) > 0 {
		rec.Fields = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			if err, ok := v.(error); ok {
				v = err.Error()
			} else if s, ok := v.(fmt.Stringer); ok {
				v = s.String()
			}
			rec.Fields[k] = v
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

const (
	ansiReset   = "\x1b[0m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.TraceLevel:
		return colorWrap(s, ansiMagenta)
	case logrus.DebugLevel:
		return colorWrap(s, ansiBlue)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	default:
		return colorWrap(s, ansiRed)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	}
	return def
}
