// Package logger configures the process-wide logrus logger.
//
// The TUI owns the terminal, so log output normally goes to a file under the
// profile directory; nothing is written to stderr once SetupFile succeeds.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger, Entry and Fields alias the logrus types so callers need not
// import logrus directly.
type (
	Logger = logrus.Logger
	Entry  = logrus.Entry
	Fields = logrus.Fields
)

// DefaultFile is the log file name inside <profile>/logs.
const DefaultFile = "xve.log"

var rootLogger = logrus.StandardLogger()

// Configure sets the formatter and level on the root logger.
func Configure(verbose bool) {
	root().SetReportCaller(true)
	root().SetFormatter(PlainFormatter{})
	if verbose {
		root().SetLevel(logrus.DebugLevel)
	} else {
		root().SetLevel(logrus.InfoLevel)
	}
}

// DefaultPath returns <profileDir>/logs/xve.log.
func DefaultPath(profileDir string) string {
	return filepath.Join(profileDir, "logs", DefaultFile)
}

// SetupFile redirects the root logger to path, creating parent directories.
// The returned closer releases the file.
func SetupFile(path string) (io.Closer, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	root().SetOutput(f)
	return f, nil
}

// Discard silences the root logger.
func Discard() {
	root().SetOutput(io.Discard)
}

// setRoot replaces the shared logger; nil restores the standard logger.
func setRoot(l *Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	rootLogger = l
}

// Named returns an entry tagged with a component field.
func Named(component string) *Entry {
	entry := logrus.NewEntry(root())
	if component != "" {
		entry = entry.WithField("component", component)
	}
	return entry
}

func root() *logrus.Logger {
	if rootLogger == nil {
		rootLogger = logrus.StandardLogger()
	}
	return rootLogger
}

// PlainFormatter writes: caller [timestamp] [LEVEL] [component] message k=v...
type PlainFormatter struct{}

// Format implements logrus.Formatter.
func (PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	if entry == nil {
		return []byte{}, nil
	}
	parts := make([]string, 0, 6)
	if caller := formatCaller(entry); caller != "" {
		parts = append(parts, caller)
	}
	parts = append(parts, fmt.Sprintf("[%s]", entry.Time.UTC().Format(time.RFC3339Nano)))
	parts = append(parts, fmt.Sprintf("[%s]", strings.ToUpper(entry.Level.String())))
	if component, ok := entry.Data["component"].(string); ok && component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	parts = append(parts, entry.Message)
	if fields := formatFields(entry.Data); fields != "" {
		parts = append(parts, fields)
	}
	return []byte(strings.Join(parts, " ") + "\n"), nil
}

func formatCaller(entry *logrus.Entry) string {
	if entry.HasCaller() && entry.Caller != nil {
		return fmt.Sprintf("%s:%d", shortenFilePath(entry.Caller.File), entry.Caller.Line)
	}
	if caller, ok := entry.Data["caller"].(string); ok {
		return caller
	}
	return ""
}

func formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == "component" || k == "caller" {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return strings.Join(parts, " ")
}

// shortenFilePath trims a caller path to the package-relative part.
func shortenFilePath(file string) string {
	file = filepath.ToSlash(file)
	if idx := strings.Index(file, "/wxve-chat/"); idx != -1 {
		return file[idx+len("/wxve-chat/"):]
	}
	dir := filepath.Base(filepath.Dir(file))
	return dir + "/" + filepath.Base(file)
}
