// Package logger provides a minimal file-backed logger for CLI runs, where
// stderr belongs to the user.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileLogger appends timestamped lines to worktrack.log in the given
// directory. Logging failures are ignored: a broken log file must never break
// a lifecycle operation.
type FileLogger struct {
	path string
}

func NewFileLogger(dir string) *FileLogger {
	return &FileLogger{path: filepath.Join(dir, "worktrack.log")}
}

func (l *FileLogger) Debug(message string) {
	l.write("DEBUG", message)
}

func (l *FileLogger) Error(message string) {
	l.write("ERROR", message)
}

func (l *FileLogger) write(level, message string) {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s [%s] %s\n", time.Now().UTC().Format(time.RFC3339), level, message)
}

// Discard is a logger that drops everything. Useful in tests.
type Discard struct{}

func (Discard) Debug(string) {}
func (Discard) Error(string) {}
