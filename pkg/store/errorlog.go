package store

import (
	"fmt"
	"sync"

	"github.com/coolbeans/lawabbrev/pkg/driver"
)

// ErrorLog collects fragment errors across documents for manual review.
type ErrorLog struct {
	mu     sync.Mutex
	errors []driver.FragmentError
}

// NewErrorLog creates an empty log.
func NewErrorLog() *ErrorLog {
	return &ErrorLog{errors: make([]driver.FragmentError, 0)}
}

// Add appends the errors of result.
func (l *ErrorLog) Add(result *driver.Result) {
	if result == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, result.Errors...)
}

// Errors returns a copy of the collected errors.
func (l *ErrorLog) Errors() []driver.FragmentError {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]driver.FragmentError, len(l.errors))
	copy(out, l.errors)
	return out
}

// Len returns the number of collected errors.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

// WriteFile writes the log as a list, creating parent directories.
func (l *ErrorLog) WriteFile(path string, format Format) error {
	data, err := Encode(l.Errors(), format)
	if err != nil {
		return fmt.Errorf("failed to marshal error log: %w", err)
	}
	return writeFile(path, data)
}
