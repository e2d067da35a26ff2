package waiver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a waiver file does not exist.
var ErrNotFound = errors.New("waiver file not found")

// ValidationError describes an invalid waiver file or entry. Index is the
// zero-based entry index or -1; Line is 0 when unknown.
type ValidationError struct {
	Path    string
	Index   int
	Line    int
	Message string
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.Path != "" {
		parts = append(parts, "Error in "+e.Path)
	}
	if e.Index >= 0 {
		parts = append(parts, fmt.Sprintf("waiver entry %d", e.Index+1))
	}
	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("at line %d", e.Line))
	}
	if len(parts) == 0 {
		return e.Message
	}
	return strings.Join(parts, " ") + ": " + e.Message
}
