package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyFile         = errors.New("file contains no header row")
	ErrNoRecords         = errors.New("file contains no records")
	ErrMalformedFile     = errors.New("file could not be read")
)

// HeaderError reports required columns absent from the header row.
// Suggestions maps a missing column to the closest header cell found.
type HeaderError struct {
	Missing     []string
	Suggestions map[string]string
}

func (e *HeaderError) Error() string {
	var b strings.Builder
	b.WriteString("missing required columns: ")
	b.WriteString(strings.Join(e.Missing, ", "))
	if len(e.Suggestions) == 0 {
		return b.String()
	}
	hints := make([]string, 0, len(e.Suggestions))
	for want, got := range e.Suggestions {
		hints = append(hints, fmt.Sprintf("%q looks like %s", got, want))
	}
	sort.Strings(hints)
	b.WriteString(" (")
	b.WriteString(strings.Join(hints, "; "))
	b.WriteString(")")
	return b.String()
}

// RowError is a single rejected data row. Line is 1-based and counts the header.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %v", e.Line, e.Column, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// RowErrors collects every rejected row of a file.
type RowErrors []RowError

const maxSummarizedRows = 5

func (e RowErrors) Error() string {
	if len(e) == 0 {
		return "no row errors"
	}
	parts := make([]string, 0, maxSummarizedRows)
	for i, re := range e {
		if i == maxSummarizedRows {
			break
		}
		parts = append(parts, re.Error())
	}
	msg := fmt.Sprintf("%d invalid rows: %s", len(e), strings.Join(parts, "; "))
	if len(e) > maxSummarizedRows {
		msg += fmt.Sprintf("; and %d more", len(e)-maxSummarizedRows)
	}
	return msg
}

func (e RowErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i := range e {
		out[i] = e[i]
	}
	return out
}

// Details returns one message per rejected row, suitable for API responses.
func (e RowErrors) Details() []string {
	out := make([]string, len(e))
	for i, re := range e {
		out[i] = re.Error()
	}
	return out
}
