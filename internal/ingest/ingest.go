// Package ingest decodes uploaded tabular files into transaction records.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"finviz/internal/core"
)

// Format is a supported upload file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat maps a file name to its format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q (expected .csv or .xlsx)", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseFile decodes r according to the extension of name.
func ParseFile(name string, r io.Reader) ([]core.Record, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return ParseCSV(r)
	}
}

// ParseRows decodes an in-memory table whose first non-blank row is the header.
func ParseRows(rows [][]string) ([]core.Record, error) {
	i := 0
	return decode(func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		i++
		return rows[i-1], nil
	}, core.ParseDate)
}

// nextRowFunc yields successive rows and io.EOF when exhausted.
type nextRowFunc func() ([]string, error)

type dateParser func(string) (*time.Time, error)

func decode(next nextRowFunc, parseDate dateParser) ([]core.Record, error) {
	var (
		header []string
		line   int
	)
	for header == nil {
		row, err := next()
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read header: %w", ErrMalformedFile, err)
		}
		line++
		if !blank(row) {
			header = row
		}
	}

	cols, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	var (
		records []core.Record
		rowErrs RowErrors
	)
	for {
		row, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: read line %d: %w", ErrMalformedFile, line, err)
		}
		if blank(row) {
			continue
		}

		rec, errs := decodeRow(row, cols, line, parseDate)
		if len(errs) > 0 {
			rowErrs = append(rowErrs, errs...)
			continue
		}
		records = append(records, rec)
	}

	if len(rowErrs) > 0 {
		return nil, rowErrs
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

func decodeRow(row []string, cols columns, line int, parseDate dateParser) (core.Record, []RowError) {
	var errs []RowError

	date, err := parseDate(cell(row, cols.date))
	if err != nil {
		errs = append(errs, RowError{Line: line, Column: ColumnDate, Err: fmt.Errorf("%w: %q", err, cell(row, cols.date))})
	}
	amount, err := core.ParseAmount(cell(row, cols.amount))
	if err != nil {
		errs = append(errs, RowError{Line: line, Column: ColumnAmount, Err: fmt.Errorf("%w: %q", err, cell(row, cols.amount))})
	}
	rec := core.Record{Date: date, Category: cell(row, cols.category), Amount: amount}
	if err := rec.Validate(); err != nil {
		errs = append(errs, RowError{Line: line, Column: ColumnCategory, Err: err})
	}
	return rec, errs
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
