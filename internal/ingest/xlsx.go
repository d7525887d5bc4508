package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"finviz/internal/core"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX decodes the first worksheet of a workbook.
// Date cells may be text or spreadsheet serial numbers.
func ParseXLSX(r io.Reader) ([]core.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %w", ErrMalformedFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrMalformedFile, sheets[0], err)
	}
	defer rows.Close()

	next := func() ([]string, error) {
		if !rows.Next() {
			if err := rows.Error(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return rows.Columns(excelize.Options{RawCellValue: true})
	}
	return decode(next, parseSheetDate)
}

func parseSheetDate(s string) (*time.Time, error) {
	d, err := core.ParseDate(s)
	if err == nil {
		return d, nil
	}
	serial, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if perr != nil || serial <= 0 {
		return nil, err
	}
	t, terr := excelize.ExcelDateToTime(serial, false)
	if terr != nil {
		return nil, err
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}
