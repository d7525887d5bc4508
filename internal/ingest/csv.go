package ingest

import (
	"bufio"
	"encoding/csv"
	"io"

	"finviz/internal/core"
)

// ParseCSV decodes comma separated records. A leading UTF-8 BOM is ignored.
func ParseCSV(r io.Reader) ([]core.Record, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && string(b) == "\xef\xbb\xbf" {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	return decode(cr.Read, core.ParseDate)
}
