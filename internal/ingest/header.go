package ingest

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	ColumnDate     = "Date"
	ColumnCategory = "Category"
	ColumnAmount   = "Amount"
)

// RequiredColumns lists the header cells every source must provide.
var RequiredColumns = []string{ColumnDate, ColumnCategory, ColumnAmount}

// maxSuggestDistance bounds how different a header cell may be to be offered as a fix.
const maxSuggestDistance = 2

type columns struct {
	date     int
	category int
	amount   int
}

// mapHeader locates the required columns in header. Matching ignores case
// and surrounding whitespace; column order and extra columns are free.
func mapHeader(header []string) (columns, error) {
	pos := make(map[string]int, len(RequiredColumns))
	used := make(map[int]bool, len(header))
	for i, cell := range header {
		name := normalizeHeader(cell)
		for _, want := range RequiredColumns {
			if _, done := pos[want]; done {
				continue
			}
			if name == strings.ToLower(want) {
				pos[want] = i
				used[i] = true
			}
		}
	}

	var missing []string
	for _, want := range RequiredColumns {
		if _, ok := pos[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return columns{}, &HeaderError{
			Missing:     missing,
			Suggestions: suggest(missing, header, used),
		}
	}
	return columns{date: pos[ColumnDate], category: pos[ColumnCategory], amount: pos[ColumnAmount]}, nil
}

func suggest(missing, header []string, used map[int]bool) map[string]string {
	out := map[string]string{}
	for _, want := range missing {
		best, bestDist := -1, maxSuggestDistance+1
		for i, cell := range header {
			if used[i] || strings.TrimSpace(cell) == "" {
				continue
			}
			d := levenshtein.ComputeDistance(strings.ToLower(want), normalizeHeader(cell))
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 {
			out[want] = strings.TrimSpace(header[best])
			used[best] = true
		}
	}
	return out
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}
