package engine

import (
	"encoding/json"
	"sort"

	"finviz/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// CategoryStat aggregates the records of one category.
	CategoryStat struct {
		Category string
		Total    decimal.Decimal
		Count    int
		Average  decimal.Decimal
	}

	// MonthBucket is the summed amount of the dated records of one calendar month.
	MonthBucket struct {
		Month string
		Total decimal.Decimal
	}

	// Snapshot is the grouped view of a filtered record set. Categories follow
	// first-occurrence order, Months ascend by key.
	Snapshot struct {
		Categories []CategoryStat
		Months     []MonthBucket
		Records    int
		Undated    int
	}
)

// Reduce groups records by category and by calendar month.
func Reduce(records []core.Record) Snapshot {
	index := make(map[string]int, 16)
	cats := make([]CategoryStat, 0, 16)
	monthTotals := make(map[string]decimal.Decimal, 12)
	undated := 0

	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(cats)
			index[r.Category] = i
			cats = append(cats, CategoryStat{Category: r.Category, Total: decimal.Zero})
		}
		cats[i].Total = cats[i].Total.Add(r.Amount)
		cats[i].Count++

		key, dated := r.MonthKey()
		if !dated {
			undated++
			continue
		}
		monthTotals[key] = monthTotals[key].Add(r.Amount)
	}

	for i := range cats {
		// Count is at least one for every category that reached the universe.
		cats[i].Average = cats[i].Total.Div(decimal.NewFromInt(int64(cats[i].Count)))
	}

	months := make([]MonthBucket, 0, len(monthTotals))
	for k, v := range monthTotals {
		months = append(months, MonthBucket{Month: k, Total: v})
	}
	sort.Slice(months, func(a, b int) bool { return months[a].Month < months[b].Month })

	return Snapshot{
		Categories: cats,
		Months:     months,
		Records:    len(records),
		Undated:    undated,
	}
}

// Universe returns the category labels in snapshot order.
func (s Snapshot) Universe() []string {
	out := make([]string, len(s.Categories))
	for i, c := range s.Categories {
		out[i] = c.Category
	}
	return out
}

// Empty reports whether the snapshot was built from no records.
func (s Snapshot) Empty() bool {
	return s.Records == 0
}

// GrandTotal sums every category total.
func (s Snapshot) GrandTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, c := range s.Categories {
		sum = sum.Add(c.Total)
	}
	return sum
}

// Stat returns the aggregate for category.
func (s Snapshot) Stat(category string) (CategoryStat, bool) {
	for _, c := range s.Categories {
		if c.Category == category {
			return c, true
		}
	}
	return CategoryStat{}, false
}

func (c CategoryStat) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category string      `json:"category"`
		Total    json.Number `json:"total"`
		Count    int         `json:"count"`
		Average  json.Number `json:"average"`
	}{c.Category, number(c.Total), c.Count, number(c.Average)})
}

func (m MonthBucket) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Month string      `json:"month"`
		Total json.Number `json:"total"`
	}{m.Month, number(m.Total)})
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Categories []CategoryStat `json:"categories"`
		Months     []MonthBucket  `json:"months"`
		Records    int            `json:"records"`
		Undated    int            `json:"undated"`
		GrandTotal json.Number    `json:"grand_total"`
	}{s.Categories, s.Months, s.Records, s.Undated, number(s.GrandTotal())})
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
