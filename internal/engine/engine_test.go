package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"finviz/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2023, 1, 20, 12, 0, 0, 0, time.UTC)

func rec(date *time.Time, category, amount string) core.Record {
	return core.Record{Date: date, Category: category, Amount: decimal.RequireFromString(amount)}
}

func sample() []core.Record {
	return []core.Record{
		rec(core.NewDate(2023, 1, 15), "Food", "45.99"),
		rec(core.NewDate(2023, 1, 18), "Transport", "32.50"),
	}
}

func TestAggregateAllCategories(t *testing.T) {
	res := Aggregate(sample(), core.DefaultFilter(), now)

	assert.Equal(t, []string{"Food", "Transport"}, res.Snapshot.Universe())
	assert.Equal(t, []float64{45.99, 32.5}, res.Charts.CategoryTotal.Series.Data)
	require.Len(t, res.Snapshot.Months, 1)
	assert.Equal(t, "2023-01", res.Snapshot.Months[0].Month)
	assert.True(t, res.Snapshot.Months[0].Total.Equal(decimal.RequireFromString("78.49")))
}

func TestAggregateSingleCategory(t *testing.T) {
	res := Aggregate(sample(), core.FilterState{TimeRange: core.RangeAll, Category: "Food"}, now)

	require.Equal(t, []string{"Food"}, res.Snapshot.Universe())
	stat, ok := res.Snapshot.Stat("Food")
	require.True(t, ok)
	assert.True(t, stat.Total.Equal(decimal.RequireFromString("45.99")))
	assert.Equal(t, 1, stat.Count)
	assert.True(t, stat.Average.Equal(decimal.RequireFromString("45.99")))
}

func TestUndatedExcludedFromBoundedRange(t *testing.T) {
	records := append(sample(), rec(nil, "Misc", "10"))

	week := Filter(records, core.FilterState{TimeRange: core.RangeWeek, Category: core.AllCategories}, now)
	for _, r := range week {
		assert.NotEqual(t, "Misc", r.Category)
	}
	assert.Len(t, week, 2)

	all := Filter(records, core.DefaultFilter(), now)
	assert.Len(t, all, 3)

	snap := Reduce(all)
	assert.Equal(t, 1, snap.Undated)
	require.Len(t, snap.Months, 1)
	assert.True(t, snap.Months[0].Total.Equal(decimal.RequireFromString("78.49")), "undated rows contribute to no bucket")
}

func TestAggregateEmpty(t *testing.T) {
	res := Aggregate(nil, core.FilterState{TimeRange: core.RangeMonth, Category: "Food"}, now)

	assert.True(t, res.Snapshot.Empty())
	assert.Empty(t, res.Charts.CategoryTotal.Labels)
	assert.Empty(t, res.Charts.Proportion.Values)
	assert.Empty(t, res.Charts.Trend.Labels)
	assert.Empty(t, res.Charts.VolumeCount.Points)
	assert.Empty(t, res.Charts.TotalAverage.Totals.Data)

	b, err := json.Marshal(res.Charts)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "null", "empty projections must encode as empty arrays")
}

func TestBubbleSizeUsesCount(t *testing.T) {
	var records []core.Record
	records = append(records, rec(core.NewDate(2023, 1, 2), "Once", "100"))
	for i := 0; i < 25; i++ {
		records = append(records, rec(core.NewDate(2023, 1, 3), "Often", "4"))
	}
	pts := Aggregate(records, core.DefaultFilter(), now).Charts.VolumeCount.Points
	require.Len(t, pts, 2)

	assert.Equal(t, pts[0].Y, pts[1].Y)
	assert.Greater(t, pts[1].R, pts[0].R)
	for _, p := range pts {
		assert.GreaterOrEqual(t, p.R, MinBubbleSize)
		assert.LessOrEqual(t, p.R, MaxBubbleSize)
	}
	assert.Equal(t, 0, pts[0].X)
	assert.Equal(t, 1, pts[1].X)
}

func TestBubbleSizeBoundsAndMonotonic(t *testing.T) {
	prev := 0.0
	for c := 0; c <= 500; c++ {
		r := BubbleSize(c)
		if r < MinBubbleSize || r > MaxBubbleSize {
			t.Fatalf("count %d: size %v out of bounds", c, r)
		}
		if r < prev {
			t.Fatalf("count %d: size %v decreased from %v", c, r, prev)
		}
		prev = r
	}
	assert.Equal(t, MaxBubbleSize, BubbleSize(1_000_000))
}

func TestFilterCutoffBoundary(t *testing.T) {
	at := time.Date(2023, 1, 13, 12, 0, 0, 0, time.UTC)
	before := at.Add(-time.Second)
	records := []core.Record{
		{Date: &at, Category: "A", Amount: decimal.NewFromInt(1)},
		{Date: &before, Category: "B", Amount: decimal.NewFromInt(1)},
	}
	got := Filter(records, core.FilterState{TimeRange: core.RangeWeek}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Category, "a record exactly at the cutoff is kept")
}

func TestCategoryMatchIsExact(t *testing.T) {
	records := []core.Record{
		rec(nil, "Food", "1"),
		rec(nil, "food", "2"),
		rec(nil, "Food ", "3"),
	}
	got := Filter(records, core.FilterState{TimeRange: core.RangeAll, Category: "Food"}, now)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Amount.String())
}

func TestNormalizeFailsOpen(t *testing.T) {
	records := sample()
	cases := []struct {
		name string
		in   core.FilterState
		want core.FilterState
	}{
		{"unknown range", core.FilterState{TimeRange: "decade", Category: "Food"}, core.FilterState{TimeRange: core.RangeAll, Category: "Food"}},
		{"stale category", core.FilterState{TimeRange: core.RangeWeek, Category: "Rent"}, core.FilterState{TimeRange: core.RangeWeek, Category: core.AllCategories}},
		{"empty category", core.FilterState{TimeRange: core.RangeYear}, core.FilterState{TimeRange: core.RangeYear, Category: core.AllCategories}},
		{"valid", core.FilterState{TimeRange: core.RangeMonth, Category: "Transport"}, core.FilterState{TimeRange: core.RangeMonth, Category: "Transport"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(records, tc.in))
		})
	}
}

func TestTrendSortedChronologically(t *testing.T) {
	records := []core.Record{
		rec(core.NewDate(2023, 3, 1), "A", "1"),
		rec(core.NewDate(2022, 12, 5), "A", "2"),
		rec(core.NewDate(2023, 1, 9), "B", "3"),
		rec(core.NewDate(2023, 3, 30), "B", "4"),
	}
	trend := Trend(Reduce(records))
	assert.Equal(t, []string{"2022-12", "2023-01", "2023-03"}, trend.Labels)
	assert.Equal(t, []float64{2, 3, 5}, trend.Series.Data)
}

func TestTotalAverageAligned(t *testing.T) {
	records := []core.Record{
		rec(nil, "B", "10"),
		rec(nil, "A", "3"),
		rec(nil, "B", "20"),
	}
	ta := TotalAverage(Reduce(records))
	assert.Equal(t, []string{"B", "A"}, ta.Labels)
	assert.Equal(t, []float64{30, 3}, ta.Totals.Data)
	assert.Equal(t, []float64{15, 3}, ta.Averages.Data)
}

func TestColorsStableAcrossFilters(t *testing.T) {
	records := append(sample(), rec(core.NewDate(2023, 1, 19), "Rent", "900"))

	all := Aggregate(records, core.DefaultFilter(), now)
	only := Aggregate(records, core.FilterState{TimeRange: core.RangeAll, Category: "Rent"}, now)

	require.Len(t, only.Charts.Proportion.Colors, 1)
	assert.Equal(t, all.Charts.Proportion.Colors[2], only.Charts.Proportion.Colors[0])

	again := Aggregate(records, core.DefaultFilter(), now)
	assert.Equal(t, all.Charts.Proportion.Colors, again.Charts.Proportion.Colors)
}

func TestColorsDistinct(t *testing.T) {
	seen := map[string]int{}
	for i := 0; i < 60; i++ {
		k := ColorAt(i)
		if j, ok := seen[k.Fill]; ok {
			t.Fatalf("colour %d repeats colour %d: %s", i, j, k.Fill)
		}
		seen[k.Fill] = i
	}
	assert.Equal(t, "rgba(79, 70, 229, 0.6)", ColorAt(0).Fill)
	assert.Equal(t, "rgba(79, 70, 229, 1)", ColorAt(0).Border)
}

func TestReduceInvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cats := []string{"Food", "Rent", "Transport", "Fun", "Health"}

	for iter := 0; iter < 50; iter++ {
		n := rng.Intn(200)
		records := make([]core.Record, n)
		for i := range records {
			var d *time.Time
			if rng.Intn(10) > 0 {
				d = core.NewDate(2022+rng.Intn(2), 1+rng.Intn(12), 1+rng.Intn(28))
			}
			amt := decimal.New(int64(rng.Intn(100000)-20000), -2)
			records[i] = core.Record{Date: d, Category: cats[rng.Intn(len(cats))], Amount: amt}
		}
		state := core.FilterState{
			TimeRange: core.TimeRanges()[rng.Intn(5)],
			Category:  append([]string{core.AllCategories}, cats...)[rng.Intn(len(cats)+1)],
		}
		filtered := Filter(records, state, now)
		snap := Reduce(filtered)

		seen := map[string]bool{}
		for _, c := range snap.Categories {
			require.False(t, seen[c.Category], "duplicate category %s", c.Category)
			seen[c.Category] = true

			total := decimal.Zero
			count := 0
			for _, r := range filtered {
				if r.Category == c.Category {
					total = total.Add(r.Amount)
					count++
				}
			}
			require.True(t, total.Equal(c.Total), "total mismatch for %s", c.Category)
			require.Equal(t, count, c.Count)
			require.True(t, c.Average.Equal(total.Div(decimal.NewFromInt(int64(count)))))
		}
		for _, r := range filtered {
			require.True(t, seen[r.Category], "category %s missing from universe", r.Category)
		}
		for i := 1; i < len(snap.Months); i++ {
			require.Less(t, snap.Months[i-1].Month, snap.Months[i].Month, fmt.Sprintf("iteration %d", iter))
		}
	}
}

func TestChartsGet(t *testing.T) {
	charts := Aggregate(sample(), core.DefaultFilter(), now).Charts
	for _, k := range ChartKinds() {
		_, ok := charts.Get(k)
		assert.True(t, ok, string(k))
	}
	_, ok := ParseChartKind("scatter")
	assert.False(t, ok)
	k, ok := ParseChartKind("radar")
	assert.True(t, ok)
	assert.Equal(t, KindTotalAverage, k)
}

func TestSnapshotAverageIsTotalOverCount(t *testing.T) {
	records := []core.Record{
		rec(nil, "A", "10"),
		rec(nil, "A", "0"),
		rec(nil, "A", "0.005"),
		rec(nil, "B", "10"),
		rec(nil, "B", "0"),
		rec(nil, "B", "0"),
	}
	res := Aggregate(records, core.DefaultFilter(), now)

	b, err := json.Marshal(res.Snapshot)
	require.NoError(t, err)
	var out struct {
		Categories []struct {
			Category string      `json:"category"`
			Total    json.Number `json:"total"`
			Count    int         `json:"count"`
			Average  json.Number `json:"average"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Len(t, out.Categories, 2)

	for i, c := range out.Categories {
		total := decimal.RequireFromString(c.Total.String())
		want := total.Div(decimal.NewFromInt(int64(c.Count)))
		assert.Equal(t, want.String(), c.Average.String(), "category %s", c.Category)

		avg, err := c.Average.Float64()
		require.NoError(t, err)
		assert.Equal(t, res.Charts.TotalAverage.Averages.Data[i], avg, "snapshot and radar agree for %s", c.Category)
	}
	assert.Equal(t, "3.335", out.Categories[0].Average.String())
}

func TestFilterIdentityUnderAll(t *testing.T) {
	records := append(sample(),
		rec(nil, "Misc", "3"),
		rec(core.NewDate(2001, 6, 1), "Food", "-2.5"),
	)
	got := Filter(records, core.DefaultFilter(), now)
	assert.Equal(t, records, got)
}

func TestAggregateIdempotent(t *testing.T) {
	records := append(sample(),
		rec(nil, "Misc", "3"),
		rec(core.NewDate(2023, 1, 19), "Food", "1.01"),
	)
	states := []core.FilterState{
		core.DefaultFilter(),
		{TimeRange: core.RangeWeek, Category: core.AllCategories},
		{TimeRange: core.RangeAll, Category: "Food"},
	}
	for _, state := range states {
		first := Aggregate(records, state, now)
		second := Aggregate(records, state, now)
		assert.Equal(t, first, second, "state %+v", state)
	}
}
