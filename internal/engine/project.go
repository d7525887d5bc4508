package engine

import (
	"math"
)

// ChartKind names one of the projections.
type ChartKind string

const (
	KindCategoryTotal ChartKind = "bar"
	KindProportion    ChartKind = "pie"
	KindTrend         ChartKind = "line"
	KindVolumeCount   ChartKind = "bubble"
	KindTotalAverage  ChartKind = "radar"
)

// ChartKinds lists every projection in a stable order.
func ChartKinds() []ChartKind {
	return []ChartKind{KindCategoryTotal, KindProportion, KindTrend, KindVolumeCount, KindTotalAverage}
}

// ParseChartKind reports whether s names a projection.
func ParseChartKind(s string) (ChartKind, bool) {
	for _, k := range ChartKinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

const (
	MinBubbleSize = 5.0
	MaxBubbleSize = 20.0
)

type (
	Series struct {
		Label string    `json:"label"`
		Data  []float64 `json:"data"`
	}

	CategoryTotalChart struct {
		Labels []string `json:"labels"`
		Series Series   `json:"series"`
	}

	ProportionChart struct {
		Labels []string    `json:"labels"`
		Values []float64   `json:"values"`
		Colors []VisualKey `json:"colors"`
	}

	TrendChart struct {
		Labels []string `json:"labels"`
		Series Series   `json:"series"`
	}

	BubblePoint struct {
		Label string    `json:"label"`
		X     int       `json:"x"`
		Y     float64   `json:"y"`
		R     float64   `json:"r"`
		Count int       `json:"count"`
		Color VisualKey `json:"color"`
	}

	VolumeCountChart struct {
		Labels []string      `json:"labels"`
		Points []BubblePoint `json:"points"`
	}

	TotalAverageChart struct {
		Labels   []string `json:"labels"`
		Totals   Series   `json:"totals"`
		Averages Series   `json:"averages"`
	}

	// Charts holds the five projections of one snapshot.
	Charts struct {
		CategoryTotal CategoryTotalChart `json:"bar"`
		Proportion    ProportionChart    `json:"pie"`
		Trend         TrendChart         `json:"line"`
		VolumeCount   VolumeCountChart   `json:"bubble"`
		TotalAverage  TotalAverageChart  `json:"radar"`
	}
)

// ProjectWithPalette builds every chart of s using p for category colours.
func ProjectWithPalette(s Snapshot, p Palette) Charts {
	return Charts{
		CategoryTotal: CategoryTotal(s),
		Proportion:    Proportion(s, p),
		Trend:         Trend(s),
		VolumeCount:   VolumeCount(s, p),
		TotalAverage:  TotalAverage(s),
	}
}

// Get returns the projection named kind.
func (c Charts) Get(kind ChartKind) (any, bool) {
	switch kind {
	case KindCategoryTotal:
		return c.CategoryTotal, true
	case KindProportion:
		return c.Proportion, true
	case KindTrend:
		return c.Trend, true
	case KindVolumeCount:
		return c.VolumeCount, true
	case KindTotalAverage:
		return c.TotalAverage, true
	}
	return nil, false
}

func CategoryTotal(s Snapshot) CategoryTotalChart {
	labels := s.Universe()
	data := make([]float64, len(s.Categories))
	for i, c := range s.Categories {
		data[i] = c.Total.InexactFloat64()
	}
	return CategoryTotalChart{
		Labels: labels,
		Series: Series{Label: "Total Amount", Data: data},
	}
}

func Proportion(s Snapshot, p Palette) ProportionChart {
	values := make([]float64, len(s.Categories))
	colors := make([]VisualKey, len(s.Categories))
	for i, c := range s.Categories {
		values[i] = c.Total.InexactFloat64()
		colors[i] = p.Key(c.Category, i)
	}
	return ProportionChart{
		Labels: s.Universe(),
		Values: values,
		Colors: colors,
	}
}

func Trend(s Snapshot) TrendChart {
	labels := make([]string, len(s.Months))
	data := make([]float64, len(s.Months))
	for i, m := range s.Months {
		labels[i] = m.Month
		data[i] = m.Total.InexactFloat64()
	}
	return TrendChart{
		Labels: labels,
		Series: Series{Label: "Monthly Spending", Data: data},
	}
}

func VolumeCount(s Snapshot, p Palette) VolumeCountChart {
	points := make([]BubblePoint, len(s.Categories))
	for i, c := range s.Categories {
		points[i] = BubblePoint{
			Label: c.Category,
			X:     i,
			Y:     c.Total.InexactFloat64(),
			R:     BubbleSize(c.Count),
			Count: c.Count,
			Color: p.Key(c.Category, i),
		}
	}
	return VolumeCountChart{
		Labels: s.Universe(),
		Points: points,
	}
}

func TotalAverage(s Snapshot) TotalAverageChart {
	totals := make([]float64, len(s.Categories))
	averages := make([]float64, len(s.Categories))
	for i, c := range s.Categories {
		totals[i] = c.Total.InexactFloat64()
		averages[i] = c.Average.InexactFloat64()
	}
	return TotalAverageChart{
		Labels:   s.Universe(),
		Totals:   Series{Label: "Total", Data: totals},
		Averages: Series{Label: "Average", Data: averages},
	}
}

// BubbleSize maps a transaction count to a radius in [MinBubbleSize, MaxBubbleSize].
// The mapping is concave and non-decreasing in count.
func BubbleSize(count int) float64 {
	if count < 0 {
		count = 0
	}
	r := 2 * math.Sqrt(float64(count))
	return math.Min(MaxBubbleSize, math.Max(MinBubbleSize, r))
}
