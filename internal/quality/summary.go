package quality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics over the finite values of a series.
// Statistic fields are zero when Count is zero.
type Summary struct {
	Constellation Constellation `json:"const"`
	Count         int           `json:"count"`
	Missing       int           `json:"missing"`
	Mean          float64       `json:"mean"`
	StdDev        float64       `json:"std_dev"`
	Min           float64       `json:"min"`
	Max           float64       `json:"max"`
	Median        float64       `json:"median"`
}

// Summarize computes a Summary for the given series.
func Summarize(s Series) Summary {
	sum := Summary{Constellation: s.Constellation}
	values := make([]float64, 0, len(s.Points))
	for _, p := range s.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			sum.Missing++
			continue
		}
		values = append(values, p.Value)
	}
	sum.Count = len(values)
	if sum.Count == 0 {
		return sum
	}

	sum.Min = floats.Min(values)
	sum.Max = floats.Max(values)
	if sum.Count > 1 {
		sum.Mean, sum.StdDev = stat.MeanStdDev(values, nil)
	} else {
		sum.Mean = values[0]
	}

	sort.Float64s(values)
	sum.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	return sum
}

// Summaries returns one Summary per series, in Series order.
func (f FilteredTable) Summaries() []Summary {
	series := f.Series()
	out := make([]Summary, 0, len(series))
	for _, s := range series {
		out = append(out, Summarize(s))
	}
	return out
}
