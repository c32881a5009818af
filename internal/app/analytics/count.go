// Package analytics computes dashboard aggregations and naive forecasts over
// record sets that callers have already fetched. Nothing here touches the
// store.
package analytics

import (
	"math"
	"sort"
	"strings"
)

// UnknownKey replaces missing or blank values in counts
const UnknownKey = "Unknown"

// Count is one category of a countBy result
type Count struct {
	Key   string `json:"key" example:"Computer Science"`
	Count int    `json:"count" example:"42"`
}

// CountBy groups items by the text key returns. Blank keys count as Unknown.
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		k := strings.TrimSpace(key(item))
		if k == "" {
			k = UnknownKey
		}
		counts[k]++
	}
	return counts
}

// ByCount orders counts largest first, ties broken by key
func ByCount(counts map[string]int) []Count {
	out := toSlice(counts)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// ByKey orders counts by key with Unknown last
func ByKey(counts map[string]int) []Count {
	out := toSlice(counts)
	sort.Slice(out, func(i, j int) bool {
		if (out[i].Key == UnknownKey) != (out[j].Key == UnknownKey) {
			return out[j].Key == UnknownKey
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// TopN returns the n largest categories
func TopN(counts map[string]int, n int) []Count {
	out := ByCount(counts)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func toSlice(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for k, v := range counts {
		out = append(out, Count{Key: k, Count: v})
	}
	return out
}

// Growth factors applied by Forecast
const (
	KeywordGrowth = 1.15
	DefaultGrowth = 1.05
)

var growthKeywords = []string{"ai", "data"}

// GrowthFactor is 1.15 when the lower-cased category contains a growth
// keyword, 1.05 otherwise
func GrowthFactor(category string) float64 {
	lower := strings.ToLower(category)
	for _, kw := range growthKeywords {
		if strings.Contains(lower, kw) {
			return KeywordGrowth
		}
	}
	return DefaultGrowth
}

// ForecastPoint is one category's current and projected count
type ForecastPoint struct {
	Category  string  `json:"category" example:"Data Science"`
	Current   int     `json:"current" example:"20"`
	Factor    float64 `json:"factor" example:"1.15"`
	Projected int     `json:"projected" example:"23"`
}

// Forecast multiplies every category's count by its growth factor and rounds
// to the nearest integer. Output is ordered like ByCount.
func Forecast(counts map[string]int) []ForecastPoint {
	sorted := ByCount(counts)
	out := make([]ForecastPoint, 0, len(sorted))
	for _, c := range sorted {
		factor := GrowthFactor(c.Key)
		out = append(out, ForecastPoint{
			Category:  c.Key,
			Current:   c.Count,
			Factor:    factor,
			Projected: int(math.Round(float64(c.Count) * factor)),
		})
	}
	return out
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func distinctInts(values []int) []int {
	seen := make(map[int]struct{}, len(values))
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v == 0 {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
