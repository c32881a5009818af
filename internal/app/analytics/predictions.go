package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/yigit/alumnidesk/internal/app/models"
)

// Projection factors for graduation batches
const (
	RecentBatchGrowth = 1.25
	OlderBatchGrowth  = 1.08
)

// LocationSeries is the per-year attendance of one location and its
// next-year projection
type LocationSeries struct {
	Location string `json:"location"`
	History  []int  `json:"history"`
	Next     int    `json:"next"`
}

// LocationPrediction projects the top three locations one year ahead
type LocationPrediction struct {
	Years     []int            `json:"years"`
	NextYear  int              `json:"nextYear,omitempty"`
	Series    []LocationSeries `json:"series"`
	Narrative string           `json:"narrative"`
}

// BatchForecast is one graduation year's current and projected attendance
type BatchForecast struct {
	GraduationYear int `json:"graduationYear"`
	Current        int `json:"current"`
	Projected      int `json:"projected"`
}

// BatchPrediction projects attendance per graduation batch
type BatchPrediction struct {
	Batches   []BatchForecast `json:"batches"`
	Narrative string          `json:"narrative"`
}

// YearValue pairs a year with a (possibly fractional) attendance
type YearValue struct {
	Year      int     `json:"year"`
	Attendees float64 `json:"attendees"`
}

// ParticipationPrediction projects total attendance three years ahead
type ParticipationPrediction struct {
	History       []YearValue `json:"history"`
	YearOverYear  []YearValue `json:"yearOverYear"`
	AverageGrowth float64     `json:"averageGrowth"`
	Forecast      []YearValue `json:"forecast"`
	Narrative     string      `json:"narrative"`
}

// Predictions is the payload of the predictions endpoint
type Predictions struct {
	Locations         LocationPrediction      `json:"locations"`
	GraduationBatches BatchPrediction         `json:"graduationBatches"`
	Participation     ParticipationPrediction `json:"participation"`
}

// BuildPredictions computes all three projections over unfiltered data
func BuildPredictions(events []models.EventSummary, links []models.EventAlumniLink) Predictions {
	years := eventYears(events)
	return Predictions{
		Locations:         PredictLocations(events, years),
		GraduationBatches: PredictBatches(links, len(years) > 0),
		Participation:     PredictParticipation(events, years),
	}
}

func eventYears(events []models.EventSummary) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, e := range events {
		if _, ok := seen[e.Year]; !ok {
			seen[e.Year] = struct{}{}
			years = append(years, e.Year)
		}
	}
	sort.Ints(years)
	return years
}

// PredictLocations ranks locations by total attendance and extrapolates the
// last year-on-year change: next = max(0, last + (last - previous)).
func PredictLocations(events []models.EventSummary, years []int) LocationPrediction {
	if len(years) == 0 {
		return LocationPrediction{Narrative: "Not enough data to generate location-based prediction."}
	}

	yearIdx := make(map[int]int, len(years))
	for i, y := range years {
		yearIdx[y] = i
	}
	var order []string
	series := make(map[string][]int)
	totals := make(map[string]int)
	for _, e := range events {
		if _, ok := series[e.Location]; !ok {
			series[e.Location] = make([]int, len(years))
			order = append(order, e.Location)
		}
		series[e.Location][yearIdx[e.Year]] += e.TotalAttendees
		totals[e.Location] += e.TotalAttendees
	}
	sort.SliceStable(order, func(i, j int) bool { return totals[order[i]] > totals[order[j]] })
	if len(order) > 3 {
		order = order[:3]
	}

	pred := LocationPrediction{Years: years, NextYear: years[len(years)-1] + 1}
	for _, loc := range order {
		base := series[loc]
		last := base[len(base)-1]
		prev := last
		if len(base) > 1 {
			prev = base[len(base)-2]
		}
		next := last + (last - prev)
		if next < 0 {
			next = 0
		}
		pred.Series = append(pred.Series, LocationSeries{Location: loc, History: base, Next: next})
	}

	if len(pred.Series) == 0 {
		pred.Narrative = "Location-based participation is evenly distributed without a clear dominant city."
		return pred
	}
	lead := pred.Series[0]
	last := lead.History[len(lead.History)-1]
	diff := lead.Next - last
	pct := 0.0
	if last > 0 {
		pct = float64(diff) / float64(last) * 100
	}
	pred.Narrative = fmt.Sprintf("%s is projected to attract around %d attendees next year, up by %d compared to the latest year (~%.1f%% growth).",
		lead.Location, lead.Next, diff, pct)
	if len(pred.Series) > 1 {
		pred.Narrative += fmt.Sprintf(" %s is also expected to perform well, with similar but slightly lower turnout.", pred.Series[1].Location)
	}
	return pred
}

// PredictBatches counts links per graduation year and boosts the two newest
// batches by 1.25 and older ones by 1.08. Links without a year are ignored.
func PredictBatches(links []models.EventAlumniLink, haveEvents bool) BatchPrediction {
	if !haveEvents {
		return BatchPrediction{Narrative: "Not enough data to generate graduation batch prediction."}
	}

	counts := make(map[int]int)
	for _, l := range links {
		if l.HasGraduationYear() {
			counts[l.GraduationYear]++
		}
	}
	if len(counts) == 0 {
		return BatchPrediction{Narrative: "Graduation year data is not available for prediction."}
	}

	gradYears := make([]int, 0, len(counts))
	for y := range counts {
		gradYears = append(gradYears, y)
	}
	sort.Ints(gradYears)
	newest := gradYears[len(gradYears)-1]

	pred := BatchPrediction{}
	best := -1
	for _, y := range gradYears {
		factor := OlderBatchGrowth
		if y >= newest-1 {
			factor = RecentBatchGrowth
		}
		f := BatchForecast{GraduationYear: y, Current: counts[y], Projected: round(float64(counts[y]) * factor)}
		pred.Batches = append(pred.Batches, f)
		if best < 0 || f.Projected > pred.Batches[best].Projected {
			best = len(pred.Batches) - 1
		}
	}

	top := pred.Batches[best]
	diff := top.Projected - top.Current
	pct := 0.0
	if top.Current > 0 {
		pct = float64(diff) / float64(top.Current) * 100
	}
	pred.Narrative = fmt.Sprintf("Graduates from %d are projected to be the most active batch next year with roughly %d expected participants, an increase of about %d compared to current levels (~%.1f%% growth).",
		top.GraduationYear, top.Projected, diff, pct)
	return pred
}

// PredictParticipation projects total attendance three years ahead using the
// average year-on-year change, floored at zero.
func PredictParticipation(events []models.EventSummary, years []int) ParticipationPrediction {
	if len(years) == 0 {
		return ParticipationPrediction{Narrative: "Not enough data to generate overall participation forecast."}
	}

	totals := make(map[int]int)
	for _, e := range events {
		totals[e.Year] += e.TotalAttendees
	}

	pred := ParticipationPrediction{}
	var sum float64
	for i, y := range years {
		pred.History = append(pred.History, YearValue{Year: y, Attendees: float64(totals[y])})
		if i > 0 {
			change := float64(totals[y] - totals[years[i-1]])
			pred.YearOverYear = append(pred.YearOverYear, YearValue{Year: y, Attendees: change})
			sum += change
		}
	}
	if n := len(pred.YearOverYear); n > 0 {
		pred.AverageGrowth = sum / float64(n)
	}

	lastYear := years[len(years)-1]
	current := float64(totals[lastYear])
	value := current
	for i := 1; i <= 3; i++ {
		value = math.Max(0, value+pred.AverageGrowth)
		pred.Forecast = append(pred.Forecast, YearValue{Year: lastYear + i, Attendees: value})
	}

	next := pred.Forecast[0].Attendees
	diff := next - current
	pct, avgPct := 0.0, 0.0
	if current > 0 {
		pct = diff / current * 100
		avgPct = (pred.Forecast[2].Attendees - current) / current * 100 / 3
	}
	pred.Narrative = fmt.Sprintf("Overall alumni participation is forecasted to reach about %d attendees in %d, which is roughly %d more than the latest year (~%.1f%% growth). Across the next three years, the projected average annual growth rate is around %.1f%%.",
		round(next), lastYear+1, round(diff), pct, avgPct)
	return pred
}
