package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func alumni() []models.AlumniRecord {
	return []models.AlumniRecord{
		{StudentID: "1", Major: "Computer Science", CompanyName: "DataWorks", Role: "Engineer", GraduationYear: 2020},
		{StudentID: "2", Major: "Computer Science", CompanyName: "Acme", Role: "Analyst", GraduationYear: 2021},
		{StudentID: "3", Major: "History", CompanyName: "", Role: "Engineer", GraduationYear: 2021},
		{StudentID: "4", Major: "", CompanyName: "Acme", Role: "", GraduationYear: 0},
	}
}

func TestCountBy_BlankIsUnknown(t *testing.T) {
	counts, err := CountAlumniBy(alumni(), models.FieldMajor)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Computer Science": 2, "History": 1, UnknownKey: 1}, counts)

	_, err = CountAlumniBy(alumni(), "Shoe Size")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestForecast_KeywordFactor(t *testing.T) {
	points := Forecast(map[string]int{"DataWorks": 20, "Acme": 10, "OpenAI Labs": 3})
	require.Len(t, points, 3)

	byName := map[string]ForecastPoint{}
	for _, p := range points {
		byName[p.Category] = p
	}
	assert.Equal(t, 23, byName["DataWorks"].Projected)
	assert.Equal(t, 11, byName["Acme"].Projected)
	assert.Equal(t, 3, byName["OpenAI Labs"].Projected)
	assert.Equal(t, KeywordGrowth, byName["OpenAI Labs"].Factor)
	assert.Equal(t, "DataWorks", points[0].Category)
}

func TestGrowthFactor_IsCaseInsensitive(t *testing.T) {
	assert.Equal(t, KeywordGrowth, GrowthFactor("BIG DATA Inc"))
	assert.Equal(t, KeywordGrowth, GrowthFactor("Email Co"))
	assert.Equal(t, DefaultGrowth, GrowthFactor("History"))
}

func TestBuildAlumniDashboard_Filters(t *testing.T) {
	dash := BuildAlumniDashboard(alumni(), AlumniFilter{Year: "2021"}, 5)

	assert.Equal(t, 2, dash.KPIs.TotalAlumni)
	assert.Equal(t, 2, dash.KPIs.Majors)
	assert.Equal(t, 2, dash.KPIs.Roles)
	assert.Equal(t, []Count{{Key: "2021", Count: 2}}, dash.ByGraduationYear)
	assert.Equal(t, 1, dash.RolesByMajor["History"]["Engineer"])
	assert.Equal(t, []string{"2020", "2021"}, dash.Options.Years)
	assert.Equal(t, []string{"Computer Science", "History"}, dash.Options.Majors)
}

func TestBuildAlumniDashboard_UnknownYearSortsLast(t *testing.T) {
	dash := BuildAlumniDashboard(alumni(), AlumniFilter{}, 1)

	require.Len(t, dash.ByGraduationYear, 3)
	assert.Equal(t, UnknownKey, dash.ByGraduationYear[2].Key)
	require.Len(t, dash.TopCompanies, 1)
	assert.Equal(t, Count{Key: "Acme", Count: 2}, dash.TopCompanies[0])
}

func events() ([]models.EventSummary, []models.EventAlumniLink) {
	evs := []models.EventSummary{
		{EventID: "E1", Title: "Gala", Location: "Ankara", Year: 2022, TotalAttendees: 100, TotalSpeakers: 5, TotalVolunteers: 10},
		{EventID: "E2", Title: "Meetup", Location: "Izmir", Year: 2023, TotalAttendees: 40, TotalSpeakers: 2, TotalVolunteers: 4},
		{EventID: "E3", Title: "Homecoming", Location: "Ankara", Year: 2023, TotalAttendees: 130, TotalSpeakers: 6, TotalVolunteers: 13},
	}
	links := []models.EventAlumniLink{
		{EventID: "E1", StudentID: "1", GraduationYear: 2020},
		{EventID: "E1", StudentID: "2", GraduationYear: 2021},
		{EventID: "E2", StudentID: "1", GraduationYear: 2020},
		{EventID: "E3", StudentID: "3", GraduationYear: 2022},
		{EventID: "E3", StudentID: "3", GraduationYear: 2022},
		{EventID: "E3", StudentID: "4"},
	}
	return evs, links
}

func TestBuildEventsDashboard(t *testing.T) {
	evs, links := events()

	dash := BuildEventsDashboard(evs, links, EventFilter{})
	assert.Equal(t, 3, dash.KPIs.TotalEvents)
	assert.Equal(t, 270, dash.KPIs.TotalAttendees)
	assert.Equal(t, 4, dash.KPIs.UniqueAlumni)
	assert.Equal(t, "Homecoming (130)", dash.KPIs.TopEvent)
	assert.Equal(t, Participation{Attendees: 270, Speakers: 13, Volunteers: 27}, dash.Participation)
	assert.Equal(t, []Count{{Key: "Ankara", Count: 2}, {Key: "Izmir", Count: 1}}, dash.EventsByLocation)
	assert.Equal(t, []int{2020, 2021, 2022}, dash.Options.GraduationYears)
	require.Len(t, dash.ByYear, 2)
	assert.Equal(t, YearStats{Year: 2023, Events: 2, Attendees: 170, Speakers: 8, Volunteers: 17}, dash.ByYear[1])

	filtered := BuildEventsDashboard(evs, links, EventFilter{GraduationYear: 2020})
	assert.Equal(t, 2, filtered.KPIs.TotalEvents)
	assert.Equal(t, "Gala (100)", filtered.KPIs.TopEvent)

	empty := BuildEventsDashboard(evs, links, EventFilter{Location: "Nowhere"})
	assert.Equal(t, "-", empty.KPIs.TopEvent)
}

func TestPredictions(t *testing.T) {
	evs, links := events()
	pred := BuildPredictions(evs, links)

	require.Len(t, pred.Locations.Series, 2)
	assert.Equal(t, 2024, pred.Locations.NextYear)
	assert.Equal(t, LocationSeries{Location: "Ankara", History: []int{100, 130}, Next: 160}, pred.Locations.Series[0])
	assert.Equal(t, 80, pred.Locations.Series[1].Next)
	assert.Contains(t, pred.Locations.Narrative, "Ankara is projected to attract around 160 attendees")

	// newest batch 2022 and 2021 get 1.25, 2020 gets 1.08
	assert.Equal(t, []BatchForecast{
		{GraduationYear: 2020, Current: 2, Projected: 2},
		{GraduationYear: 2021, Current: 1, Projected: 1},
		{GraduationYear: 2022, Current: 2, Projected: 3},
	}, pred.GraduationBatches.Batches)
	assert.Contains(t, pred.GraduationBatches.Narrative, "Graduates from 2022")

	assert.InDelta(t, 70.0, pred.Participation.AverageGrowth, 0.001)
	require.Len(t, pred.Participation.Forecast, 3)
	assert.Equal(t, YearValue{Year: 2026, Attendees: 380}, pred.Participation.Forecast[2])
}

func TestPredictions_NoData(t *testing.T) {
	pred := BuildPredictions(nil, nil)
	assert.Contains(t, pred.Locations.Narrative, "Not enough data")
	assert.Contains(t, pred.GraduationBatches.Narrative, "Not enough data")
	assert.Contains(t, pred.Participation.Narrative, "Not enough data")
}

func TestPredictLocations_FloorsAtZero(t *testing.T) {
	evs := []models.EventSummary{
		{Location: "Bursa", Year: 2021, TotalAttendees: 100},
		{Location: "Bursa", Year: 2022, TotalAttendees: 20},
	}
	pred := PredictLocations(evs, []int{2021, 2022})
	require.Len(t, pred.Series, 1)
	assert.Equal(t, 0, pred.Series[0].Next)
}
