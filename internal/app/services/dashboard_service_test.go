package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/analytics"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
)

func seedDashboard(env *testEnv) {
	env.addAlumni("1", map[string]any{"Major": "Data Science", "Company Name": "DataWorks", "Graduation Year": 2020, "Role": "Analyst"})
	env.addAlumni("2", map[string]any{"Major": "Data Science", "Company Name": "DataWorks", "Graduation Year": 2021, "Role": "Engineer"})
	env.addAlumni("3", map[string]any{"Major": "Law", "Company Name": "Bar & Co", "Graduation Year": 2021})
	env.addAlumni("4", map[string]any{"Major": "Law"})

	env.store.Put(docstore.CollectionEvents, "e1", map[string]any{"eventId": "EVT1", "eventTitle": "Gala", "location": "Ankara", "year": 2023, "totalAttendees": 2})
	env.store.Put(docstore.CollectionEvents, "e2", map[string]any{"eventId": "EVT2", "eventTitle": "Fair", "location": "Izmir", "year": 2024, "totalAttendees": 3})
	env.store.Put(docstore.CollectionEventAlumni, "l1", map[string]any{"eventId": "EVT1", "studentId": "1", "graduationYear": 2020})
	env.store.Put(docstore.CollectionEventAlumni, "l2", map[string]any{"eventId": "EVT1", "studentId": "2", "graduationYear": 2021})
	env.store.Put(docstore.CollectionEventAlumni, "l3", map[string]any{"eventId": "EVT2", "studentId": "2", "graduationYear": 2021})
}

func TestDashboard_Alumni(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedDashboard(env)
	svc := NewDashboardService(env.repos)

	all, err := svc.Alumni(ctx, analytics.AlumniFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, all.KPIs.TotalAlumni)

	law, err := svc.Alumni(ctx, analytics.AlumniFilter{Major: "Law"})
	require.NoError(t, err)
	assert.Equal(t, 2, law.KPIs.TotalAlumni)

	counts, err := svc.AlumniCounts(ctx, "Major")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[0].Count)
}

func TestDashboard_ForecastDefaultsToCompany(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedDashboard(env)
	svc := NewDashboardService(env.repos)

	points, err := svc.AlumniForecast(ctx, "")
	require.NoError(t, err)

	byCategory := map[string]analytics.ForecastPoint{}
	for _, p := range points {
		byCategory[p.Category] = p
	}
	assert.Equal(t, 1.15, byCategory["DataWorks"].Factor)
	assert.Equal(t, 2, byCategory["DataWorks"].Projected)
	assert.Equal(t, 1.05, byCategory["Bar & Co"].Factor)
	assert.Contains(t, byCategory, "Unknown")

	_, err = svc.AlumniForecast(ctx, "Salary")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestDashboard_EventsAndPredictions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedDashboard(env)
	svc := NewDashboardService(env.repos)

	dash, err := svc.Events(ctx, analytics.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, dash.KPIs.TotalEvents)
	assert.Equal(t, 5, dash.KPIs.TotalAttendees)
	assert.Equal(t, 2, dash.KPIs.UniqueAlumni)

	izmir, err := svc.Events(ctx, analytics.EventFilter{Location: "Izmir"})
	require.NoError(t, err)
	assert.Equal(t, 1, izmir.KPIs.TotalEvents)

	_, err = svc.Predictions(ctx)
	require.NoError(t, err)
}
