package services

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/events"
)

func newRequests(env *testEnv) *requestServiceImpl {
	return NewRequestService(env.repos, env.publisher, env.metrics, env.logger).(*requestServiceImpl)
}

func putRequest(env *testEnv, id string, data map[string]any) {
	env.store.Put(docstore.CollectionUpdateRequests, id, data)
}

func TestRequests_ApproveInsertsNewRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	putRequest(env, "r1", map[string]any{
		"Student ID":      "2020111",
		"First Name":      "Deniz",
		"Graduation Year": "2020",
		"Company Name":    "Orbit",
		"Email Address":   "deniz@example.com",
		"Phone":           "+90 555 000 0000",
		"Status":          "Pending",
		"Request Type":    "New",
	})
	svc := newRequests(env)

	list, err := svc.Approve(ctx, "r1", owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RequestApproved, list[0].Status)

	recs, err := env.repos.AlumniRepository.FindByStudentID(ctx, "2020111")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotNil(t, recs[0].CreatedAt)
	assert.Nil(t, recs[0].LastUpdated)
	assert.Equal(t, 2020, recs[0].GraduationYear)
	assert.Equal(t, "Orbit", recs[0].CompanyName)
	assert.Equal(t, "deniz@example.com", recs[0].Extra["Email Address"])
	assert.Equal(t, "+90 555 000 0000", recs[0].Extra["Phone"])
	assert.NotContains(t, recs[0].Extra, "Request Type")
	assert.NotContains(t, recs[0].Extra, "Status")

	assert.Contains(t, env.publisher.types(), events.TypeRequestDecided)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.RequestDecisions.WithLabelValues("Approved")))
}

func TestRequests_ApproveUpdatesExistingRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addAlumni("555", map[string]any{"First Name": "Ece", "Company Name": "Old Co", "Major": "Physics"})
	putRequest(env, "r2", map[string]any{
		"Student ID":    "555",
		"Company Name":  "New Co",
		"Still Working": "Yes",
		"LinkedIn":      "https://linkedin.example/ece",
		"Status":        "Pending",
	})
	svc := newRequests(env)

	_, err := svc.Approve(ctx, "r2", owner)
	require.NoError(t, err)

	assert.Equal(t, 1, env.store.Count(docstore.CollectionAlumni))
	recs, err := env.repos.AlumniRepository.FindByStudentID(ctx, "555")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "New Co", recs[0].CompanyName)
	assert.Equal(t, "Physics", recs[0].Major, "fields absent from the request are kept")
	assert.Equal(t, "https://linkedin.example/ece", recs[0].Extra["LinkedIn"])
	assert.True(t, recs[0].StillWorking)
	assert.NotContains(t, recs[0].Extra, "Status")
	assert.NotNil(t, recs[0].LastUpdated)

	req, err := svc.Get(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, req.Status)
}

func TestRequests_CancelLeavesAlumniUntouched(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	putRequest(env, "r3", map[string]any{"Student ID": "9", "Company Name": "X"})
	svc := newRequests(env)

	list, err := svc.Cancel(ctx, "r3", owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.RequestCancelled, list[0].Status)
	assert.Equal(t, 0, env.store.Count(docstore.CollectionAlumni))
}

func TestRequests_DecidedRequestsAreFinal(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	putRequest(env, "r4", map[string]any{"Student ID": "9", "Status": "Approved"})
	svc := newRequests(env)

	_, err := svc.Cancel(ctx, "r4", owner)
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyDecided)

	_, err = svc.Approve(ctx, "missing", owner)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
}

func TestRequests_ListSearch(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	putRequest(env, "a", map[string]any{"Student ID": "1001", "First Name": "Selin", "Last Name": "Yilmaz"})
	putRequest(env, "b", map[string]any{"Student ID": "2002", "First Name": "Burak", "Last Name": "Aksoy"})
	svc := newRequests(env)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byName, err := svc.List(ctx, "SELIN")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "1001", byName[0].StudentID)

	byID, err := svc.List(ctx, "200")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "Aksoy", byID[0].LastName)
}

func TestRequests_Submit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := newRequests(env)

	req, err := svc.Submit(ctx, dto.SubmitUpdateRequest{StudentID: " 3003.0 ", CompanyName: "Nova", Role: "  "})
	require.NoError(t, err)
	assert.Equal(t, "3003", req.StudentID)
	assert.Equal(t, models.RequestPending, req.Status)

	stored, err := svc.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nova", stored.Fields["Company Name"])
	assert.NotContains(t, stored.Fields, "Role")
	assert.Equal(t, "Update", stored.RequestType)

	_, err = svc.Submit(ctx, dto.SubmitUpdateRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
