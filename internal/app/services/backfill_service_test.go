package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/alumnidesk/internal/app/jobs"
	"github.com/yigit/alumnidesk/internal/app/models/dto"
	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/events"
)

// cancellingStore cancels the run after a number of link updates
type cancellingStore struct {
	*docstore.MemoryStore

	mu      sync.Mutex
	after   int
	updates int
	cancel  context.CancelFunc
}

func (s *cancellingStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	err := s.MemoryStore.Update(ctx, collection, id, fields)
	s.mu.Lock()
	defer s.mu.Unlock()
	if collection == docstore.CollectionEventAlumni {
		s.updates++
		if s.updates == s.after {
			s.cancel()
		}
	}
	return err
}

func seedLinks(env *testEnv) {
	env.addAlumni("10", map[string]any{"Graduation Year": 2019, "Major": "Economics"})
	env.addAlumni("11", map[string]any{"Graduation Year": "2020", "Major": "Law"})
	env.addAlumni("12", map[string]any{"Major": "Art"}) // no year

	put := func(id string, data map[string]any) {
		data["eventId"] = "EVT1"
		env.store.Put(docstore.CollectionEventAlumni, id, data)
	}
	put("l1", map[string]any{"studentId": "10"})
	put("l2", map[string]any{"studentId": "11", "graduationYear": ""})
	put("l3", map[string]any{"studentId": "10", "graduationYear": 0})
	put("l4", map[string]any{"studentId": "11", "graduationYear": 2018}) // already filled
	put("l5", map[string]any{"studentId": "99"})                         // no alumni record
	put("l6", map[string]any{})                                          // no student id
	put("l7", map[string]any{"studentId": "12"})
}

func TestBackfill_CopiesYearAndMajorOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedLinks(env)
	svc := NewBackfillService(env.repos, nil, nil, env.publisher, env.metrics, env.logger)

	first, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.BackfillResult{Scanned: 7, Updated: 3, Skipped: 4}, *first)

	links, err := env.repos.EventAlumniRepository.GetAll(ctx)
	require.NoError(t, err)
	byID := map[string]int{}
	majors := map[string]string{}
	for _, l := range links {
		byID[l.ID] = l.GraduationYear
		majors[l.ID] = l.Major
	}
	assert.Equal(t, 2019, byID["l1"])
	assert.Equal(t, "Economics", majors["l1"])
	assert.Equal(t, 2020, byID["l2"])
	assert.Equal(t, 2019, byID["l3"])
	assert.Equal(t, 2018, byID["l4"])
	assert.Equal(t, 0, byID["l5"])

	second, err := svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 7, second.Scanned)

	assert.Contains(t, env.publisher.types(), events.TypeBackfillCompleted)
}

func TestBackfill_CancellationKeepsEarlierWrites(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 6; i++ {
		id := fmt.Sprint(100 + i)
		env.addAlumni(id, map[string]any{"Graduation Year": 2015 + i, "Major": "Math"})
		env.store.Put(docstore.CollectionEventAlumni, fmt.Sprintf("l%d", i), map[string]any{"eventId": "E", "studentId": id})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancellingStore{MemoryStore: env.store, after: 2, cancel: cancel}
	svc := NewBackfillService(repositories.NewRepositories(store), nil, nil, nil, nil, env.logger)

	result, err := svc.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Cancelled)
	assert.Equal(t, 2, result.Updated)

	links, err := env.repos.EventAlumniRepository.GetAll(context.Background())
	require.NoError(t, err)
	filled := 0
	for _, l := range links {
		if l.HasGraduationYear() {
			filled++
		}
	}
	assert.Equal(t, 2, filled)
}

func TestBackfill_StartRunsAsJob(t *testing.T) {
	env := newTestEnv(t)
	seedLinks(env)
	runner := jobs.NewRunner(env.metrics, env.logger)
	svc := NewBackfillService(env.repos, runner, env.notifier, nil, env.metrics, env.logger)

	accepted, err := svc.Start()
	require.NoError(t, err)

	status, err := runner.Wait(context.Background(), accepted.JobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StateSucceeded, status.State)
	assert.Equal(t, 1, env.notifier.count(MsgBackfillDone))

	// the guard is released once the job ends
	again, err := svc.Start()
	require.NoError(t, err)
	_, err = runner.Wait(context.Background(), again.JobID)
	require.NoError(t, err)
}
