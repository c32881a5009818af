package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/events"
	"github.com/yigit/alumnidesk/internal/pkg/metrics"
)

var errInjected = errors.New("injected store failure")

// faultyStore fails Add calls on one collection after a number of successes
type faultyStore struct {
	*docstore.MemoryStore

	mu         sync.Mutex
	collection string
	okAdds     int
}

func (s *faultyStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	s.mu.Lock()
	if collection == s.collection {
		if s.okAdds <= 0 {
			s.mu.Unlock()
			return "", errInjected
		}
		s.okAdds--
	}
	s.mu.Unlock()
	return s.MemoryStore.Add(ctx, collection, data)
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// recordingNotifier keeps every progress message
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Publish(topic, msgType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, topic+" "+msgType)
}

func (n *recordingNotifier) count(msgType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.messages {
		if strings.HasSuffix(m, " "+msgType) {
			c++
		}
	}
	return c
}

type testEnv struct {
	store     *docstore.MemoryStore
	repos     *repositories.Repositories
	publisher *recordingPublisher
	notifier  *recordingNotifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := docstore.NewMemoryStore()
	return &testEnv{
		store:     store,
		repos:     repositories.NewRepositories(store),
		publisher: &recordingPublisher{},
		notifier:  &recordingNotifier{},
		metrics:   metrics.NewIsolated(),
		logger:    zerolog.Nop(),
	}
}

func (e *testEnv) addRoster(ids ...string) {
	for i, id := range ids {
		e.store.Put(docstore.CollectionReferenceStudents, fmt.Sprintf("ref-%d", i), map[string]any{"Student ID": id})
	}
}

func (e *testEnv) addAlumni(id string, fields map[string]any) {
	data := map[string]any{"Student ID": id}
	for k, v := range fields {
		data[k] = v
	}
	e.store.Put(docstore.CollectionAlumni, "alum-"+id, data)
}
