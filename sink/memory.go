package sink

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/arloliu/splitter/types"
)

// Memory records everything it receives. It implements both types.Store and
// types.EventPublisher.
type Memory struct {
	mu          sync.RWMutex
	experiments map[string]types.Experiment
	assignments map[string]map[string]types.Assignment // experiment -> user -> assignment
	results     map[string]types.Results
	events      []types.Event
}

var (
	_ types.Store          = (*Memory)(nil)
	_ types.EventPublisher = (*Memory)(nil)
)

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{
		experiments: make(map[string]types.Experiment),
		assignments: make(map[string]map[string]types.Assignment),
		results:     make(map[string]types.Results),
	}
}

// SaveExperiment implements types.Store.
func (m *Memory) SaveExperiment(_ context.Context, exp types.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiments[exp.ID] = exp

	return nil
}

// SaveAssignment implements types.Store.
func (m *Memory) SaveAssignment(_ context.Context, a types.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, ok := m.assignments[a.ExperimentID]
	if !ok {
		users = make(map[string]types.Assignment)
		m.assignments[a.ExperimentID] = users
	}
	users[a.UserID] = a

	return nil
}

// SaveResults implements types.Store.
func (m *Memory) SaveResults(_ context.Context, experimentID string, results types.Results) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[experimentID] = results.Clone()

	return nil
}

// Publish implements types.EventPublisher.
func (m *Memory) Publish(_ context.Context, ev types.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)

	return nil
}

// Experiment returns the last saved snapshot.
func (m *Memory) Experiment(id string) (types.Experiment, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	exp, ok := m.experiments[id]

	return exp, ok
}

// Assignments returns the saved assignments of an experiment.
func (m *Memory) Assignments(experimentID string) []types.Assignment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Assignment, 0, len(m.assignments[experimentID]))
	for _, a := range m.assignments[experimentID] {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b types.Assignment) int {
		return cmp.Compare(a.UserID, b.UserID)
	})

	return out
}

// Results returns the saved results of an experiment.
func (m *Memory) Results(experimentID string) (types.Results, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[experimentID]

	return r.Clone(), ok
}

// Events returns a copy of all published events in arrival order.
func (m *Memory) Events() []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.events)
}

// EventCount returns the number of published events of the given kind.
func (m *Memory) EventCount(kind types.EventKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, ev := range m.events {
		if ev.Kind == kind {
			n++
		}
	}

	return n
}
