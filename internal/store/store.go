package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v4"
)

// Store holds all experiments and the per-user active-assignment index.
type Store struct {
	experiments *xsync.Map[string, *Experiment]
	users       *xsync.Map[string, *userEntry]
}

type userEntry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		experiments: xsync.NewMap[string, *Experiment](),
		users:       xsync.NewMap[string, *userEntry](),
	}
}

// Add registers an experiment.
//
// Returns:
//   - bool: false when an experiment with the same ID already exists
func (s *Store) Add(exp *Experiment) bool {
	_, loaded := s.experiments.LoadOrStore(exp.ID(), exp)
	return !loaded
}

// Get returns the experiment with the given ID.
func (s *Store) Get(id string) (*Experiment, bool) {
	return s.experiments.Load(id)
}

// List returns all experiments ordered by creation time, then ID.
func (s *Store) List() []*Experiment {
	out := make([]*Experiment, 0, s.experiments.Size())
	s.experiments.Range(func(_ string, exp *Experiment) bool {
		out = append(out, exp)
		return true
	})
	slices.SortFunc(out, func(a, b *Experiment) int {
		if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
			return c
		}

		return cmp.Compare(a.ID(), b.ID())
	})

	return out
}

// Len returns the number of experiments.
func (s *Store) Len() int {
	return s.experiments.Size()
}

// Claim marks experimentID as active for the user.
//
// When allowOverlap is false the claim fails if the user already holds an
// active assignment in any other experiment. The check and the insert are
// atomic per user.
//
// Returns:
//   - bool: true when the claim was recorded
func (s *Store) Claim(userID, experimentID string, allowOverlap bool) bool {
	entry, ok := s.users.Load(userID)
	if !ok {
		entry, _ = s.users.LoadOrStore(userID, &userEntry{active: make(map[string]struct{})})
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !allowOverlap {
		for id := range entry.active {
			if id != experimentID {
				return false
			}
		}
	}
	entry.active[experimentID] = struct{}{}

	return true
}

// Release removes experimentID from the user's active set.
func (s *Store) Release(userID, experimentID string) {
	entry, ok := s.users.Load(userID)
	if !ok {
		return
	}

	entry.mu.Lock()
	delete(entry.active, experimentID)
	entry.mu.Unlock()
}

// ActiveExperiments returns the IDs of experiments the user is active in, sorted.
func (s *Store) ActiveExperiments(userID string) []string {
	entry, ok := s.users.Load(userID)
	if !ok {
		return nil
	}

	entry.mu.Lock()
	ids := make([]string, 0, len(entry.active))
	for id := range entry.active {
		ids = append(ids, id)
	}
	entry.mu.Unlock()
	slices.Sort(ids)

	return ids
}
