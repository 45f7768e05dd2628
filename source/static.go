package source

import (
	"context"
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/splitter/types"
)

// Static implements a profile source with a fixed set of profiles.
type Static struct {
	mu       sync.RWMutex
	profiles map[string]types.Profile
}

var _ types.ProfileSource = (*Static)(nil)

// NewStatic creates a new static profile source.
//
// Useful for testing, simulations and deployments where profiles are known at startup.
//
// Parameters:
//   - profiles: Initial profiles; later entries win on duplicate user IDs
//
// Returns:
//   - *Static: Initialized static source
//
// Example:
//
//	src := source.NewStatic([]types.Profile{
//	    {UserID: "u1", Attributes: map[string]types.Value{"plan": types.String("premium")}},
//	})
//	engine, err := splitter.NewEngine(&cfg, splitter.WithProfileSource(src))
func NewStatic(profiles []types.Profile) *Static {
	s := &Static{profiles: make(map[string]types.Profile, len(profiles))}
	for _, p := range profiles {
		s.profiles[p.UserID] = cloneProfile(p)
	}

	return s
}

// GetProfile returns the profile of userID.
//
// Returns:
//   - types.Profile: Copy of the stored profile
//   - bool: false when the user is unknown
//   - error: Always nil (never fails)
func (s *Static) GetProfile(_ context.Context, userID string) (types.Profile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return types.Profile{}, false, nil
	}

	return cloneProfile(p), true, nil
}

// Update adds or replaces a profile.
//
// This allows the static source to simulate profile changes, e.g. a user
// upgrading their plan between two assignment requests.
func (s *Static) Update(p types.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.UserID] = cloneProfile(p)
}

// Len returns the number of profiles.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.profiles)
}

type profileDoc struct {
	UserID     string                 `yaml:"userId"`
	Attributes map[string]types.Value `yaml:"attributes"`
}

// ParseProfiles decodes a YAML list of profiles.
//
// Example document:
//
//	- userId: u1
//	  attributes:
//	    plan: premium
//	    sessions: 12
//	    tags: [beta, mobile]
func ParseProfiles(data []byte) ([]types.Profile, error) {
	var docs []profileDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}

	profiles := make([]types.Profile, 0, len(docs))
	for i, d := range docs {
		if d.UserID == "" {
			return nil, fmt.Errorf("profile %d: userId is required", i)
		}
		profiles = append(profiles, types.Profile{UserID: d.UserID, Attributes: d.Attributes})
	}

	return profiles, nil
}

// LoadStatic reads a YAML profile file into a Static source.
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles %s: %w", path, err)
	}

	profiles, err := ParseProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return NewStatic(profiles), nil
}

func cloneProfile(p types.Profile) types.Profile {
	p.Attributes = maps.Clone(p.Attributes)
	return p
}
