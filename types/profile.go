package types

import "context"

// Profile carries the behavioral attributes of a user used for segmentation.
type Profile struct {
	UserID     string           `json:"userId"`
	Attributes map[string]Value `json:"attributes"`
}

// Attribute returns the named attribute.
func (p Profile) Attribute(name string) (Value, bool) {
	v, ok := p.Attributes[name]
	return v, ok
}

// ProfileSource supplies user profiles for segmentation.
//
// Implementations are typically backed by the analytics pipeline. The engine
// calls GetProfile only for experiments that carry a segmentation, while
// holding the experiment's assignment lock, so lookups should be fast.
type ProfileSource interface {
	// GetProfile returns the profile for userID.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - userID: User to look up
	//
	// Returns:
	//   - Profile: The user's profile
	//   - bool: false when the user is unknown
	//   - error: Lookup failure (the user is treated as not matching)
	GetProfile(ctx context.Context, userID string) (Profile, bool, error)
}
