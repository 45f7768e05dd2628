package stats

import "fmt"

// Method selects how significance is decided.
type Method int

const (
	// MethodRelativeDifference compares relative differences against a fixed threshold.
	MethodRelativeDifference Method = iota

	// MethodTwoProportionZ applies a pooled two-proportion z-test to proportion metrics.
	MethodTwoProportionZ
)

var methodNames = [...]string{"relative_difference", "two_proportion_z"}

// String returns the string representation of the method.
func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return fmt.Sprintf("method(%d)", int(m))
	}

	return methodNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	for i, name := range methodNames {
		if name == string(text) {
			*m = Method(i)
			return nil
		}
	}

	return fmt.Errorf("unknown analysis method %q", text)
}

// Default analyzer settings.
const (
	DefaultRelativeThreshold = 0.05
	DefaultMinParticipants   = 100
	DefaultAdoptionThreshold = 5.0
	DefaultIntervalWidth     = 0.10
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMethod sets the significance method.
func WithMethod(m Method) Option {
	return func(a *Analyzer) {
		a.method = m
	}
}

// WithRelativeThreshold sets the relative difference (0.05 = 5%) above which a
// treatment counts as different from the control.
func WithRelativeThreshold(threshold float64) Option {
	return func(a *Analyzer) {
		if threshold > 0 {
			a.relativeThreshold = threshold
		}
	}
}

// WithMinParticipants sets the participants both arms need before a difference counts.
func WithMinParticipants(n int64) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.minParticipants = n
		}
	}
}

// WithAdoptionThreshold sets the improvement percentage a treatment must exceed to be adopted.
func WithAdoptionThreshold(pct float64) Option {
	return func(a *Analyzer) {
		if pct >= 0 {
			a.adoptionThreshold = pct
		}
	}
}

// WithIntervalWidth sets the half-width of confidence intervals as a fraction of the value.
func WithIntervalWidth(width float64) Option {
	return func(a *Analyzer) {
		if width >= 0 {
			a.intervalWidth = width
		}
	}
}
