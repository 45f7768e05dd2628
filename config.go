package splitter

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/splitter/internal/hash"
	"github.com/arloliu/splitter/stats"
	"github.com/arloliu/splitter/types"
)

// AnalysisConfig controls how experiment results are judged.
type AnalysisConfig struct {
	// Method selects the significance test: "relative_difference" (default) or
	// "two_proportion_z". The z-test applies to proportion metrics only; other
	// metrics keep the relative difference rule.
	Method stats.Method `yaml:"method"`

	// RelativeThreshold is the relative difference between a treatment and the
	// control (0.05 = 5%) above which the difference counts.
	RelativeThreshold float64 `yaml:"relativeThreshold"`

	// MinParticipants is how many participants both arms need before a
	// difference counts toward significance.
	MinParticipants int64 `yaml:"minParticipants"`

	// AdoptionThreshold is the improvement in percent the best treatment must
	// exceed for an adopt_treatment recommendation.
	AdoptionThreshold float64 `yaml:"adoptionThreshold"`

	// IntervalWidth is the half-width of reported confidence intervals as a
	// fraction of the metric value (0.10 = +/-10%).
	IntervalWidth float64 `yaml:"intervalWidth"`
}

// SinkConfig names the NATS resources used by the JetStream sinks.
//
// The engine itself never connects to NATS; these settings are consumed by
// callers (such as the splitter CLI) that wire sink.KV and sink.Publisher.
type SinkConfig struct {
	// URL is the NATS server URL. Empty disables the NATS sinks.
	URL string `yaml:"url"`

	// Bucket is the JetStream KV bucket for experiments, assignments and results.
	Bucket string `yaml:"bucket"`

	// SubjectPrefix prefixes analytics event subjects: <prefix>.<experiment>.<kind>.
	SubjectPrefix string `yaml:"subjectPrefix"`
}

// Config is the configuration for the Engine.
//
// All duration fields accept standard Go duration strings like "30s", "5m", "1h".
type Config struct {
	// MonitorInterval is how often the background monitor wakes up. Each
	// experiment is evaluated at most once per its own MonitoringInterval.
	MonitorInterval time.Duration `yaml:"monitorInterval"`

	// HashResolution is the number of buckets a hash draw is reduced to.
	HashResolution uint64 `yaml:"hashResolution"`

	// HashSeed perturbs every hash draw. Changing it reshuffles all users, so
	// it must stay fixed for the lifetime of running experiments.
	HashSeed uint64 `yaml:"hashSeed"`

	// WeightTolerance is the allowed deviation of variant weights from summing to 1.
	WeightTolerance float64 `yaml:"weightTolerance"`

	// MinElapsedPeriods is how many monitoring intervals must pass before the
	// sample-size condition can stop an experiment.
	MinElapsedPeriods int `yaml:"minElapsedPeriods"`

	// EventBufferSize is the capacity of the collaborator notification queue.
	EventBufferSize int `yaml:"eventBufferSize"`

	// DeliveryTimeout bounds a single collaborator notification.
	DeliveryTimeout time.Duration `yaml:"deliveryTimeout"`

	// ShutdownTimeout bounds draining of pending notifications on Close.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	// Analysis controls significance testing and recommendations.
	Analysis AnalysisConfig `yaml:"analysis"`

	// ExperimentDefaults fills zero fields of each experiment's Configuration.
	// EarlyStopping and AllowOverlap are never defaulted.
	ExperimentDefaults types.Configuration `yaml:"experimentDefaults"`

	// Sink configures the optional NATS sinks.
	Sink SinkConfig `yaml:"sink"`
}

// DefaultConfig returns a configuration with production defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		MonitorInterval:   time.Minute,
		HashResolution:    hash.DefaultResolution,
		HashSeed:          0,
		WeightTolerance:   0.01,
		MinElapsedPeriods: 7,
		EventBufferSize:   4096,
		DeliveryTimeout:   5 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		Analysis: AnalysisConfig{
			Method:            stats.MethodRelativeDifference,
			RelativeThreshold: stats.DefaultRelativeThreshold,
			MinParticipants:   stats.DefaultMinParticipants,
			AdoptionThreshold: stats.DefaultAdoptionThreshold,
			IntervalWidth:     stats.DefaultIntervalWidth,
		},
		ExperimentDefaults: types.Configuration{
			MinSampleSize:           1000,
			MaxDuration:             30 * 24 * time.Hour,
			ConfidenceLevel:         0.95,
			StatisticalPower:        0.8,
			MinimumDetectableEffect: 0.05,
			MonitoringInterval:      time.Hour,
		},
		Sink: SinkConfig{
			Bucket:        "splitter",
			SubjectPrefix: "splitter.events",
		},
	}
}

// SetDefaults fills in missing configuration values with production defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.MonitorInterval == 0 {
		cfg.MonitorInterval = defaults.MonitorInterval
	}
	if cfg.HashResolution == 0 {
		cfg.HashResolution = defaults.HashResolution
	}
	if cfg.WeightTolerance == 0 {
		cfg.WeightTolerance = defaults.WeightTolerance
	}
	if cfg.MinElapsedPeriods == 0 {
		cfg.MinElapsedPeriods = defaults.MinElapsedPeriods
	}
	if cfg.EventBufferSize == 0 {
		cfg.EventBufferSize = defaults.EventBufferSize
	}
	if cfg.DeliveryTimeout == 0 {
		cfg.DeliveryTimeout = defaults.DeliveryTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.Analysis.RelativeThreshold == 0 {
		cfg.Analysis.RelativeThreshold = defaults.Analysis.RelativeThreshold
	}
	if cfg.Analysis.MinParticipants == 0 {
		cfg.Analysis.MinParticipants = defaults.Analysis.MinParticipants
	}
	if cfg.Analysis.AdoptionThreshold == 0 {
		cfg.Analysis.AdoptionThreshold = defaults.Analysis.AdoptionThreshold
	}
	if cfg.Analysis.IntervalWidth == 0 {
		cfg.Analysis.IntervalWidth = defaults.Analysis.IntervalWidth
	}
	applyExperimentDefaults(&cfg.ExperimentDefaults, defaults.ExperimentDefaults)
	if cfg.Sink.Bucket == "" {
		cfg.Sink.Bucket = defaults.Sink.Bucket
	}
	if cfg.Sink.SubjectPrefix == "" {
		cfg.Sink.SubjectPrefix = defaults.Sink.SubjectPrefix
	}
	// Note: HashSeed of 0 is valid, so we don't apply default
}

// applyExperimentDefaults fills zero numeric fields of c from d.
func applyExperimentDefaults(c *types.Configuration, d types.Configuration) {
	if c.MinSampleSize == 0 {
		c.MinSampleSize = d.MinSampleSize
	}
	if c.MaxDuration == 0 {
		c.MaxDuration = d.MaxDuration
	}
	if c.ConfidenceLevel == 0 {
		c.ConfidenceLevel = d.ConfidenceLevel
	}
	if c.StatisticalPower == 0 {
		c.StatisticalPower = d.StatisticalPower
	}
	if c.MinimumDetectableEffect == 0 {
		c.MinimumDetectableEffect = d.MinimumDetectableEffect
	}
	if c.MonitoringInterval == 0 {
		c.MonitoringInterval = d.MonitoringInterval
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - MonitorInterval > 0
//   - HashResolution >= 100 (a coarser grid cannot express 1% weights)
//   - 0 < WeightTolerance <= 0.1
//   - MinElapsedPeriods >= 1
//   - EventBufferSize > 0
//   - Analysis thresholds positive, IntervalWidth >= 0
//   - ExperimentDefaults.ConfidenceLevel in (0,1)
//   - MonitorInterval <= ExperimentDefaults.MonitoringInterval
//
// Returns:
//   - error: Validation error with clear explanation, nil if valid
func (cfg *Config) Validate() error {
	if cfg.MonitorInterval <= 0 {
		return fmt.Errorf("MonitorInterval must be > 0, got %v", cfg.MonitorInterval)
	}

	if cfg.HashResolution < 100 {
		return fmt.Errorf("HashResolution must be >= 100, got %d", cfg.HashResolution)
	}

	if cfg.WeightTolerance <= 0 || cfg.WeightTolerance > 0.1 {
		return fmt.Errorf("WeightTolerance must be in (0, 0.1], got %v", cfg.WeightTolerance)
	}

	if cfg.MinElapsedPeriods < 1 {
		return fmt.Errorf("MinElapsedPeriods must be >= 1, got %d", cfg.MinElapsedPeriods)
	}

	if cfg.EventBufferSize <= 0 {
		return fmt.Errorf("EventBufferSize must be > 0, got %d", cfg.EventBufferSize)
	}

	a := cfg.Analysis
	if a.RelativeThreshold <= 0 || a.MinParticipants <= 0 || a.AdoptionThreshold < 0 || a.IntervalWidth < 0 {
		return fmt.Errorf(
			"Analysis settings out of range (relativeThreshold=%v, minParticipants=%d, adoptionThreshold=%v, intervalWidth=%v)",
			a.RelativeThreshold, a.MinParticipants, a.AdoptionThreshold, a.IntervalWidth,
		)
	}

	d := cfg.ExperimentDefaults
	if d.ConfidenceLevel <= 0 || d.ConfidenceLevel >= 1 {
		return fmt.Errorf("ExperimentDefaults.ConfidenceLevel must be in (0,1), got %v", d.ConfidenceLevel)
	}

	if d.MonitoringInterval > 0 && cfg.MonitorInterval > d.MonitoringInterval {
		return fmt.Errorf(
			"MonitorInterval (%v) must not exceed ExperimentDefaults.MonitoringInterval (%v)",
			cfg.MonitorInterval, d.MonitoringInterval,
		)
	}

	return nil
}

// TestConfig returns a configuration optimized for fast test execution.
//
// Returns:
//   - Config: Configuration with fast timings for tests
//
// Example:
//
//	cfg := splitter.TestConfig()
//	engine, err := splitter.NewEngine(&cfg)
func TestConfig() Config {
	cfg := DefaultConfig()

	cfg.MonitorInterval = 10 * time.Millisecond
	cfg.ShutdownTimeout = 2 * time.Second
	cfg.ExperimentDefaults.MonitoringInterval = 10 * time.Millisecond
	cfg.EventBufferSize = 1 << 16

	return cfg
}

// ParseConfig decodes a YAML configuration, applies defaults and validates it.
//
// Parameters:
//   - data: YAML document
//
// Returns:
//   - Config: Parsed configuration
//   - error: Decode or validation failure (wraps ErrInvalidConfig)
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
//
// Parameters:
//   - path: File path
//
// Returns:
//   - Config: Parsed configuration
//   - error: Read, decode or validation failure
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return ParseConfig(data)
}
