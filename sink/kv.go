package sink

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/splitter/internal/kvutil"
	"github.com/arloliu/splitter/types"
)

// DefaultBucket is the KV bucket used when KVConfig.Bucket is empty.
const DefaultBucket = "splitter"

// KVConfig configures the KV sink.
type KVConfig struct {
	// Bucket is the KeyValue bucket name.
	Bucket string

	// History is the number of revisions kept per key (default 1).
	History uint8

	// Replicas is the bucket replication factor (default 1).
	Replicas int

	// Storage selects file or memory storage (default file).
	Storage jetstream.StorageType

	// MaxRetries bounds bucket create-or-open attempts (default kvutil.DefaultMaxRetries).
	MaxRetries int
}

// KV stores experiments, assignments and results in a JetStream KeyValue bucket.
//
// Values are JSON documents. Keys:
//
//	experiment.<experiment>
//	assignment.<experiment>.<user>
//	results.<experiment>
//
// where each ID is base64url-encoded to a single key token.
type KV struct {
	kv jetstream.KeyValue
}

var _ types.Store = (*KV)(nil)

// NewKV creates or opens the bucket and returns a KV sink.
//
// Parameters:
//   - ctx: Bounds bucket creation
//   - conn: NATS connection with JetStream enabled on the server
//   - cfg: Bucket settings
//
// Returns:
//   - *KV: Ready sink
//   - error: JetStream or bucket failure
//
// Example:
//
//	kv, err := sink.NewKV(ctx, nc, sink.KVConfig{Bucket: "experiments"})
//	engine, err := splitter.NewEngine(&cfg, splitter.WithStore(kv))
func NewKV(ctx context.Context, conn *nats.Conn, cfg KVConfig) (*KV, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	if cfg.Bucket == "" {
		cfg.Bucket = DefaultBucket
	}
	if cfg.History == 0 {
		cfg.History = 1
	}
	if cfg.Replicas == 0 {
		cfg.Replicas = 1
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      cfg.Bucket,
		Description: "splitter experiments, assignments and results",
		History:     cfg.History,
		Replicas:    cfg.Replicas,
		Storage:     cfg.Storage,
	}, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	return &KV{kv: kv}, nil
}

// NewKVFromBucket wraps an existing bucket.
func NewKVFromBucket(kv jetstream.KeyValue) *KV {
	return &KV{kv: kv}
}

// SaveExperiment stores the experiment snapshot, replacing the previous one.
func (s *KV) SaveExperiment(ctx context.Context, exp types.Experiment) error {
	return s.put(ctx, ExperimentKey(exp.ID), exp)
}

// SaveAssignment stores an assignment.
func (s *KV) SaveAssignment(ctx context.Context, a types.Assignment) error {
	return s.put(ctx, AssignmentKey(a.ExperimentID, a.UserID), a)
}

// SaveResults stores the frozen results of an experiment.
func (s *KV) SaveResults(ctx context.Context, experimentID string, results types.Results) error {
	return s.put(ctx, ResultsKey(experimentID), results)
}

// LoadExperiment returns the last stored snapshot of an experiment.
//
// Returns:
//   - error: *types.NotFoundError when nothing was stored
func (s *KV) LoadExperiment(ctx context.Context, experimentID string) (types.Experiment, error) {
	var exp types.Experiment
	if err := s.get(ctx, ExperimentKey(experimentID), &exp, "experiment", experimentID); err != nil {
		return types.Experiment{}, err
	}

	return exp, nil
}

// LoadAssignment returns a stored assignment.
//
// Returns:
//   - error: *types.NotFoundError when nothing was stored
func (s *KV) LoadAssignment(ctx context.Context, experimentID, userID string) (types.Assignment, error) {
	var a types.Assignment
	if err := s.get(ctx, AssignmentKey(experimentID, userID), &a, "assignment", userID+"/"+experimentID); err != nil {
		return types.Assignment{}, err
	}

	return a, nil
}

// LoadResults returns the stored results of an experiment.
//
// Returns:
//   - error: *types.NotFoundError when nothing was stored
func (s *KV) LoadResults(ctx context.Context, experimentID string) (types.Results, error) {
	var r types.Results
	if err := s.get(ctx, ResultsKey(experimentID), &r, "results", experimentID); err != nil {
		return types.Results{}, err
	}

	return r, nil
}

// ExperimentIDs returns the IDs of all stored experiments, sorted.
func (s *KV) ExperimentIDs(ctx context.Context) ([]string, error) {
	lister, err := s.kv.ListKeysFiltered(ctx, experimentPrefix+".*")
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w: failed to list experiments: %w", types.ErrPersistFailed, err)
	}
	defer func() { _ = lister.Stop() }()

	var ids []string
	for key := range lister.Keys() {
		id, err := kvutil.DecodeToken(strings.TrimPrefix(key, experimentPrefix+"."))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids, nil
}

func (s *KV) put(ctx context.Context, key string, v any) error {
	if _, err := kvutil.PutJSON(ctx, s.kv, key, v); err != nil {
		return fmt.Errorf("%w: %w", types.ErrPersistFailed, err)
	}

	return nil
}

func (s *KV) get(ctx context.Context, key string, v any, kind, id string) error {
	err := kvutil.GetJSON(ctx, s.kv, key, v)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return &types.NotFoundError{Kind: kind, ID: id}
	}

	return err
}
