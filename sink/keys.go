package sink

import (
	"strings"

	"github.com/arloliu/splitter/internal/kvutil"
	"github.com/arloliu/splitter/types"
)

// Key prefixes in the KV bucket.
const (
	experimentPrefix = "experiment"
	assignmentPrefix = "assignment"
	resultsPrefix    = "results"
)

// ExperimentKey returns the KV key of an experiment snapshot.
func ExperimentKey(experimentID string) string {
	return experimentPrefix + "." + kvutil.EncodeToken(experimentID)
}

// AssignmentKey returns the KV key of a user's assignment.
func AssignmentKey(experimentID, userID string) string {
	return assignmentPrefix + "." + kvutil.EncodeToken(experimentID) + "." + kvutil.EncodeToken(userID)
}

// ResultsKey returns the KV key of an experiment's results.
func ResultsKey(experimentID string) string {
	return resultsPrefix + "." + kvutil.EncodeToken(experimentID)
}

// EventSubject returns the subject an event is published on: <prefix>.<experiment>.<kind>.
func EventSubject(prefix, experimentID string, kind types.EventKind) string {
	return ExperimentSubject(prefix, experimentID) + "." + string(kind)
}

// ExperimentSubject returns the subject root of one experiment's events.
func ExperimentSubject(prefix, experimentID string) string {
	return strings.TrimSuffix(prefix, ".") + "." + kvutil.EncodeToken(experimentID)
}
