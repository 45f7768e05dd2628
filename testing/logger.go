package testing

import (
	"testing"

	"github.com/arloliu/splitter/internal/logger"
	"github.com/arloliu/splitter/types"
)

// NewTestLogger creates a logger that writes to the test's log output.
// This is useful for seeing engine log output during test runs.
func NewTestLogger(t testing.TB) types.Logger {
	return logger.NewTest(t)
}
