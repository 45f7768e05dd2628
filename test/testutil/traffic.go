package testutil

import (
	"context"
	"sync"

	"github.com/arloliu/splitter"
)

// ConvertFunc decides whether an assigned user converts.
type ConvertFunc func(userID, variantID string) bool

// TrafficReport counts the outcome of a Drive call.
type TrafficReport struct {
	Included    int64
	Excluded    int64
	Conversions int64
	PerVariant  map[string]int64
}

// Drive sends users through an experiment from the given number of
// goroutines and records a conversion of value 1 whenever convert says so.
//
// Parameters:
//   - ctx: Context for all engine calls
//   - engine: Engine under test
//   - experimentID: Target experiment
//   - users: User IDs to send; each is handled by exactly one goroutine
//   - workers: Concurrency
//   - convert: Conversion rule (nil means no conversions)
//
// Returns:
//   - TrafficReport: Aggregated outcome
//   - error: First engine error
func Drive(ctx context.Context, engine *splitter.Engine, experimentID string, users []string, workers int, convert ConvertFunc) (TrafficReport, error) {
	var (
		mu     sync.Mutex
		report = TrafficReport{PerVariant: make(map[string]int64)}
		wg     sync.WaitGroup
		errMu  sync.Mutex
		first  error
	)

	fail := func(err error) {
		errMu.Lock()
		if first == nil {
			first = err
		}
		errMu.Unlock()
	}

	for w := range workers {
		wg.Go(func() {
			for i := w; i < len(users); i += workers {
				userID := users[i]

				variant, ok, err := engine.GetVariant(ctx, userID, experimentID)
				if err != nil {
					fail(err)
					return
				}

				converted := false
				if ok && convert != nil && convert(userID, variant.ID) {
					if err := engine.RecordConversion(ctx, userID, experimentID, 1); err != nil {
						fail(err)
						return
					}
					converted = true
				}

				mu.Lock()
				if ok {
					report.Included++
					report.PerVariant[variant.ID]++
				} else {
					report.Excluded++
				}
				if converted {
					report.Conversions++
				}
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	return report, first
}
