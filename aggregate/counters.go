package aggregate

import (
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arloliu/splitter/types"
)

// Counters aggregates the metrics of one variant.
//
// All methods are safe for concurrent use and never block on each other.
type Counters struct {
	participants *xsync.Counter
	conversions  *xsync.Counter
	sessions     *xsync.Counter
	sessionNanos *xsync.Counter
	revenue      Float
	retained     *xsync.Map[int, *xsync.Counter]
	returned     *xsync.Map[retentionKey, struct{}]
	custom       *xsync.Map[string, *Float]
}

// NewCounters creates zeroed counters.
func NewCounters() *Counters {
	return &Counters{
		participants: xsync.NewCounter(),
		conversions:  xsync.NewCounter(),
		sessions:     xsync.NewCounter(),
		sessionNanos: xsync.NewCounter(),
		retained:     xsync.NewMap[int, *xsync.Counter](),
		returned:     xsync.NewMap[retentionKey, struct{}](),
		custom:       xsync.NewMap[string, *Float](),
	}
}

// RecordParticipant counts one newly assigned user.
func (c *Counters) RecordParticipant() {
	c.participants.Inc()
}

// RecordConversion counts one conversion and adds its monetary value to revenue.
func (c *Counters) RecordConversion(value float64) {
	c.conversions.Inc()
	if value != 0 {
		c.revenue.Add(value)
	}
}

// RecordSession counts one session of the given duration.
func (c *Counters) RecordSession(d time.Duration) {
	c.sessions.Inc()
	c.sessionNanos.Add(int64(d))
}

type retentionKey struct {
	userID string
	day    int
}

// RecordRetention counts the user as retained on the given day offset.
//
// Each user counts at most once per day, so the retention rate never
// exceeds 1.
//
// Returns:
//   - bool: false when the user was already counted for that day
func (c *Counters) RecordRetention(userID string, day int) bool {
	if _, loaded := c.returned.LoadOrStore(retentionKey{userID: userID, day: day}, struct{}{}); loaded {
		return false
	}

	counter, ok := c.retained.Load(day)
	if !ok {
		counter, _ = c.retained.LoadOrStore(day, xsync.NewCounter())
	}
	counter.Inc()

	return true
}

// RecordCustom adds value to the named custom metric.
func (c *Counters) RecordCustom(name string, value float64) {
	sum, ok := c.custom.Load(name)
	if !ok {
		sum, _ = c.custom.LoadOrStore(name, &Float{})
	}
	sum.Add(value)
}

// Participants returns the participant count.
func (c *Counters) Participants() int64 {
	return c.participants.Value()
}

// Snapshot returns a point-in-time copy of the counters.
func (c *Counters) Snapshot() types.Metrics {
	m := types.Metrics{
		Participants:    c.participants.Value(),
		Conversions:     c.conversions.Value(),
		Revenue:         c.revenue.Value(),
		SessionCount:    c.sessions.Value(),
		SessionDuration: time.Duration(c.sessionNanos.Value()),
	}

	if c.retained.Size() > 0 {
		m.Retained = make(map[int]int64, c.retained.Size())
		c.retained.Range(func(day int, counter *xsync.Counter) bool {
			m.Retained[day] = counter.Value()
			return true
		})
	}

	if c.custom.Size() > 0 {
		m.Custom = make(map[string]float64, c.custom.Size())
		c.custom.Range(func(name string, sum *Float) bool {
			m.Custom[name] = sum.Value()
			return true
		})
	}

	return m
}
