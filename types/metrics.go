package types

import (
	"maps"
	"time"
)

// Metrics is a point-in-time snapshot of a variant's aggregated counters.
//
// All derived values return 0 when their denominator is 0.
type Metrics struct {
	Participants    int64              `json:"participants"`
	Conversions     int64              `json:"conversions"`
	Revenue         float64            `json:"revenue"`
	SessionCount    int64              `json:"sessionCount"`
	SessionDuration time.Duration      `json:"sessionDuration"`
	Retained        map[int]int64      `json:"retained,omitempty"`
	Custom          map[string]float64 `json:"custom,omitempty"`
}

// ConversionRate returns conversions / participants.
func (m Metrics) ConversionRate() float64 {
	return ratio(float64(m.Conversions), m.Participants)
}

// RevenuePerUser returns revenue / participants.
func (m Metrics) RevenuePerUser() float64 {
	return ratio(m.Revenue, m.Participants)
}

// AverageSessionDuration returns total session duration / session count.
func (m Metrics) AverageSessionDuration() time.Duration {
	if m.SessionCount == 0 {
		return 0
	}

	return m.SessionDuration / time.Duration(m.SessionCount)
}

// RetentionRate returns users retained on the given day / participants.
func (m Metrics) RetentionRate(day int) float64 {
	return ratio(float64(m.Retained[day]), m.Participants)
}

// Value extracts the value of the target metric. Session duration is expressed in seconds.
func (m Metrics) Value(metric TargetMetric) float64 {
	switch metric {
	case MetricConversionRate:
		return m.ConversionRate()
	case MetricRevenuePerUser:
		return m.RevenuePerUser()
	case MetricSessionDuration:
		return m.AverageSessionDuration().Seconds()
	case MetricRetentionDay1:
		return m.RetentionRate(1)
	case MetricRetentionDay7:
		return m.RetentionRate(7)
	default:
		return 0
	}
}

// Successes returns the numerator of a proportion metric.
func (m Metrics) Successes(metric TargetMetric) int64 {
	switch metric {
	case MetricConversionRate:
		return m.Conversions
	case MetricRetentionDay1:
		return m.Retained[1]
	case MetricRetentionDay7:
		return m.Retained[7]
	default:
		return 0
	}
}

// Clone returns a deep copy.
func (m Metrics) Clone() Metrics {
	m.Retained = maps.Clone(m.Retained)
	m.Custom = maps.Clone(m.Custom)

	return m
}

func ratio(num float64, den int64) float64 {
	if den == 0 {
		return 0
	}

	return num / float64(den)
}
