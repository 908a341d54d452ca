package repository

import "time"

// Interval is a candle bucket granularity.
type Interval string

const (
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval1d  Interval = "1d"
)

// IntervalSpec pairs an interval with its provider lookback window.
type IntervalSpec struct {
	Interval Interval
	Lookback time.Duration
}

const day = 24 * time.Hour

// DefaultIntervals returns the intervals fetched per run, finest first.
func DefaultIntervals() []IntervalSpec {
	return []IntervalSpec{
		{Interval: Interval15m, Lookback: 30 * day},
		{Interval: Interval1h, Lookback: 60 * day},
		{Interval: Interval1d, Lookback: 255 * day},
	}
}

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval15m, Interval1h, Interval1d:
		return true
	default:
		return false
	}
}

// DefaultLookback returns the lookback for iv, shorter for finer buckets.
func DefaultLookback(iv Interval) time.Duration {
	switch iv {
	case Interval15m:
		return 30 * day
	case Interval1h:
		return 60 * day
	default:
		return 255 * day
	}
}
