package model

import "time"

const (
	BackoffTypeFixed       = "fixed"
	BackoffTypeExponential = "exponential"
)

// MonitorConfig is the timing configuration of a task monitor.
type MonitorConfig struct {
	Interval time.Duration
	Backoff  BackoffConfig
}

// BackoffConfig configures how the poll interval grows after consecutive failures.
type BackoffConfig struct {
	Type       string
	Multiplier float64
	Max        time.Duration
}
