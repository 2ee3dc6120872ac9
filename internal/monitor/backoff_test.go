package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmon/internal/model"
	"github.com/slok/taskmon/internal/monitor"
)

func TestNewBackoff(t *testing.T) {
	tests := map[string]struct {
		interval time.Duration
		cfg      model.BackoffConfig
		expDelay map[int]time.Duration
		expErr   bool
	}{
		"No type should use a fixed backoff with the interval.": {
			interval: 2 * time.Second,
			expDelay: map[int]time.Duration{1: 2 * time.Second, 5: 2 * time.Second},
		},

		"Fixed type should always use the interval.": {
			interval: time.Second,
			cfg:      model.BackoffConfig{Type: model.BackoffTypeFixed},
			expDelay: map[int]time.Duration{1: time.Second, 10: time.Second},
		},

		"Exponential type should multiply the interval on every failure.": {
			interval: time.Second,
			cfg:      model.BackoffConfig{Type: model.BackoffTypeExponential, Multiplier: 3},
			expDelay: map[int]time.Duration{0: time.Second, 1: 3 * time.Second, 2: 9 * time.Second},
		},

		"Exponential type without multiplier should double the interval.": {
			interval: time.Second,
			cfg:      model.BackoffConfig{Type: model.BackoffTypeExponential},
			expDelay: map[int]time.Duration{1: 2 * time.Second, 3: 8 * time.Second},
		},

		"Exponential type should be capped by the max.": {
			interval: time.Second,
			cfg:      model.BackoffConfig{Type: model.BackoffTypeExponential, Max: 5 * time.Second},
			expDelay: map[int]time.Duration{2: 4 * time.Second, 3: 5 * time.Second, 50: 5 * time.Second},
		},

		"A max lower than the interval should fail.": {
			interval: 2 * time.Second,
			cfg:      model.BackoffConfig{Type: model.BackoffTypeExponential, Max: time.Second},
			expErr:   true,
		},

		"An unknown type should fail.": {
			interval: time.Second,
			cfg:      model.BackoffConfig{Type: "random"},
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			b, err := monitor.NewBackoff(test.interval, test.cfg)

			if test.expErr {
				require.Error(err)
				assert.ErrorIs(err, model.ErrNotValid)
				return
			}
			require.NoError(err)

			for failures, exp := range test.expDelay {
				assert.Equal(exp, b.Next(failures), "failures: %d", failures)
			}
		})
	}
}
