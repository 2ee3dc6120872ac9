package io

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/taskmon/internal/model"
)

func TestConfigYAMLRepositoryGetMonitorConfig(t *testing.T) {
	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg model.MonitorConfig
		expErr bool
		errMsg string
	}{
		"Valid config with interval should load successfully": {
			fs: fstest.MapFS{
				"monitor.yaml": &fstest.MapFile{Data: []byte(`interval: 500ms
`)},
			},
			path:   "monitor.yaml",
			expCfg: model.MonitorConfig{Interval: 500 * time.Millisecond},
		},

		"Valid config with exponential backoff should load successfully": {
			fs: fstest.MapFS{
				"monitor.yaml": &fstest.MapFile{Data: []byte(`interval: 1s
backoff:
  type: exponential
  multiplier: 1.5
  max: 1m
`)},
			},
			path: "monitor.yaml",
			expCfg: model.MonitorConfig{
				Interval: time.Second,
				Backoff: model.BackoffConfig{
					Type:       model.BackoffTypeExponential,
					Multiplier: 1.5,
					Max:        time.Minute,
				},
			},
		},

		"Empty config should load successfully": {
			fs: fstest.MapFS{
				"empty.yaml": &fstest.MapFile{Data: []byte(`---
`)},
			},
			path:   "empty.yaml",
			expCfg: model.MonitorConfig{},
		},

		"Missing file should fail": {
			fs:     fstest.MapFS{},
			path:   "missing.yaml",
			expErr: true,
			errMsg: "reading config file",
		},

		"Invalid YAML should fail": {
			fs: fstest.MapFS{
				"bad.yaml": &fstest.MapFile{Data: []byte(`interval: [1s`)},
			},
			path:   "bad.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},

		"Invalid interval should fail": {
			fs: fstest.MapFS{
				"monitor.yaml": &fstest.MapFile{Data: []byte(`interval: often
`)},
			},
			path:   "monitor.yaml",
			expErr: true,
			errMsg: "interval",
		},

		"Negative interval should fail": {
			fs: fstest.MapFS{
				"monitor.yaml": &fstest.MapFile{Data: []byte(`interval: -1s
`)},
			},
			path:   "monitor.yaml",
			expErr: true,
			errMsg: "must be positive",
		},

		"Unknown backoff type should fail": {
			fs: fstest.MapFS{
				"monitor.yaml": &fstest.MapFile{Data: []byte(`backoff:
  type: random
`)},
			},
			path:   "monitor.yaml",
			expErr: true,
			errMsg: "backoff: type",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewConfigYAMLRepository(test.fs)
			cfg, err := repo.GetMonitorConfig(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				if test.errMsg != "" {
					assert.Contains(err.Error(), test.errMsg)
				}
				return
			}

			require.NoError(err)
			assert.Equal(test.expCfg, cfg)
		})
	}
}
