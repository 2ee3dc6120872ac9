// Package log has the logger used by the taskmon client and its monitors.
//
// Monitors log every poll failure, command failure and discarded stale
// snapshot at debug or warning level. All logs carry a "svc" value with the
// component that logged them (e.g. "monitor.Engine"). Nothing is logged by
// default, set [lib.Config.Logger] to see them:
//
//	type slogLogger struct{ kv log.Kv }
//
//	func (l slogLogger) Warningf(format string, args ...any) { slog.Warn(fmt.Sprintf(format, args...)) }
//	func (l slogLogger) WithValues(kv log.Kv) log.Logger     { /* merge kv */ }
//	// ... remaining levels
package log

import "github.com/slok/taskmon/internal/log"

// Logger is the logger of the taskmon client and monitors.
type Logger = log.Logger

// Kv are the values attached to every log of a logger.
type Kv = log.Kv

// Noop discards all logs, used when [lib.Config.Logger] is nil.
var Noop = log.Noop
