// Package monitoring holds the diagnostic logger shared by the curve
// loader, the run store and the report writers.
package monitoring

import (
	"log"
	"sync/atomic"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

var verbose atomic.Bool

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetVerbose enables or disables Debugf output.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// Debugf logs through Logf with a [debug] prefix when verbose output is on.
func Debugf(format string, v ...interface{}) {
	if verbose.Load() {
		Logf("[debug] "+format, v...)
	}
}
