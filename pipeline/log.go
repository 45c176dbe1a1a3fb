package pipeline

import "log"

// Logf is the logger used for dropped ticks.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. A nil logger mutes the package.
func SetLogger(logger func(format string, v ...interface{})) {
	if logger == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = logger
}
