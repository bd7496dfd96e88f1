package util

import "log"

// Logging is a clumsy switch that affects what Logf does.
//
// The commands turn it on with their verbose flags.  Libraries that
// want to chat about progress (rendering, analysis, sessions) go
// through Logf so that they are quiet by default.
var Logging = false

// Logf calls log.Printf with the given component as a prefix if
// Logging is true.
func Logf(component, format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(component+" "+format, args...)
}
