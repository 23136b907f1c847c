package core

// DebugMode enables development-only behavior such as argument validation
// and selector health checks. Production builds should call
// SetDebugMode(false) during startup.
var DebugMode = true

// SetDebugMode enables or disables debug mode.
func SetDebugMode(debug bool) {
	DebugMode = debug
}
