// Package simulator provides in-memory scanners for tests and for the
// -simulate command-line mode.
//
// A Scanner satisfies scanner.Session. It reports completion events from
// its own goroutines, as a real device would, and writes small generated
// images into the configured download directory through a go-billy
// filesystem. Failures at each step can be injected through Profile.
package simulator
