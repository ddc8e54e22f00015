// Package capability resolves a user's scan request against what a device
// actually supports.
//
// Resolution selection picks the smallest supported value that is at least
// the desired one and falls back to the highest supported value. Colour
// modes map to a device pixel type and bit depth. Resolve combines both with
// the feeder and scan-area rules into a scanner.ResolvedConfiguration.
package capability
