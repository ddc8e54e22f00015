// Package session drives a single scan from opening the device to placing
// the result at the user's destination.
//
// A Machine is an actor: device notifications are posted into a mailbox
// from any goroutine and consumed by the goroutine running Machine.Run,
// which is the only place state changes. The lifecycle is
//
//	IDLE → OPENING → CONFIGURING → SCANNING → TRANSFERRING → COMPLETED
//
// with FAILED reachable from every active state. Exactly one of COMPLETED
// and FAILED is reached per run, the device session is closed on every
// exit path after a successful Open, and notifications arriving after the
// terminal state are discarded.
//
// A Machine runs once. Create a new one for every scan.
package session
