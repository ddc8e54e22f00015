// Package log provides a structured event trace for scan sessions.
//
// This package defines the Logger interface and Event types for capturing
// what happened during discovery and a scan session: state transitions,
// the configuration applied to the device, document transfers, eSCL HTTP
// exchanges and errors. It is separate from operational logging (slog);
// the event trace is a complete machine-readable record for debugging.
//
// # Basic Usage
//
//	// Console only
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Binary file
//	fileLogger, _ := log.NewFileLogger("/tmp/docscan.dlog")
//
//	// Both
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fileLogger)
//
// # Event Types
//
// Every event carries a session ID, a layer and a category, plus exactly
// one payload:
//   - StateChangeEvent: session state machine transitions
//   - ConfigEvent: the resolved configuration sent to the device
//   - TransferEvent: a document moved to its destination
//   - RequestEvent: an HTTP exchange with an eSCL device
//   - DiscoveryEvent: a device appearing or disappearing
//   - ErrorEventData: errors at any layer
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .dlog extension.
// The docscan-log tool views, summarises and exports them.
package log
