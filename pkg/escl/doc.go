// Package escl talks to network scanners using eSCL (AirScan), the
// HTTP/XML scanning protocol advertised over DNS-SD as _uscan._tcp and
// _uscans._tcp.
//
// Client wraps the individual endpoints (ScannerCapabilities, ScannerStatus,
// ScanJobs, NextDocument). Session adapts a Client to scanner.Session: it
// opens by reading the capabilities, submits a job built from the resolved
// configuration and pulls documents until the device reports there are no
// more, writing each into the download directory.
package escl
