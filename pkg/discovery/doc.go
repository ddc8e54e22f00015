// Package discovery finds network scanners with mDNS/DNS-SD.
//
// Scanners that speak eSCL (AirScan) advertise one of two service types:
//
// # Plain HTTP (_uscan._tcp)
//
// The service resolves to host and port of an HTTP endpoint. The TXT
// record carries the path of the eSCL root (rs, usually "eSCL"), the
// model (ty), a device UUID and hints about supported color spaces (cs),
// input sources (is) and document formats (pdl).
//
// # HTTPS (_uscans._tcp)
//
// Same record layout, served over TLS. Most devices present a self-signed
// certificate.
//
// Browse results are aggregated per instance name: a scanner reachable on
// several interfaces yields a single device whose address list grows and
// shrinks as the interfaces come and go. A device is reported removed once
// its last address disappears.
package discovery
