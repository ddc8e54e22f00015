// Package scanner defines the data model shared by every docscan component:
// discovered devices and their capabilities, the user's scan request, the
// configuration resolved against a device, and the asynchronous events a
// device session delivers.
//
// The package also declares the two collaborator interfaces the session
// state machine depends on. Catalog is implemented by the registry and
// Session by concrete transports such as eSCL or the in-memory simulator.
package scanner
