// Package registry holds the set of scanners currently known to the process.
//
// Discovery providers call Add and Remove as devices appear and disappear;
// the CLI reads a snapshot with List and picks a device with Select. Order
// is discovery order. WaitSettled replaces a fixed discovery delay: it
// returns as soon as the provider reports completion or the device set has
// been quiet for a while.
package registry
