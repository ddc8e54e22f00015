// Package transfer moves scanned documents from the device's download
// directory to the user's destination.
//
// All file access goes through a go-billy filesystem so the same code runs
// against the real disk (NewNative) and an in-memory tree in tests.
package transfer
