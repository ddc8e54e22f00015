// Package config loads docscan defaults from a YAML file.
//
// The file is looked up at $XDG_CONFIG_HOME/docscan/config.yaml (and the
// other XDG config directories) unless a path is given explicitly. Values
// from the file replace the built-in defaults; command-line flags replace
// both. A missing file is not an error.
//
// Example:
//
//	device: "Canon MF740C"
//	mode: grayscale
//	resolution: 300
//	geometry:
//	  width: 215.9
//	  height: 279.4
//	discovery:
//	  settle: 2s
//	escl:
//	  insecure: true
package config
