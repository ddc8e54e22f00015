// Package metrics records scan outcomes in a Prometheus registry and
// writes them in the node-exporter textfile format.
package metrics
