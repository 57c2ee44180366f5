// Package health tracks the health of the service's dependencies.
//
// The monitor runs registered checks on a fixed interval and keeps the
// latest result for the /health endpoint. Listeners are told when overall
// health flips, which drives the gRPC health service status.
package health
