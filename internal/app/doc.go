// Package app wires the directory compiler service together: configuration,
// logging, the service layer, the chi router with its middleware chain, and
// the HTTP server lifecycle.
package app
