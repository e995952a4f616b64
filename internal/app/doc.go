// Package app assembles the web application: configuration, logging,
// OpenTelemetry providers, services and the chi router, plus the HTTP
// server lifecycle.
package app
