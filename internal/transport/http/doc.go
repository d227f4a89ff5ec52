// Package http implements the HTTP transport layer for the directory
// compiler service.
//
// # Architecture
//
// Each handler owns one resource family and exposes a Routes() method
// returning a chi.Router, mounted by the application container:
//
//   - AnalysisHandler: dataset upload, address inventory, subject and
//     adjoining compilation, and report downloads under /api/datasets
//   - HealthHandler: liveness under /api/healthz
//
// # Error Handling
//
// All error responses are RFC 7807 problem documents produced through
// errors.ErrorHandler. Handlers map service sentinels to API errors and
// never write ad-hoc error JSON.
package http
