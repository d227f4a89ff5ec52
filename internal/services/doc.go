// Package services implements the business logic layer between the HTTP
// handlers and the compiler. The analysis service owns the in-memory dataset
// store (one entry per uploaded directory export) and orchestrates
// ingestion, normalization, history compilation, and report rendering; the
// health service reports process liveness.
//
// Services take interfaces where they need collaborators and return concrete
// types. All methods accept a context for cancellation and log through a
// component-scoped slog.Logger.
package services
