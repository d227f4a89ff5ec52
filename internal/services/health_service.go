package services

import (
	"context"
	"time"
)

// HealthStatus describes process liveness for the health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthService reports process liveness.
type HealthService struct {
	version   string
	startedAt time.Time
}

// NewHealthService creates a health service stamped with the build version.
func NewHealthService(version string) *HealthService {
	return &HealthService{
		version:   version,
		startedAt: time.Now(),
	}
}

// Status returns the current liveness snapshot.
func (s *HealthService) Status(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Version:   s.version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}
