package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"sjaggi1/resume-parser/internal/models"
)

const (
	HealthHealthy       = "healthy"
	HealthUnhealthy     = "unhealthy"
	HealthNotConfigured = "not_configured"
	HealthDegraded      = "degraded"
)

// HealthCheck probes one dependency. A nil Check reports not_configured.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type HealthService struct {
	checks  []HealthCheck
	version string
	env     string
	started time.Time
	log     *zap.Logger
}

func NewHealthService(version, env string, checks []HealthCheck, log *zap.Logger) *HealthService {
	return &HealthService{
		checks:  checks,
		version: version,
		env:     env,
		started: time.Now(),
		log:     log,
	}
}

func (h *HealthService) Report(ctx context.Context) models.HealthResponse {
	resp := models.HealthResponse{
		Status:      HealthHealthy,
		Version:     h.version,
		Environment: h.env,
		Uptime:      math.Round(time.Since(h.started).Seconds()*100) / 100,
		Timestamp:   time.Now().UTC(),
		Services:    make(map[string]string, len(h.checks)),
	}

	for _, c := range h.checks {
		if c.Check == nil {
			resp.Services[c.Name] = HealthNotConfigured
			continue
		}
		if err := c.Check(ctx); err != nil {
			h.log.Warn("health check failed", zap.String("service", c.Name), zap.Error(err))
			resp.Services[c.Name] = HealthUnhealthy
			resp.Status = HealthDegraded
			continue
		}
		resp.Services[c.Name] = HealthHealthy
	}
	return resp
}
