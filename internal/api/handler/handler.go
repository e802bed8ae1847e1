package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/job-gateway/internal/api/metrics"
)

// JobPublisher publishes a serialized job to the broker
type JobPublisher interface {
	PublishJob(ctx context.Context, body []byte) (string, error)
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger    *slog.Logger
	Publisher JobPublisher
	Metrics   *metrics.Metrics
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	logger    *slog.Logger
	publisher JobPublisher
	metrics   *metrics.Metrics
}

// NewJobHandler creates a new JobHandler instance
func NewJobHandler(deps *Dependencies) *JobHandler {
	return &JobHandler{
		logger:    deps.Logger,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
	}
}

// HealthHandler serves liveness and broker health
type HealthHandler struct {
	publisher JobPublisher
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(deps *Dependencies) *HealthHandler {
	return &HealthHandler{publisher: deps.Publisher}
}
