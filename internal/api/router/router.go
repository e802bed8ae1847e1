package router

import (
	"github.com/cuongbtq/job-gateway/internal/api/auth"
	"github.com/cuongbtq/job-gateway/internal/api/handler"
	"github.com/gin-gonic/gin"
)

const defaultBodyLimit = 1048576

// Options holds the API key guard and the job body size cap
type Options struct {
	Guard     *auth.Guard
	BodyLimit int64
}

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, opts Options) *gin.Engine {
	r := gin.New()

	guard := opts.Guard
	if guard == nil {
		guard = auth.NewGuard(nil, nil)
	}

	bodyLimit := opts.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(deps.Metrics.Middleware())
	r.Use(APIKeyMiddleware(guard, deps.Metrics, deps.Logger))

	healthHandler := handler.NewHealthHandler(deps)
	jobHandler := handler.NewJobHandler(deps)

	r.GET("/", healthHandler.Root)
	r.GET("/health", healthHandler.Health)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	v1 := r.Group("/v1")
	{
		// POST /v1/jobs - Publish a job to the broker
		v1.POST("/jobs", BodyLimitMiddleware(bodyLimit), jobHandler.SubmitJob)
	}

	return r
}
