package handler

import (
	"net/http"

	"github.com/cuongbtq/job-gateway/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// Root handles GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusOK})
}

// Health handles GET /health and reports the broker connection state
func (h *HealthHandler) Health(c *gin.Context) {
	if h.publisher == nil || !h.publisher.IsConnected() {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status: dto.StatusUnavailable,
			Broker: dto.BrokerDisconnected,
		})
		return
	}

	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: dto.StatusOK,
		Broker: dto.BrokerConnected,
	})
}
