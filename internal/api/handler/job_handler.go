package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cuongbtq/job-gateway/internal/api/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	errInvalidBody          = "Invalid request body"
	errBodyTooLarge         = "Request body is too large"
	errUnsupportedMediaType = "Unsupported Media Type: Content-Type must be application/json"
	errInternal             = "Internal Server Error"
)

// SubmitJob handles POST /v1/jobs
// Publishes the JSON body unchanged (compacted) to the job exchange
func (h *JobHandler) SubmitJob(c *gin.Context) {
	if !strings.EqualFold(c.ContentType(), binding.MIMEJSON) {
		c.JSON(http.StatusUnsupportedMediaType, dto.ErrorResponse{Error: errUnsupportedMediaType})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: errBodyTooLarge})
			return
		}
		h.logger.Error("Failed to read request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: errInvalidBody})
		return
	}

	// invalid UTF-8 sequences become U+FFFD so the published body is always UTF-8
	raw = bytes.ToValidUTF8(raw, []byte("\uFFFD"))

	var body bytes.Buffer
	if err := json.Compact(&body, raw); err != nil {
		h.logger.Debug("Invalid request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: errInvalidBody})
		return
	}

	// an accepted job is published even if the client goes away
	ctx := context.WithoutCancel(c.Request.Context())

	messageID, err := h.publisher.PublishJob(ctx, body.Bytes())
	if err != nil {
		h.metrics.PublishFailed()
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: errInternal})
		return
	}

	h.metrics.JobPublished()
	h.logger.Info("Job published",
		slog.String("message_id", messageID),
		slog.Int("body_size", body.Len()),
	)

	c.JSON(http.StatusOK, dto.StatusResponse{Status: dto.StatusOK})
}
