package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/packshot-composer/internal/models"
	"github.com/phambaophuc/packshot-composer/internal/pipeline"
)

type GenerateHandler struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

func NewGenerateHandler(p *pipeline.Pipeline, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{pipeline: p, logger: logger}
}

// Generate is the buffered delivery mode: the pipeline runs to completion
// before any response bytes are written.
func (h *GenerateHandler) Generate(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	result, perr := h.pipeline.Run(c.Request.Context(), req)
	if perr != nil {
		c.JSON(perr.HTTPStatus(), errorBody(perr))
		return
	}

	c.JSON(http.StatusOK, successBody(result))
}

// GenerateStream is the streamed delivery mode: headers go out before the
// pipeline starts and the terminal JSON, success or error, is written as
// the sole chunk. Input validation still fails fast with a proper 400
// since nothing has been streamed at that point.
func (h *GenerateHandler) GenerateStream(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/json")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	var body any
	if result, perr := h.pipeline.Run(c.Request.Context(), req); perr != nil {
		body = errorBody(perr)
	} else {
		body = successBody(result)
	}

	// Headers are already on the wire; the payload itself carries the
	// outcome and must be valid JSON whichever stage failed.
	if err := json.NewEncoder(c.Writer).Encode(body); err != nil {
		h.logger.Error("Failed to write streamed response", zap.Error(err))
	}
	c.Writer.Flush()
}

// HealthCheck reports liveness; the only collaborators are remote managed
// services with no cheap probe.
func (h *GenerateHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GenerateHandler) parseRequest(c *gin.Context) (*models.GenerateRequest, bool) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid JSON payload"})
		return nil, false
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("Missing required field(s): %s", strings.Join(missing, ", ")),
		})
		return nil, false
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return nil, false
	}

	return &req, true
}

func successBody(result *pipeline.Result) models.GenerateResponse {
	return models.GenerateResponse{
		Success:               true,
		ImageURL:              result.ImageURL,
		GeminiGeneratedPrompt: result.Prompt,
	}
}

// errorBody keeps client-facing messages short; the stringified cause is
// attached only for upstream and server-side failures.
func errorBody(perr *pipeline.Error) models.ErrorResponse {
	body := models.ErrorResponse{Error: perr.Message}

	switch perr.Kind {
	case pipeline.KindUpstream, pipeline.KindPublish, pipeline.KindInternal:
		if perr.Err != nil {
			body.Details = perr.Err.Error()
		}
	}

	return body
}
