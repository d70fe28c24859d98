package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/platewise/backend/internal/domain"
)

// maxUploadBytes bounds how large an accepted image can be
const maxUploadBytes = 10 << 20

// AnalysisUsecase is the pipeline behind the analyze endpoint
type AnalysisUsecase interface {
	Analyze(ctx context.Context, imageBytes []byte, deepSearch bool) (*domain.FoodAnalysis, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysis AnalysisUsecase
	models   []string
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(analysis AnalysisUsecase, models []string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		analysis: analysis,
		models:   models,
		logger:   logger,
	}
}

// errorResponse is the machine-readable failure payload. Detail stays
// human-readable and never carries internal error text.
type errorResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "online",
		"service":           "platewise-backend",
		"version":           "1.0.0",
		"models_configured": h.models,
	})
}

// AnalyzeFood accepts a multipart food image and returns the structured
// nutrition report
func (h *Handler) AnalyzeFood(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Status: "invalid_request",
			Detail: "an image file upload named 'file' is required",
		})
		return
	}

	if !strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, errorResponse{
			Status: "invalid_request",
			Detail: "uploaded file must be an image",
		})
		return
	}

	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{
			Status: "invalid_request",
			Detail: "uploaded image exceeds the size limit",
		})
		return
	}

	deepSearch := parseDeepSearch(c)

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Status: "invalid_request",
			Detail: "uploaded file could not be read",
		})
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Status: "invalid_request",
			Detail: "uploaded file could not be read",
		})
		return
	}

	h.logger.Info("received image analysis request",
		zap.String("filename", fileHeader.Filename),
		zap.Int("bytes", len(imageBytes)),
		zap.Bool("deep_search", deepSearch))

	analysis, err := h.analysis.Analyze(c.Request.Context(), imageBytes, deepSearch)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// respondAnalysisError maps pipeline errors to structured responses
func (h *Handler) respondAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, errorResponse{
			Status: "invalid_request",
			Detail: "request could not be processed",
		})

	case errors.Is(err, domain.ErrAllBackendsExhausted):
		h.logger.Error("all model backends exhausted", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Status: "all_backends_exhausted",
			Detail: "all AI systems failed to analyze the image",
		})

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, errorResponse{
			Status: "timeout",
			Detail: "the request was cancelled before analysis completed",
		})

	default:
		h.logger.Error("analysis failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{
			Status: "internal_error",
			Detail: "analysis failed",
		})
	}
}

// parseDeepSearch reads the optional flag from form or query
func parseDeepSearch(c *gin.Context) bool {
	value := c.PostForm("deep_search")
	if value == "" {
		value = c.Query("deep_search")
	}
	if value == "" {
		return false
	}
	deep, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return deep
}
