package api

import (
	"net/http"
	"strconv"
	"time"

	"feed-export-service/internal/service"
	"feed-export-service/internal/util"
	"feed-export-service/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultPageSize = 100

// Handler contains HTTP handlers
type Handler struct {
	exportService *service.ExportService
	warmupWorker  *worker.WarmupWorker
}

// NewHandler creates a new HTTP handler
func NewHandler(exportService *service.ExportService, warmupWorker *worker.WarmupWorker) *Handler {
	return &Handler{
		exportService: exportService,
		warmupWorker:  warmupWorker,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/export", h.export)
		v1.GET("/export/debug", h.exportDebug)
		v1.POST("/warmup", h.warmup)
		v1.DELETE("/cache/general", h.clearGeneralCache)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// export serves one feed page. Without a completed warm-up sweep the category
// set would be incomplete, so the request is refused with 412 instead.
func (h *Handler) export(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}

	if !h.exportService.IsWarm(c.Request.Context()) {
		c.JSON(http.StatusPreconditionFailed, gin.H{
			"error": "Dynamic product groups are not warmed up yet",
		})
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Export failed",
			"details": err.Error(),
		})
		return
	}

	if result.Report != nil {
		c.JSON(http.StatusUnprocessableEntity, result.Report)
		return
	}
	c.Data(http.StatusOK, h.exportService.ContentType(), result.Feed)
}

// exportDebug serves the same page in strict mode: any recorded error turns
// the response into a diagnostic report.
func (h *Handler) exportDebug(c *gin.Context) {
	req, ok := h.parseRequest(c)
	if !ok {
		return
	}
	req.Strict = true

	result, err := h.exportService.Export(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Export failed",
			"details": err.Error(),
		})
		return
	}

	if result.Report != nil {
		c.JSON(http.StatusUnprocessableEntity, result.Report)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"exported": result.Exported,
		"total":    result.Total,
	})
}

// warmup runs a dynamic-group warm-up sweep
func (h *Handler) warmup(c *gin.Context) {
	result, err := h.warmupWorker.RunSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Warm-up failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streams_total":   result.StreamsTotal,
		"pages_processed": result.PagesProcessed,
		"duration_ms":     result.Duration.Milliseconds(),
	})
}

// clearGeneralCache resets the stream total and the warmed flag
func (h *Handler) clearGeneralCache(c *gin.Context) {
	if err := h.exportService.ClearGeneralCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to clear cache",
			"details": err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseRequest(c *gin.Context) (*service.ExportRequest, bool) {
	limit := defaultPageSize
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return nil, false
		}
		limit = parsed
	}

	offset := 0
	if v := c.Query("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
			return nil, false
		}
		offset = parsed
	}

	return &service.ExportRequest{
		Limit:     limit,
		Offset:    offset,
		ProductID: c.Query("productId"),
	}, true
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
