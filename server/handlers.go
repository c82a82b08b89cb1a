package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
	"github.com/wippyai/svgtidy-playground/loader"
	"github.com/wippyai/svgtidy-playground/playground"
)

// OptimizeHandler serves the stateless playground endpoints.
type OptimizeHandler struct {
	opt      svgtidy.Optimizer
	log      *zap.Logger
	maxBytes int64
}

func NewOptimizeHandler(opt svgtidy.Optimizer, log *zap.Logger, maxBytes int64) *OptimizeHandler {
	return &OptimizeHandler{opt: opt, log: log, maxBytes: maxBytes}
}

func (h *OptimizeHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/optimize", h.Optimize)
	r.POST("/transform", h.Transform)
}

// Optimize runs one playground step. An optimizer failure is a normal
// result with the generic message, not an HTTP error.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit())

	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abortBody(c, err)
		return
	}

	mode := playground.Preview
	if req.View != "" {
		m, ok := playground.ParseViewMode(req.View)
		if !ok {
			h.abort(c, http.StatusBadRequest, `view must be "preview" or "code"`)
			return
		}
		mode = m
	}

	log := h.log.With(zap.String("request_id", GetRequestID(c.Request.Context())))
	result := playground.Transform(c.Request.Context(), h.opt, req.Input, log)
	metrics := playground.ComputeMetrics(req.Input, result)

	c.JSON(http.StatusOK, newOptimizeResponse(result, mode, metrics))
}

// Transform optimizes a raw SVG body and returns the document itself.
func (h *OptimizeHandler) Transform(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.bodyLimit())

	src, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.abortBody(c, err)
		return
	}

	lc := loader.Context{
		ResourcePath: c.Request.URL.Path,
		Logger:       h.log.With(zap.String("request_id", GetRequestID(c.Request.Context()))),
	}
	loader.Transform(c.Request.Context(), lc, h.opt, string(src), func(err error, result string) {
		if err != nil {
			_ = c.Error(err)
			h.abort(c, http.StatusUnprocessableEntity, playground.FailureMessage)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(result))
	})
}

func (h *OptimizeHandler) bodyLimit() int64 {
	if h.maxBytes <= 0 {
		return 1 << 20
	}
	return h.maxBytes
}

func (h *OptimizeHandler) abortBody(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.abort(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	_ = c.Error(err)
	h.abort(c, http.StatusBadRequest, "invalid request body")
}

func (h *OptimizeHandler) abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     msg,
		RequestID: c.GetString("request_id"),
	})
}
