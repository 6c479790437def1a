package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/middleware"
	"github.com/pageza/fridgechef/backend/internal/types"
	"github.com/pageza/fridgechef/backend/internal/workflow"
)

// ChatRouter runs one chat turn against a progress stream
type ChatRouter interface {
	Route(ctx context.Context, req *types.ChatRequest, out workflow.Emitter) error
}

type ChatHandler struct {
	router    ChatRouter
	validator middleware.TokenValidator
	limiter   *middleware.RateLimiter
	logger    *zap.SugaredLogger
}

// NewChatHandler creates a chat handler. limiter may be nil.
func NewChatHandler(router ChatRouter, validator middleware.TokenValidator, limiter *middleware.RateLimiter, logger *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{
		router:    router,
		validator: validator,
		limiter:   limiter,
		logger:    logger.Named("chat"),
	}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{middleware.OptionalAuth(h.validator)}
	if h.limiter != nil {
		handlers = append(handlers, h.limiter.RateLimitMiddleware())
	}
	handlers = append(handlers, h.Chat)
	router.POST("/chat", handlers...)
}

// Chat streams the progress of one chat turn as newline-delimited JSON
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	c.Header("Content-Type", "application/x-ndjson")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	err := h.router.Route(c.Request.Context(), &req, workflow.NewNDJSONEmitter(c.Writer))
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		h.logger.Debugw("client went away mid-stream", "request_id", c.GetString("request_id"))
	default:
		h.logger.Warnw("chat stream ended with error", "error", err, "request_id", c.GetString("request_id"))
	}
}
