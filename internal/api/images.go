package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/fridgechef/backend/internal/middleware"
	"github.com/pageza/fridgechef/backend/internal/service"
	"github.com/pageza/fridgechef/backend/internal/types"
)

type ImageHandler struct {
	images    service.ImageStore
	validator middleware.TokenValidator
	logger    *zap.SugaredLogger
}

func NewImageHandler(images service.ImageStore, validator middleware.TokenValidator, logger *zap.SugaredLogger) *ImageHandler {
	return &ImageHandler{
		images:    images,
		validator: validator,
		logger:    logger.Named("images"),
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/images", middleware.OptionalAuth(h.validator), h.Upload)
}

// Upload stores a fridge photo and returns the key chat requests can refer to
func (h *ImageHandler) Upload(c *gin.Context) {
	var req types.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 is required"})
		return
	}

	key, err := h.images.Store(c.Request.Context(), req.ImageBase64)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageStoreDisabled):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image uploads are not available"})
		case errors.Is(err, service.ErrNoImage),
			errors.Is(err, service.ErrInvalidImageEncoding),
			errors.Is(err, service.ErrUnreadableImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Errorw("failed to store image", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image_key": key})
}
