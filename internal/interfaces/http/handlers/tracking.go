// internal/interfaces/http/handlers/tracking.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/domain/tracking"
	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

// TrackingHandler handles order tracking endpoints
type TrackingHandler struct {
	trackingService *tracking.Service
	log             *logrus.Logger
}

// NewTrackingHandler creates a new tracking handler
func NewTrackingHandler(trackingService *tracking.Service, logger *logrus.Logger) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		log:             logger,
	}
}

// Track handles GET /orders/track. The identifier may be an email address
// or an order number; a well-formed identifier with no matching orders is
// a successful lookup with an empty list, not an error.
func (h *TrackingHandler) Track(c *gin.Context) {
	identifier := c.Query("identifier")

	orders, err := h.trackingService.Lookup(c.Request.Context(), identifier)
	if err != nil {
		h.renderTrackingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data": gin.H{
			"orders": orders,
			"count":  len(orders),
		},
	})
}

// Download handles GET /orders/:orderNumber/download
func (h *TrackingHandler) Download(c *gin.Context) {
	orderNumber := c.Param("orderNumber")

	result, err := h.trackingService.Download(c.Request.Context(), orderNumber)
	if err != nil {
		h.renderTrackingError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *TrackingHandler) renderTrackingError(c *gin.Context, err error) {
	var validationErr *errs.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": validationErr.Error(),
		})
		return
	}

	if errors.Is(err, tracking.ErrDownloadUnavailable) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Download is not available for this order",
		})
		return
	}

	h.log.WithError(err).Error("Order lookup failed")
	c.JSON(http.StatusBadGateway, gin.H{
		"error": "Order service is unavailable, please try again",
	})
}
