// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/cart"
	"github.com/your-org/storefront-checkout/internal/domain/checkout"
	"github.com/your-org/storefront-checkout/internal/domain/gateway"
	"github.com/your-org/storefront-checkout/internal/domain/order"
	"github.com/your-org/storefront-checkout/internal/infrastructure/orderapi"
	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	gatewayAdapter  *gateway.Adapter
	snapshots       cart.SnapshotStore
	config          *config.Config
	log             *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(
	checkoutService *checkout.Service,
	gatewayAdapter *gateway.Adapter,
	snapshots cart.SnapshotStore,
	cfg *config.Config,
	logger *logrus.Logger,
) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		gatewayAdapter:  gatewayAdapter,
		snapshots:       snapshots,
		config:          cfg,
		log:             logger,
	}
}

// DismissRequest identifies the payment window being dismissed
type DismissRequest struct {
	GatewayOrderID string `json:"gateway_order_id" binding:"required"`
}

// Submit handles POST /checkout
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req checkout.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := cart.NewStore(c.Request.Context(), getOrCreateSessionID(c), h.snapshots, h.log)

	attempt, err := h.checkoutService.Submit(c.Request.Context(), store, req)
	if err != nil {
		h.renderCheckoutError(c, err)
		return
	}

	created := attempt.Order()
	options := h.gatewayAdapter.Options(gateway.Session{
		ID:       created.GatewaySessionID,
		Amount:   created.Total,
		Currency: created.Currency,
	}, order.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Order created successfully",
		"data": gin.H{
			"attempt": h.checkoutService.GetAttempt(attempt.ID()),
			"order":   created,
			"gateway": options,
		},
	})
}

// Callback handles POST /checkout/callback. The payload echoes what the
// payment gateway hands to its success callback; it is treated as a claim
// and verified server-side before the attempt can succeed.
func (h *CheckoutHandler) Callback(c *gin.Context) {
	var result gateway.PaymentResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.gatewayAdapter.Resolve(result.GatewayOrderID, result); err != nil {
		h.renderSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment result accepted",
	})
}

// Dismiss handles POST /checkout/dismiss
func (h *CheckoutHandler) Dismiss(c *gin.Context) {
	var req DismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.gatewayAdapter.Dismiss(req.GatewayOrderID); err != nil {
		h.renderSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment window dismissed",
	})
}

// GetAttempt handles GET /checkout/attempts/:id
func (h *CheckoutHandler) GetAttempt(c *gin.Context) {
	view := h.checkoutService.GetAttempt(c.Param("id"))
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Checkout attempt not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout attempt retrieved successfully",
		"data":    view,
	})
}

// Abandon handles POST /checkout/attempts/:id/abandon
func (h *CheckoutHandler) Abandon(c *gin.Context) {
	h.checkoutService.Abandon(c.Param("id"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout attempt abandoned",
	})
}

func (h *CheckoutHandler) renderCheckoutError(c *gin.Context, err error) {
	var validationErr *errs.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": validationErr.Error(),
		})
		return
	}

	if errors.Is(err, checkout.ErrCheckoutInFlight) {
		c.JSON(http.StatusConflict, gin.H{
			"error": "A checkout is already in progress for this cart",
		})
		return
	}

	if errors.Is(err, errs.ErrGatewayLoad) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Payment gateway is unavailable, please try again",
		})
		return
	}

	var apiErr *orderapi.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		c.JSON(apiErr.StatusCode, gin.H{
			"error": apiErr.Message,
		})
		return
	}

	h.log.WithError(err).Error("Checkout submission failed")
	c.JSON(http.StatusBadGateway, gin.H{
		"error": "Order could not be created, please try again",
	})
}

func (h *CheckoutHandler) renderSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrNoSuchSession):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No open payment session for this order",
		})
	case errors.Is(err, gateway.ErrAlreadySettled):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Payment session is already settled",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process payment result",
		})
	}
}
