// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/cart"
	"github.com/your-org/storefront-checkout/internal/domain/currency"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	snapshots cart.SnapshotStore
	config    *config.Config
	log       *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(snapshots cart.SnapshotStore, cfg *config.Config, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		snapshots: snapshots,
		config:    cfg,
		log:       logger,
	}
}

// cartPayload is the cart representation served to the storefront
type cartPayload struct {
	Items             []cart.Item `json:"items"`
	Totals            cart.Totals `json:"totals"`
	SelectedCurrency  string      `json:"selected_currency"`
	FormattedSubtotal string      `json:"formatted_subtotal"`
	DrawerOpen        bool        `json:"drawer_open"`
}

// UpdateQuantityRequest represents a quantity change for a cart line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetCurrencyRequest represents a display currency selection
type SetCurrencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	store := h.store(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    h.payload(store),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.Product
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := h.store(c)
	store.AddItem(c.Request.Context(), req)

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    h.payload(store),
	})
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := h.store(c)
	store.UpdateQuantity(c.Request.Context(), c.Param("id"), req.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    h.payload(store),
	})
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	store := h.store(c)
	store.RemoveItem(c.Request.Context(), c.Param("id"))

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    h.payload(store),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	store := h.store(c)
	store.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	store := h.store(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data": gin.H{
			"count": store.ItemCount(),
		},
	})
}

// SetCurrency handles PUT /cart/currency
func (h *CartHandler) SetCurrency(c *gin.Context) {
	var req SetCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	store := h.store(c)
	store.SetCurrency(c.Request.Context(), req.Currency)

	c.JSON(http.StatusOK, gin.H{
		"message": "Currency updated successfully",
		"data":    h.payload(store),
	})
}

// store hydrates the cart for the current session
func (h *CartHandler) store(c *gin.Context) *cart.Store {
	return cart.NewStore(c.Request.Context(), getOrCreateSessionID(c), h.snapshots, h.log)
}

func (h *CartHandler) payload(store *cart.Store) cartPayload {
	totals := store.GetTotals()
	selected := store.SelectedCurrency()
	if selected == "" {
		selected = currency.DefaultCode
	}

	return cartPayload{
		Items:             store.Items(),
		Totals:            totals,
		SelectedCurrency:  selected,
		FormattedSubtotal: currency.Format(totals.Subtotal, selected),
		DrawerOpen:        store.DrawerOpen(),
	}
}

// getOrCreateSessionID gets session ID from cookie or creates a new one
func getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie("session_id")
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()

		// Set session cookie (30 days); the cart itself persists until cleared
		c.SetCookie("session_id", sessionID, 30*86400, "/", "", false, true)
	}

	return sessionID
}
