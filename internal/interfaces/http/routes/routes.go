// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/cart"
	"github.com/your-org/storefront-checkout/internal/domain/checkout"
	"github.com/your-org/storefront-checkout/internal/domain/currency"
	"github.com/your-org/storefront-checkout/internal/domain/gateway"
	"github.com/your-org/storefront-checkout/internal/domain/tracking"
	"github.com/your-org/storefront-checkout/internal/interfaces/http/handlers"
)

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, snapshots cart.SnapshotStore, cfg *config.Config, logger *logrus.Logger) {
	cartHandler := handlers.NewCartHandler(snapshots, cfg, logger)

	carts := rg.Group("/cart")
	{
		carts.GET("", cartHandler.GetCart)
		carts.GET("/count", cartHandler.GetCartCount)
		carts.DELETE("", cartHandler.ClearCart)

		carts.POST("/items", cartHandler.AddItem)
		carts.PUT("/items/:id", cartHandler.UpdateItem)
		carts.DELETE("/items/:id", cartHandler.RemoveItem)

		carts.PUT("/currency", cartHandler.SetCurrency)
	}

	// Supported display currencies for the storefront selector
	rg.GET("/currencies", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Currencies retrieved successfully",
			"data": gin.H{
				"currencies": currency.Codes(),
				"default":    currency.DefaultCode,
			},
		})
	})
}

// SetupCheckoutRoutes sets up checkout related routes
func SetupCheckoutRoutes(
	rg *gin.RouterGroup,
	checkoutService *checkout.Service,
	gatewayAdapter *gateway.Adapter,
	snapshots cart.SnapshotStore,
	cfg *config.Config,
	logger *logrus.Logger,
) {
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, gatewayAdapter, snapshots, cfg, logger)

	co := rg.Group("/checkout")
	{
		co.POST("", checkoutHandler.Submit)
		co.POST("/callback", checkoutHandler.Callback)
		co.POST("/dismiss", checkoutHandler.Dismiss)

		co.GET("/attempts/:id", checkoutHandler.GetAttempt)
		co.POST("/attempts/:id/abandon", checkoutHandler.Abandon)
	}
}

// SetupTrackingRoutes sets up order tracking routes
func SetupTrackingRoutes(rg *gin.RouterGroup, trackingService *tracking.Service, logger *logrus.Logger) {
	trackingHandler := handlers.NewTrackingHandler(trackingService, logger)

	orders := rg.Group("/orders")
	{
		orders.GET("/track", trackingHandler.Track)
		orders.GET("/:orderNumber/download", trackingHandler.Download)
	}
}
