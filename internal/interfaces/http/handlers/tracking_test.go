// internal/interfaces/http/handlers/tracking_test.go
package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-checkout/internal/domain/order"
	"github.com/your-org/storefront-checkout/internal/domain/tracking"
	"github.com/your-org/storefront-checkout/internal/infrastructure/orderapi"
)

// fakeLookupAPI serves canned order lists and artifacts
type fakeLookupAPI struct {
	orders []order.Order
}

func (f *fakeLookupAPI) ListOrders(ctx context.Context, params orderapi.LookupParams) (*orderapi.LookupResponse, error) {
	return &orderapi.LookupResponse{Orders: f.orders}, nil
}

func (f *fakeLookupAPI) Download(ctx context.Context, orderNumber string) (*orderapi.DownloadResult, error) {
	return &orderapi.DownloadResult{
		Data:        []byte("zipbytes"),
		ContentType: "application/zip",
		Filename:    orderNumber + ".zip",
	}, nil
}

func trackingRouter(api *fakeLookupAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTrackingHandler(tracking.NewService(api, testLogger()), testLogger())

	r := gin.New()
	r.GET("/orders/track", handler.Track)
	r.GET("/orders/:orderNumber/download", handler.Download)
	return r
}

func TestTrackByEmail(t *testing.T) {
	r := trackingRouter(&fakeLookupAPI{orders: []order.Order{{OrderNumber: "MRK-AB12CD", Status: order.StatusApproved}}})

	w := doJSON(t, r, http.MethodGet, "/orders/track?identifier=user@example.com", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(1), data["count"])
}

func TestTrackNoMatchesIsOK(t *testing.T) {
	r := trackingRouter(&fakeLookupAPI{})

	w := doJSON(t, r, http.MethodGet, "/orders/track?identifier=user@example.com", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, float64(0), data["count"])
}

func TestTrackInvalidIdentifier(t *testing.T) {
	r := trackingRouter(&fakeLookupAPI{})

	w := doJSON(t, r, http.MethodGet, "/orders/track?identifier=not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/orders/track", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadApproved(t *testing.T) {
	r := trackingRouter(&fakeLookupAPI{orders: []order.Order{{
		OrderNumber:       "MRK-AB12CD",
		Status:            order.StatusApproved,
		DownloadAvailable: true,
	}}})

	w := doJSON(t, r, http.MethodGet, "/orders/MRK-AB12CD/download", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "MRK-AB12CD.zip")
	assert.Equal(t, "zipbytes", w.Body.String())
}

func TestDownloadPendingOrderIsForbidden(t *testing.T) {
	r := trackingRouter(&fakeLookupAPI{orders: []order.Order{{
		OrderNumber:       "MRK-AB12CD",
		Status:            order.StatusPending,
		DownloadAvailable: true,
	}}})

	w := doJSON(t, r, http.MethodGet, "/orders/MRK-AB12CD/download", "", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDownloadInvalidOrderNumber(t *testing.T) {
	r := trackingRouter(&fakeLookupAPI{})

	w := doJSON(t, r, http.MethodGet, "/orders/not-a-number/download", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
