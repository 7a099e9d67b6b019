// internal/infrastructure/orderapi/client_test.go
package orderapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

func testClient(baseURL string) *Client {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return NewClient(config.OrderAPIConfig{
		BaseURL:      baseURL,
		Timeout:      2 * time.Second,
		MaxAttempts:  3,
		RetryBackoff: time.Millisecond,
	}, logger)
}

func TestCreateOrder(t *testing.T) {
	var received CreateOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(CreateOrderResponse{
			OrderID:          "ord_1",
			OrderNumber:      "MRK-AB12CD",
			GatewaySessionID: "sess_1",
			Currency:         "INR",
			Subtotal:         49900,
			Total:            49900,
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.CreateOrder(context.Background(), &CreateOrderRequest{
		Items:    []LineItem{{ItemID: "p1", Name: "Guide", UnitPrice: 49900, Quantity: 1}},
		Currency: "INR",
	})

	require.NoError(t, err)
	assert.Equal(t, "MRK-AB12CD", resp.OrderNumber)
	assert.Equal(t, "sess_1", resp.GatewaySessionID)
	assert.Equal(t, "INR", received.Currency)
	require.Len(t, received.Items, 1)
	assert.Equal(t, "p1", received.Items[0].ItemID)
}

func TestCreateOrderIsNeverRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIError{ErrorCode: "internal", Message: "boom", StatusCode: 500})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateOrder(context.Background(), &CreateOrderRequest{Currency: "INR"})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "order creation must be a single attempt even on server errors")
}

func TestCreateOrderParsesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(APIError{
			ErrorCode:  "invalid_coupon",
			Message:    "Coupon code has expired",
			StatusCode: 400,
		})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateOrder(context.Background(), &CreateOrderRequest{Currency: "INR", CouponCode: "OLD"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "invalid_coupon", apiErr.ErrorCode)
	assert.Equal(t, "Coupon code has expired", apiErr.Message)
}

func TestCreateOrderSynthesizesErrorForUnexpectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream broke</html>"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.CreateOrder(context.Background(), &CreateOrderRequest{Currency: "INR"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "unexpected_response", apiErr.ErrorCode)
}

func TestCreateOrderWrapsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := testClient(server.URL)
	_, err := client.CreateOrder(context.Background(), &CreateOrderRequest{Currency: "INR"})

	assert.True(t, errs.IsNetwork(err))
}

func TestVerifyOrder(t *testing.T) {
	var received VerifyOrderRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/verify", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(VerifyOrderResponse{Success: true, Message: "verified"})
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.VerifyOrder(context.Background(), &VerifyOrderRequest{
		GatewayOrderID:   "sess_1",
		GatewayPaymentID: "pay_1",
		GatewaySignature: "sig_1",
		OrderNumber:      "MRK-AB12CD",
	})

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "sig_1", received.GatewaySignature)
}

func TestListOrders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "user@example.com", r.URL.Query().Get("email"))

		w.Write([]byte(`{"orders":[{"order_number":"MRK-AB12CD","status":"approved"}],"pagination":{"page":1,"limit":10,"total":1}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.ListOrders(context.Background(), LookupParams{Email: "user@example.com"})

	require.NoError(t, err)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "MRK-AB12CD", resp.Orders[0].OrderNumber)
}

func TestListOrdersEmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pagination":{"page":1,"limit":10,"total":0}}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.ListOrders(context.Background(), LookupParams{OrderNumber: "MRK-ZZZZZZ"})

	require.NoError(t, err)
	assert.NotNil(t, resp.Orders)
	assert.Empty(t, resp.Orders)
}

func TestListOrdersRetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(APIError{ErrorCode: "unavailable", Message: "try later", StatusCode: 503})
			return
		}
		w.Write([]byte(`{"orders":[]}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.ListOrders(context.Background(), LookupParams{Email: "user@example.com"})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders/MRK-AB12CD/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", `attachment; filename="marketing-kit.zip"`)
		w.Write([]byte("zipbytes"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	result, err := client.Download(context.Background(), "MRK-AB12CD")

	require.NoError(t, err)
	assert.Equal(t, []byte("zipbytes"), result.Data)
	assert.Equal(t, "application/zip", result.ContentType)
	assert.Equal(t, "marketing-kit.zip", result.Filename)
}

func TestDownloadFallbackFilename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write([]byte("zipbytes"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	result, err := client.Download(context.Background(), "MRK-AB12CD")

	require.NoError(t, err)
	assert.Equal(t, "MRK-AB12CD.zip", result.Filename)
}

func TestDownloadForbidden(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(APIError{ErrorCode: "not_approved", Message: "order not approved", StatusCode: 403})
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Download(context.Background(), "MRK-AB12CD")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
