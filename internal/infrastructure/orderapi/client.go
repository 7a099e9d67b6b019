// internal/infrastructure/orderapi/client.go
package orderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/order"
	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

// APIError is the structured error body returned by the order service
type APIError struct {
	Success    bool           `json:"success"`
	ErrorCode  string         `json:"error"`
	Message    string         `json:"message"`
	StatusCode int            `json:"statusCode"`
	Details    map[string]any `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("order API error %d (%s): %s", e.StatusCode, e.ErrorCode, e.Message)
}

// LineItem represents a cart line submitted for order creation
type LineItem struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Format    string `json:"format,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest represents order creation data
type CreateOrderRequest struct {
	Items      []LineItem     `json:"items"`
	Customer   order.Customer `json:"customer"`
	Currency   string         `json:"currency"`
	CouponCode string         `json:"coupon_code,omitempty"`
}

// CreateOrderResponse is the server's answer to order creation. The gateway
// session ID opens the payment window for exactly this order.
type CreateOrderResponse struct {
	OrderID          string     `json:"order_id"`
	OrderNumber      string     `json:"order_number"`
	GatewaySessionID string     `json:"gateway_session_id"`
	Amount           int64      `json:"amount"`
	Currency         string     `json:"currency"`
	Subtotal         int64      `json:"subtotal"`
	Discount         int64      `json:"discount"`
	Total            int64      `json:"total"`
	Items            []LineItem `json:"items"`
}

// VerifyOrderRequest carries the gateway's payment proof for server-side
// signature verification
type VerifyOrderRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
	OrderNumber      string `json:"order_number"`
}

// VerifyOrderResponse reports the verification outcome
type VerifyOrderResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LookupParams selects orders by customer email or order number
type LookupParams struct {
	Email       string
	OrderNumber string
	Page        int
	Limit       int
}

// LookupResponse is a paginated order list
type LookupResponse struct {
	Orders     []order.Order    `json:"orders"`
	Pagination order.Pagination `json:"pagination"`
}

// DownloadResult is the purchased artifact returned by the order service
type DownloadResult struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Client talks to the remote order service. All calls go through a circuit
// breaker; only idempotent reads are retried.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	retry   RetryPolicy
	log     *logrus.Logger
}

// NewClient creates an order API client
func NewClient(cfg config.OrderAPIConfig, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0). // Retries are handled by the policy, not resty
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "order-api",
		Interval: 15 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		retry: RetryPolicy{
			MaxAttempts: cfg.MaxAttempts,
			Backoff:     cfg.RetryBackoff,
			Retryable:   DefaultRetryable,
		},
		log: logger,
	}
}

// CreateOrder creates an order from the submitted cart. Never retried
// automatically; a failed creation is resubmitted by the customer as a new
// order attempt.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	var out CreateOrderResponse
	err := NoRetry().Do(ctx, func() error {
		return c.call(ctx, "create order", func() (*resty.Response, error) {
			return c.http.R().SetContext(ctx).SetBody(req).Post("/orders")
		}, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyOrder asks the order service to verify the gateway's payment
// signature. This is the trust boundary: a claimed client-side success
// means nothing until this call reports success.
func (c *Client) VerifyOrder(ctx context.Context, req *VerifyOrderRequest) (*VerifyOrderResponse, error) {
	var out VerifyOrderResponse
	err := NoRetry().Do(ctx, func() error {
		return c.call(ctx, "verify order", func() (*resty.Response, error) {
			return c.http.R().SetContext(ctx).SetBody(req).Post("/orders/verify")
		}, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders fetches orders by email or order number. An empty result is a
// valid answer, not an error. Idempotent, so retried per policy.
func (c *Client) ListOrders(ctx context.Context, params LookupParams) (*LookupResponse, error) {
	query := url.Values{}
	if params.Email != "" {
		query.Set("email", params.Email)
	}
	if params.OrderNumber != "" {
		query.Set("orderNumber", params.OrderNumber)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	var out LookupResponse
	err := c.retry.Do(ctx, func() error {
		return c.call(ctx, "list orders", func() (*resty.Response, error) {
			return c.http.R().SetContext(ctx).SetQueryParamsFromValues(query).Get("/orders")
		}, &out)
	})
	if err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []order.Order{}
	}
	return &out, nil
}

// Download fetches the purchased artifact. The order service answers 403
// for orders that are not approved.
func (c *Client) Download(ctx context.Context, orderNumber string) (*DownloadResult, error) {
	var result *DownloadResult
	err := c.retry.Do(ctx, func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			Get(fmt.Sprintf("/orders/%s/download", url.PathEscape(orderNumber)))
		if err != nil {
			return &errs.NetworkError{Op: "download order", Err: err}
		}
		if resp.IsError() {
			return c.parseAPIError(resp)
		}

		result = &DownloadResult{
			Data:        resp.Body(),
			ContentType: resp.Header().Get("Content-Type"),
			Filename:    filenameFromDisposition(resp.Header().Get("Content-Disposition"), orderNumber),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// call executes one HTTP exchange through the circuit breaker and decodes a
// JSON success body into out.
func (c *Client) call(ctx context.Context, op string, do func() (*resty.Response, error), out any) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := do()
		if err != nil {
			return nil, &errs.NetworkError{Op: op, Err: err}
		}
		if resp.IsError() {
			return nil, c.parseAPIError(resp)
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
		}
		return nil, nil
	})

	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &errs.NetworkError{Op: op, Err: err}
	}
	return err
}

// parseAPIError decodes the structured error body, falling back to a
// synthesized one when the body is not the documented shape.
func (c *Client) parseAPIError(resp *resty.Response) error {
	var apiErr APIError
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil || apiErr.Message == "" {
		apiErr = APIError{
			ErrorCode:  "unexpected_response",
			Message:    resp.Status(),
			StatusCode: resp.StatusCode(),
		}
	}
	if apiErr.StatusCode == 0 {
		apiErr.StatusCode = resp.StatusCode()
	}

	c.log.WithFields(logrus.Fields{
		"status":  apiErr.StatusCode,
		"code":    apiErr.ErrorCode,
		"message": apiErr.Message,
	}).Warn("Order API returned an error")

	return &apiErr
}

func filenameFromDisposition(disposition, orderNumber string) string {
	const marker = `filename="`
	for i := 0; i+len(marker) <= len(disposition); i++ {
		if disposition[i:i+len(marker)] == marker {
			rest := disposition[i+len(marker):]
			for j := 0; j < len(rest); j++ {
				if rest[j] == '"' {
					return rest[:j]
				}
			}
		}
	}
	return orderNumber + ".zip"
}
