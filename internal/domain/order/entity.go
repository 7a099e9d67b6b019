// internal/domain/order/entity.go
package order

import (
	"regexp"
	"time"
)

// Status represents the order status. Transitions are driven by the
// back-office approval workflow and are only ever observed here.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
	StatusRefunded   Status = "refunded"
)

// PaymentStatus represents payment status as reported by the order service
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// NumberPattern is the public order-number contract. Order numbers appear in
// user-facing tracking pages and URLs, so the format must not change without
// a migration plan.
var NumberPattern = regexp.MustCompile(`^MRK-[A-Z0-9]{6,}$`)

// Customer holds the customer details collected at checkout
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// Item represents a purchased line item
type Item struct {
	ItemID     string `json:"item_id"`
	Name       string `json:"name"`
	Format     string `json:"format,omitempty"`
	UnitPrice  int64  `json:"unit_price"` // In minor currency units
	Quantity   int    `json:"quantity"`
	TotalPrice int64  `json:"total_price"` // Quantity * UnitPrice
}

// Order is the read model served by the remote order service. This
// subsystem never persists it; it is fetched, displayed and acted on.
type Order struct {
	OrderNumber       string        `json:"order_number"`
	Status            Status        `json:"status"`
	PaymentStatus     PaymentStatus `json:"payment_status"`
	Customer          Customer      `json:"customer"`
	Items             []Item        `json:"items"`
	SubtotalAmount    int64         `json:"subtotal_amount"`
	DiscountAmount    int64         `json:"discount_amount"`
	TotalAmount       int64         `json:"total_amount"`
	Currency          string        `json:"currency"`
	CouponCode        string        `json:"coupon_code,omitempty"`
	DownloadAvailable bool          `json:"download_available"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// Pagination represents pagination information from list responses
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ValidNumber reports whether s matches the order-number format
func ValidNumber(s string) bool {
	return NumberPattern.MatchString(s)
}

// IsTerminal reports whether the order has reached a final state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusApproved || o.Status == StatusRejected || o.Status == StatusRefunded
}

// CanDownload reports whether the purchased artifact may be downloaded.
// Downloads are gated on back-office approval, not on payment alone.
func (o *Order) CanDownload() bool {
	return o.Status == StatusApproved && o.DownloadAvailable
}
