// internal/domain/tracking/service.go
package tracking

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/domain/order"
	"github.com/your-org/storefront-checkout/internal/infrastructure/orderapi"
	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

// ErrDownloadUnavailable is returned when a download is requested for an
// order that has not been approved yet.
var ErrDownloadUnavailable = errors.New("download not available for this order")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Identifier is a classified tracking input: exactly one field is set
type Identifier struct {
	Email       string `json:"email,omitempty"`
	OrderNumber string `json:"order_number,omitempty"`
}

// OrderAPI is the slice of the order service the tracker needs
type OrderAPI interface {
	ListOrders(ctx context.Context, params orderapi.LookupParams) (*orderapi.LookupResponse, error)
	Download(ctx context.Context, orderNumber string) (*orderapi.DownloadResult, error)
}

// Service locates orders by a free-text identifier and gates downloads on
// order state.
type Service struct {
	api OrderAPI
	log *logrus.Logger
}

// NewService creates a tracking service
func NewService(api OrderAPI, logger *logrus.Logger) *Service {
	return &Service{
		api: api,
		log: logger,
	}
}

// Classify decides whether the input is a customer email or an order
// number. Email shape is tested first; anything matching neither is
// rejected before any network call.
func Classify(raw string) (Identifier, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return Identifier{}, errs.NewValidation("identifier", "identifier is required")
	}

	if emailPattern.MatchString(input) {
		return Identifier{Email: input}, nil
	}

	if candidate := strings.ToUpper(input); order.ValidNumber(candidate) {
		return Identifier{OrderNumber: candidate}, nil
	}

	return Identifier{}, errs.NewValidation("identifier", "enter an email address or an order number like MRK-AB12CD")
}

// Lookup classifies the identifier and queries the order service. An empty
// result is a valid "no matches" answer, not an error.
func (s *Service) Lookup(ctx context.Context, raw string) ([]order.Order, error) {
	ident, err := Classify(raw)
	if err != nil {
		return nil, err
	}

	resp, err := s.api.ListOrders(ctx, orderapi.LookupParams{
		Email:       ident.Email,
		OrderNumber: ident.OrderNumber,
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"by_email": ident.Email != "",
		"matches":  len(resp.Orders),
	}).Info("Order lookup completed")

	return resp.Orders, nil
}

// Download fetches the purchased artifact for an approved order. The
// action is refused locally when the order is not in a downloadable state.
func (s *Service) Download(ctx context.Context, orderNumber string) (*orderapi.DownloadResult, error) {
	number := strings.ToUpper(strings.TrimSpace(orderNumber))
	if !order.ValidNumber(number) {
		return nil, errs.NewValidation("order_number", "order number is not valid")
	}

	resp, err := s.api.ListOrders(ctx, orderapi.LookupParams{OrderNumber: number})
	if err != nil {
		return nil, err
	}
	if len(resp.Orders) == 0 {
		return nil, ErrDownloadUnavailable
	}

	found := resp.Orders[0]
	if !found.CanDownload() {
		s.log.WithFields(logrus.Fields{
			"order_number": number,
			"status":       found.Status,
		}).Info("Download refused for unapproved order")
		return nil, ErrDownloadUnavailable
	}

	return s.api.Download(ctx, number)
}
