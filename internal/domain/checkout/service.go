// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/cart"
	"github.com/your-org/storefront-checkout/internal/domain/currency"
	"github.com/your-org/storefront-checkout/internal/domain/gateway"
	"github.com/your-org/storefront-checkout/internal/domain/order"
	"github.com/your-org/storefront-checkout/internal/infrastructure/orderapi"
	"github.com/your-org/storefront-checkout/internal/pkg/errs"
)

// State represents where a checkout attempt is in its lifecycle
type State string

const (
	StateIdle            State = "idle"
	StateCreatingOrder   State = "creating_order"
	StateAwaitingPayment State = "awaiting_payment"
	StateVerifying       State = "verifying"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

// ErrCheckoutInFlight is returned when a submission arrives while another
// attempt for the same cart is still in progress. Guards against duplicate
// order creation from double submits.
var ErrCheckoutInFlight = errors.New("a checkout attempt is already in flight")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// OrderAPI is the slice of the order service the orchestrator needs
type OrderAPI interface {
	CreateOrder(ctx context.Context, req *orderapi.CreateOrderRequest) (*orderapi.CreateOrderResponse, error)
	VerifyOrder(ctx context.Context, req *orderapi.VerifyOrderRequest) (*orderapi.VerifyOrderResponse, error)
}

// PaymentGateway is the slice of the gateway adapter the orchestrator needs
type PaymentGateway interface {
	EnsureLoaded(ctx context.Context) bool
	Open(sess gateway.Session, customer order.Customer, onSuccess func(gateway.PaymentResult), onDismiss func()) (*gateway.Handle, error)
	Close(h *gateway.Handle)
}

// SubmitRequest is the validated checkout form
type SubmitRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	CouponCode string `json:"coupon_code,omitempty"`
}

// Attempt tracks one checkout from submission to its terminal state
type Attempt struct {
	id      string
	cartKey string

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	err       error
	order     *orderapi.CreateOrderResponse
	handle    *gateway.Handle
	cart      *cart.Store
	customer  order.Customer
	dismissed bool
}

// ID returns the attempt identifier
func (a *Attempt) ID() string {
	return a.id
}

// AttemptView is a read-only snapshot of an attempt for the UI boundary
type AttemptView struct {
	ID               string `json:"id"`
	State            State  `json:"state"`
	OrderNumber      string `json:"order_number,omitempty"`
	GatewaySessionID string `json:"gateway_session_id,omitempty"`
	RedirectPath     string `json:"redirect_path"`
	Dismissed        bool   `json:"dismissed,omitempty"`
	Error            string `json:"error,omitempty"`
}

// Service drives the create-order, collect-payment, verify-payment protocol.
// Payment verification success is the single point at which a purchase is
// considered complete; the gateway's client-side callback is never trusted
// on its own.
type Service struct {
	api OrderAPI
	gw  PaymentGateway
	cfg config.CheckoutConfig
	log *logrus.Logger

	mu       sync.Mutex
	attempts map[string]*Attempt // by attempt ID
	active   map[string]*Attempt // by cart key, non-terminal only
}

// NewService creates a checkout orchestrator
func NewService(api OrderAPI, gw PaymentGateway, cfg config.CheckoutConfig, logger *logrus.Logger) *Service {
	return &Service{
		api:      api,
		gw:       gw,
		cfg:      cfg,
		log:      logger,
		attempts: make(map[string]*Attempt),
		active:   make(map[string]*Attempt),
	}
}

// Submit validates the form, creates an order and opens a payment window.
// Validation failures never reach the network. Only one attempt per cart
// may be in flight; a concurrent submission is rejected before any order
// API call is made.
func (s *Service) Submit(ctx context.Context, cartStore *cart.Store, form SubmitRequest) (*Attempt, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	items := cartStore.Items()
	if len(items) == 0 {
		return nil, errs.NewValidation("cart", "cart is empty")
	}

	if !s.gw.EnsureLoaded(ctx) {
		return nil, errs.ErrGatewayLoad
	}

	attempt := &Attempt{
		id:      uuid.New().String(),
		cartKey: cartStore.ID(),
		state:   StateCreatingOrder,
		cart:    cartStore,
		customer: order.Customer{
			Name:    strings.TrimSpace(form.Name),
			Email:   strings.TrimSpace(form.Email),
			Phone:   strings.TrimSpace(form.Phone),
			Company: strings.TrimSpace(form.Company),
		},
	}
	// The attempt outlives the submitting request: the payment window is
	// resolved by a later callback. Cancellation happens via Abandon.
	attempt.ctx, attempt.cancel = context.WithCancel(context.Background())

	s.mu.Lock()
	if existing, ok := s.active[attempt.cartKey]; ok && !existing.terminal() {
		s.mu.Unlock()
		return nil, ErrCheckoutInFlight
	}
	s.active[attempt.cartKey] = attempt
	s.attempts[attempt.id] = attempt
	s.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{
		"attempt_id": attempt.id,
		"cart_id":    attempt.cartKey,
	})
	log.Info("Checkout attempt started")

	selected := cartStore.SelectedCurrency()
	if selected == "" {
		selected = currency.DefaultCode
	}
	req := &orderapi.CreateOrderRequest{
		Items:      toLineItems(items),
		Customer:   attempt.customer,
		Currency:   selected,
		CouponCode: form.CouponCode,
	}

	created, err := s.api.CreateOrder(attempt.ctx, req)
	if err != nil {
		log.WithError(err).Warn("Order creation failed")
		s.settle(attempt, StateFailed, err)
		return attempt, err
	}

	log.WithFields(logrus.Fields{
		"order_number":    created.OrderNumber,
		"gateway_session": created.GatewaySessionID,
		"total":           created.Total,
	}).Info("Order created, awaiting payment")

	sess := gateway.Session{
		ID:       created.GatewaySessionID,
		Amount:   created.Total,
		Currency: created.Currency,
	}
	handle, err := s.gw.Open(sess, attempt.customer,
		func(result gateway.PaymentResult) { s.handlePaymentSuccess(attempt, result) },
		func() { s.handleDismiss(attempt) },
	)
	if err != nil {
		s.settle(attempt, StateFailed, err)
		return attempt, err
	}

	attempt.mu.Lock()
	attempt.order = created
	attempt.handle = handle
	attempt.state = StateAwaitingPayment
	attempt.mu.Unlock()

	return attempt, nil
}

// Abandon cancels an in-flight attempt, used when the customer navigates
// away mid-flow. Any response still pending for the attempt is ignored by
// the stale guard rather than acted upon.
func (s *Service) Abandon(attemptID string) {
	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	s.mu.Unlock()
	if !ok {
		return
	}

	attempt.cancel()

	attempt.mu.Lock()
	handle := attempt.handle
	attempt.handle = nil
	done := attempt.terminalLocked()
	attempt.mu.Unlock()

	if handle != nil {
		s.gw.Close(handle)
	}
	if !done {
		s.settle(attempt, StateFailed, context.Canceled)
		s.log.WithField("attempt_id", attemptID).Info("Checkout attempt abandoned")
	}
}

// GetAttempt returns a snapshot of the attempt, or nil when unknown
func (s *Service) GetAttempt(attemptID string) *AttemptView {
	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	s.mu.Unlock()
	if !ok {
		return nil
	}

	return attempt.view()
}

// handlePaymentSuccess runs when the gateway reports a completed payment.
// The claimed payment is forwarded to the order service for signature
// verification; only a verified payment moves the attempt to Succeeded.
func (s *Service) handlePaymentSuccess(attempt *Attempt, result gateway.PaymentResult) {
	attempt.mu.Lock()
	if attempt.state != StateAwaitingPayment || attempt.ctx.Err() != nil {
		attempt.mu.Unlock()
		s.log.WithField("attempt_id", attempt.id).Warn("Ignoring payment result for inactive attempt")
		return
	}
	created := attempt.order
	attempt.state = StateVerifying
	attempt.handle = nil
	attempt.mu.Unlock()

	log := s.log.WithFields(logrus.Fields{
		"attempt_id":   attempt.id,
		"order_number": created.OrderNumber,
	})

	if result.GatewayOrderID != created.GatewaySessionID {
		log.Warn("Payment result session mismatch")
		s.settle(attempt, StateFailed, &errs.VerificationError{
			OrderNumber: created.OrderNumber,
			Reason:      "gateway session mismatch",
		})
		return
	}

	ctx, cancel := context.WithTimeout(attempt.ctx, s.cfg.VerifyTimeout)
	defer cancel()

	resp, err := s.api.VerifyOrder(ctx, &orderapi.VerifyOrderRequest{
		GatewayOrderID:   result.GatewayOrderID,
		GatewayPaymentID: result.GatewayPaymentID,
		GatewaySignature: result.GatewaySignature,
		OrderNumber:      created.OrderNumber,
	})

	// Stale guard: a response arriving after cancellation is dropped.
	if attempt.ctx.Err() != nil {
		log.Info("Dropping verification result for cancelled attempt")
		return
	}

	if err != nil {
		log.WithError(err).Warn("Payment verification call failed")
		s.settle(attempt, StateFailed, err)
		return
	}

	if !resp.Success {
		// Security-relevant rejection: the reason stays in the logs, the
		// customer sees a generic failure.
		log.WithField("reason", resp.Message).Warn("Payment verification rejected")
		s.settle(attempt, StateFailed, &errs.VerificationError{
			OrderNumber: created.OrderNumber,
			Reason:      resp.Message,
		})
		return
	}

	log.Info("Payment verified, purchase complete")
	s.settle(attempt, StateSucceeded, nil)

	if s.cfg.ClearCartOnSuccess {
		attempt.cart.Clear(context.Background())
	}
}

// handleDismiss runs when the customer closes the payment window. No server
// call is made; the attempt returns to idle with cart and form untouched.
func (s *Service) handleDismiss(attempt *Attempt) {
	attempt.mu.Lock()
	if attempt.state != StateAwaitingPayment {
		attempt.mu.Unlock()
		return
	}
	attempt.dismissed = true
	attempt.handle = nil
	attempt.mu.Unlock()

	s.settle(attempt, StateIdle, errs.ErrPaymentDismissed)
	s.log.WithField("attempt_id", attempt.id).Info("Payment window dismissed by customer")
}

// settle moves an attempt into a resting state and releases the in-flight
// slot for its cart so the customer can submit again.
func (s *Service) settle(attempt *Attempt, state State, err error) {
	attempt.mu.Lock()
	attempt.state = state
	attempt.err = err
	attempt.mu.Unlock()

	s.mu.Lock()
	if s.active[attempt.cartKey] == attempt {
		delete(s.active, attempt.cartKey)
	}
	s.mu.Unlock()
}

func (a *Attempt) terminal() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.terminalLocked()
}

func (a *Attempt) terminalLocked() bool {
	return a.state == StateSucceeded || a.state == StateFailed || (a.state == StateIdle && a.dismissed)
}

// State returns the current attempt state
func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Err returns the error the attempt settled with, if any
func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Order returns the created order, once the attempt has one
func (a *Attempt) Order() *orderapi.CreateOrderResponse {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.order
}

func (a *Attempt) view() *AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := &AttemptView{
		ID:           a.id,
		State:        a.state,
		RedirectPath: redirectPath(a.state, a.err),
		Dismissed:    a.dismissed,
	}
	if a.order != nil {
		v.OrderNumber = a.order.OrderNumber
		v.GatewaySessionID = a.order.GatewaySessionID
	}
	if a.err != nil && !errors.Is(a.err, errs.ErrPaymentDismissed) {
		v.Error = publicError(a.err)
	}
	return v
}

// redirectPath maps attempt states onto the storefront's result views
func redirectPath(state State, err error) string {
	switch state {
	case StateCreatingOrder, StateVerifying:
		return "/processing"
	case StateSucceeded:
		return "/success"
	case StateFailed:
		if errors.Is(err, context.Canceled) {
			return "/checkout"
		}
		return "/failure"
	default:
		return "/checkout"
	}
}

// publicError keeps user-facing messages generic. Verification mismatches
// in particular never reveal why the signature check failed.
func publicError(err error) string {
	switch {
	case errs.IsVerification(err):
		return "payment could not be verified"
	case errs.IsNetwork(err):
		return "service temporarily unavailable"
	case errors.Is(err, errs.ErrGatewayLoad):
		return "payment service unavailable"
	default:
		return "checkout failed"
	}
}

func validateForm(form SubmitRequest) error {
	if strings.TrimSpace(form.Name) == "" {
		return errs.NewValidation("name", "name is required")
	}

	email := strings.TrimSpace(form.Email)
	if email == "" {
		return errs.NewValidation("email", "email is required")
	}
	if !emailPattern.MatchString(email) {
		return errs.NewValidation("email", "email is not valid")
	}

	return nil
}

func toLineItems(items []cart.Item) []orderapi.LineItem {
	lines := make([]orderapi.LineItem, len(items))
	for i, item := range items {
		lines[i] = orderapi.LineItem{
			ItemID:    item.ItemID,
			Name:      item.Name,
			Format:    item.Format,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		}
	}
	return lines
}
