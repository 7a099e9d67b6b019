// internal/domain/gateway/adapter.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/domain/order"
)

// ErrNoSuchSession is returned when a resolution arrives for a session that
// has no open payment window.
var ErrNoSuchSession = errors.New("no open payment window for session")

// ErrAlreadySettled is returned when a second resolution arrives for a
// window that already fired. Exactly one of success or dismiss fires per
// Open; the adapter rejects anything beyond that rather than masking a
// misbehaving gateway.
var ErrAlreadySettled = errors.New("payment window already settled")

// Prefill carries customer fields shown pre-filled in the payment window
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme carries display options for the payment window
type Theme struct {
	Color string `json:"color"`
}

// Options is the gateway checkout constructor contract
type Options struct {
	Key      string  `json:"key"`
	Amount   int64   `json:"amount"`
	Currency string  `json:"currency"`
	OrderID  string  `json:"order_id"`
	Prefill  Prefill `json:"prefill"`
	Theme    Theme   `json:"theme"`
}

// PaymentResult is what the gateway hands back on a successful payment
type PaymentResult struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

// Session identifies one checkout's authorization window with the gateway
type Session struct {
	ID       string
	Amount   int64
	Currency string
}

// Handle represents one open payment window
type Handle struct {
	sessionID string
	onSuccess func(PaymentResult)
	onDismiss func()
}

// SessionID returns the gateway session this window belongs to
func (h *Handle) SessionID() string {
	return h.sessionID
}

// Adapter wraps the callback-based gateway client behind a load-once,
// resolve-once interface. The gateway script is fetched at most once per
// process; concurrent callers share the in-flight load.
type Adapter struct {
	cfg  config.GatewayConfig
	http *resty.Client
	log  *logrus.Logger

	loadMu   sync.Mutex
	loadDone chan struct{}
	loadOK   bool

	mu      sync.Mutex
	pending map[string]*Handle
	settled map[string]bool
}

// NewAdapter creates a payment gateway adapter
func NewAdapter(cfg config.GatewayConfig, logger *logrus.Logger) *Adapter {
	return &Adapter{
		cfg:     cfg,
		http:    resty.New().SetTimeout(cfg.Timeout),
		log:     logger,
		pending: make(map[string]*Handle),
		settled: make(map[string]bool),
	}
}

// EnsureLoaded makes sure the gateway client is available, performing the
// load at most once per process lifetime. It returns false rather than an
// error on failure so callers can branch into a recoverable error path.
// The outcome is cached either way, matching memoized-promise semantics.
func (a *Adapter) EnsureLoaded(ctx context.Context) bool {
	a.loadMu.Lock()
	if a.loadDone == nil {
		a.loadDone = make(chan struct{})
		go a.load(a.loadDone)
	}
	done := a.loadDone
	a.loadMu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return false
	}

	a.loadMu.Lock()
	defer a.loadMu.Unlock()
	return a.loadOK
}

func (a *Adapter) load(done chan struct{}) {
	resp, err := a.http.R().Head(a.cfg.CheckoutURL)
	ok := err == nil && !resp.IsError()
	if !ok {
		a.log.WithError(err).WithField("url", a.cfg.CheckoutURL).Warn("Payment gateway client failed to load")
	}

	a.loadMu.Lock()
	a.loadOK = ok
	a.loadMu.Unlock()
	close(done)
}

// Options builds the checkout constructor options for a session
func (a *Adapter) Options(sess Session, customer order.Customer) Options {
	return Options{
		Key:      a.cfg.KeyID,
		Amount:   sess.Amount,
		Currency: sess.Currency,
		OrderID:  sess.ID,
		Prefill: Prefill{
			Name:    customer.Name,
			Email:   customer.Email,
			Contact: customer.Phone,
		},
		Theme: Theme{Color: a.cfg.ThemeColor},
	}
}

// Open registers a payment window for the session. Exactly one of onSuccess
// or onDismiss will fire, driven by Resolve or Dismiss; Close cancels the
// window so neither fires.
func (a *Adapter) Open(sess Session, customer order.Customer, onSuccess func(PaymentResult), onDismiss func()) (*Handle, error) {
	if onSuccess == nil || onDismiss == nil {
		return nil, fmt.Errorf("both success and dismiss callbacks are required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, exists := a.pending[sess.ID]; exists {
		return nil, fmt.Errorf("payment window already open for session %s", sess.ID)
	}

	h := &Handle{
		sessionID: sess.ID,
		onSuccess: onSuccess,
		onDismiss: onDismiss,
	}
	a.pending[sess.ID] = h

	a.log.WithFields(logrus.Fields{
		"gateway_session": sess.ID,
		"amount":          sess.Amount,
		"currency":        sess.Currency,
	}).Info("Payment window opened")

	return h, nil
}

// Resolve settles the window for sessionID with a successful payment
func (a *Adapter) Resolve(sessionID string, result PaymentResult) error {
	h, err := a.take(sessionID)
	if err != nil {
		return err
	}

	h.onSuccess(result)
	return nil
}

// Dismiss settles the window for sessionID as a customer cancellation
func (a *Adapter) Dismiss(sessionID string) error {
	h, err := a.take(sessionID)
	if err != nil {
		return err
	}

	h.onDismiss()
	return nil
}

// Close cancels a payment window, used when the customer navigates away
// mid-flow. Neither callback fires afterwards.
func (a *Adapter) Close(h *Handle) {
	if h == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending[h.sessionID] == h {
		delete(a.pending, h.sessionID)
		a.log.WithField("gateway_session", h.sessionID).Info("Payment window closed")
	}
}

// take removes and returns the pending window for sessionID. The first
// resolution wins; later ones find nothing and are rejected.
func (a *Adapter) take(sessionID string) (*Handle, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, exists := a.pending[sessionID]
	if !exists {
		if a.settled[sessionID] {
			return nil, fmt.Errorf("%w: %s", ErrAlreadySettled, sessionID)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoSuchSession, sessionID)
	}
	delete(a.pending, sessionID)
	a.settled[sessionID] = true
	return h, nil
}
