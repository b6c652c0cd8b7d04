package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/poornima-canteen/canteen-backend/internal/cart"
	"github.com/poornima-canteen/canteen-backend/internal/identity"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
	"github.com/poornima-canteen/canteen-backend/pkg/metrics"
	"github.com/poornima-canteen/canteen-backend/pkg/payment"
)

// Provider is the slice of the payment client checkout needs.
type Provider interface {
	CreateOrder(input payment.CreateOrderInput) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) error
	KeyID() string
	Currency() string
	MerchantName() string
}

// ProviderLoader defers provider initialization to first use, so a
// temporarily unreachable provider blocks checkout, not boot.
type ProviderLoader interface {
	Load() (Provider, error)
}

// LazyProvider adapts the payment loader to the checkout surface.
type LazyProvider struct {
	loader *payment.Loader
}

// NewLazyProvider wraps the shared payment loader.
func NewLazyProvider(loader *payment.Loader) *LazyProvider {
	return &LazyProvider{loader: loader}
}

func (p *LazyProvider) Load() (Provider, error) {
	client, err := p.loader.Load()
	if err != nil {
		return nil, err
	}
	return client, nil
}

// cartAccess is the slice of the cart service checkout needs.
type cartAccess interface {
	Snapshot(ctx context.Context, subjectID string) (*cart.Snapshot, error)
	Clear(ctx context.Context, subjectID string) error
}

type notifier interface {
	Push(ctx context.Context, subjectID, message string) error
}

// Prefill seeds the widget's contact fields from the signed-in identity.
type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// WidgetOptions is everything the client needs to open the hosted widget.
type WidgetOptions struct {
	Key         string  `json:"key"`
	AmountPaise int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
}

// ConfirmInput is the success triple handed back by the widget.
type ConfirmInput struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// ConfirmResult acknowledges a verified payment.
type ConfirmResult struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

// Service orchestrates the begin/confirm/dismiss checkout lifecycle.
type Service interface {
	Begin(ctx context.Context, ident *identity.Identity) (*WidgetOptions, error)
	Confirm(ctx context.Context, subjectID string, input ConfirmInput) (*ConfirmResult, error)
	Dismiss(ctx context.Context, subjectID string) error
}

type service struct {
	carts    cartAccess
	provider ProviderLoader
	notify   notifier
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger
}

// NewService wires the checkout service.
func NewService(carts cartAccess, provider ProviderLoader, notify notifier, m *metrics.CheckoutMetrics, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, errors.New("checkout service requires cart access")
	}
	if provider == nil {
		return nil, errors.New("checkout service requires a provider loader")
	}
	if notify == nil {
		return nil, errors.New("checkout service requires a notifier")
	}
	if logg == nil {
		return nil, errors.New("checkout service requires a logger")
	}
	return &service{carts: carts, provider: provider, notify: notify, metrics: m, logg: logg}, nil
}

// Begin creates a provider order for the current cart total. An empty cart
// never reaches the provider.
func (s *service) Begin(ctx context.Context, ident *identity.Identity) (*WidgetOptions, error) {
	if ident == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}

	snap, err := s.carts.Snapshot(ctx, ident.SubjectID)
	if err != nil {
		return nil, err
	}
	if snap.Count == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "your cart is empty")
	}

	provider, err := s.provider.Load()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider unavailable")
	}

	order, err := provider.CreateOrder(payment.CreateOrderInput{
		AmountPaise: snap.TotalPaise,
		Receipt:     "canteen-" + uuid.NewString(),
		Notes: map[string]any{
			"subject_id": ident.SubjectID,
			"line_count": snap.Count,
		},
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":   order.ID,
		"amount":     order.AmountPaise,
		"line_count": snap.Count,
	}), "checkout started")

	return &WidgetOptions{
		Key:         provider.KeyID(),
		AmountPaise: order.AmountPaise,
		Currency:    order.Currency,
		Name:        provider.MerchantName(),
		Description: "Canteen Order Payment",
		OrderID:     order.ID,
		Prefill: Prefill{
			Name:  ident.DisplayName,
			Email: ident.Email,
		},
	}, nil
}

// Confirm trusts the callback only after the provider signature checks out,
// then clears the cart. The order itself is recorded in the log stream
// only; there is no order table.
func (s *service) Confirm(ctx context.Context, subjectID string, input ConfirmInput) (*ConfirmResult, error) {
	provider, err := s.provider.Load()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider unavailable")
	}
	if err := provider.VerifySignature(input.OrderID, input.PaymentID, input.Signature); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("payment confirmation rejected for order %s", input.OrderID))
		return nil, err
	}

	snap, err := s.carts.Snapshot(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx, subjectID); err != nil {
		return nil, err
	}

	s.metrics.OrderConfirmed()
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":   input.OrderID,
		"payment_id": input.PaymentID,
		"amount":     snap.TotalPaise,
		"items":      snap.Lines,
		"paid_at":    time.Now().UTC(),
	}), "order paid")

	if err := s.notify.Push(ctx, subjectID, "Payment successful! Your order will be ready soon."); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("notification dropped: %v", err))
	}

	return &ConfirmResult{OrderID: input.OrderID, PaymentID: input.PaymentID}, nil
}

// Dismiss records that the widget was closed without paying. The cart is
// left exactly as it was.
func (s *service) Dismiss(ctx context.Context, subjectID string) error {
	s.metrics.CheckoutDismissed()
	s.logg.Info(s.logg.WithSubjectID(ctx, subjectID), "checkout dismissed")
	return nil
}
