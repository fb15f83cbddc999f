package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ravigill3969/textgen-quota/config"
	"github.com/ravigill3969/textgen-quota/models"
)

const metadataUserID = "userID"

// CheckoutCreator opens a Stripe Checkout session. session.New in production.
type CheckoutCreator func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)

type BillingService struct {
	cfg        config.StripeConfig
	quota      *QuotaService
	newSession CheckoutCreator
}

func NewBillingService(cfg config.StripeConfig, quota *QuotaService) *BillingService {
	if cfg.Key != "" {
		stripe.Key = cfg.Key
	}
	return &BillingService{cfg: cfg, quota: quota, newSession: session.New}
}

// SetCheckoutCreator swaps the Stripe call, used by tests.
func (s *BillingService) SetCheckoutCreator(fn CheckoutCreator) {
	s.newSession = fn
}

func (s *BillingService) Enabled() bool {
	return s.cfg.Enabled()
}

// CreateCheckout starts a one-off payment for TopUpCalls more calls and
// returns the hosted checkout URL.
func (s *BillingService) CreateCheckout(ctx context.Context, userID uuid.UUID) (string, error) {
	if !s.Enabled() {
		return "", ErrBillingDisabled
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(userID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataUserID, userID.String())

	result, err := s.newSession(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	slog.InfoContext(ctx, "checkout session created", "user_id", userID, "session_id", result.ID)
	return result.URL, nil
}

// HandleWebhook verifies the Stripe signature and credits paid checkouts.
// Replayed events are acknowledged without a second credit.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.Enabled() {
		return ErrBillingDisabled
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return &ValidationError{Fields: map[string]string{"signature": err.Error()}}
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.checkoutCompleted(ctx, event)
	default:
		slog.DebugContext(ctx, "unhandled stripe event", "type", event.Type, "event_id", event.ID)
		return nil
	}
}

func (s *BillingService) checkoutCompleted(ctx context.Context, event stripe.Event) error {
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return &ValidationError{Fields: map[string]string{"payload": "malformed checkout session"}}
	}

	if cs.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		slog.InfoContext(ctx, "checkout completed without payment", "session_id", cs.ID, "status", cs.PaymentStatus)
		return nil
	}

	ref := cs.Metadata[metadataUserID]
	if ref == "" {
		ref = cs.ClientReferenceID
	}
	userID, err := uuid.Parse(ref)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"metadata": "checkout session has no valid user id"}}
	}

	remaining, applied, err := s.quota.Credit(ctx, models.TopUp{
		EventID: event.ID,
		UserID:  userID,
		Calls:   s.cfg.TopUpCalls,
	})
	if errors.Is(err, ErrNotFound) {
		// acknowledge so Stripe stops redelivering for a deleted account
		slog.WarnContext(ctx, "top-up for unknown user dropped", "user_id", userID, "event_id", event.ID)
		return nil
	}
	if err != nil {
		return err
	}
	if !applied {
		slog.InfoContext(ctx, "stripe event already credited", "event_id", event.ID)
		return nil
	}

	slog.InfoContext(ctx, "quota topped up",
		"user_id", userID,
		"calls", s.cfg.TopUpCalls,
		"remaining", remaining,
		"event_id", event.ID,
	)
	return nil
}
