package models

import "github.com/google/uuid"

// TopUp is a quota credit derived from a paid Stripe checkout session.
// EventID is the Stripe event id and makes the credit idempotent.
type TopUp struct {
	EventID string
	UserID  uuid.UUID
	Calls   int
}

type CheckoutRes struct {
	CheckoutURL string `json:"checkout_url"`
}
