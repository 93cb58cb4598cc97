package payment

import (
	"context"
	"errors"
)

// Package payment abstracts the checkout provider so services and handlers
// never talk to the Mercado Pago API directly.

// Payment status values reported by the gateway.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// ErrNotFound is returned when the gateway does not know the payment ID.
var ErrNotFound = errors.New("payment not found")

// PreferenceRequest describes one checkout preference to create. Amounts
// are in the display currency (BRL), not cents.
type PreferenceRequest struct {
	ItemID              string
	Title               string
	Description         string
	Quantity            int
	UnitPrice           float64
	CurrencyID          string
	PayerEmail          string
	ExternalReference   string
	NotificationURL     string
	SuccessURL          string
	FailureURL          string
	PendingURL          string
	StatementDescriptor string
	BinaryMode          bool
}

// Preference is a created checkout preference. InitPoint is the live
// checkout URL, SandboxInitPoint its test-credentials twin.
type Preference struct {
	ID               string
	InitPoint        string
	SandboxInitPoint string
}

// Payment is the gateway's view of one payment after lookup.
type Payment struct {
	ID                int64
	Status            string
	StatusDetail      string
	ExternalReference string
	TransactionAmount float64
	PayerEmail        string
}

// Gateway is the payment provider contract.
type Gateway interface {
	// CreatePreference registers a checkout preference and returns its
	// redirect URLs.
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)

	// GetPayment looks a payment up by provider ID. Unknown IDs yield
	// ErrNotFound.
	GetPayment(ctx context.Context, id string) (*Payment, error)
}
