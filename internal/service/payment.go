package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blacklink/internal/config"
	"blacklink/internal/payment"
	"blacklink/internal/plan"
	"blacklink/internal/repository"
)

// Payment flow errors, mapped to HTTP statuses by the handlers.
var (
	ErrMonthsOutOfRange         = errors.New("months must be between 1 and 24")
	ErrGatewayUnconfigured      = errors.New("payment gateway is not configured")
	ErrWebhookURLMissing        = errors.New("webhook notification url is not configured")
	ErrPaymentIDRequired        = errors.New("payment id is required in production")
	ErrPaymentIDMissing         = errors.New("payment id missing")
	ErrWebhookUnauthorized      = errors.New("webhook secret mismatch")
	ErrPaymentNotApproved       = errors.New("payment not approved")
	ErrPaymentReferenceMismatch = errors.New("payment reference mismatch")
	ErrInvalidPaymentData       = errors.New("invalid payment data")
)

// fallbackPayerEmail is billed against when neither the request nor the user
// carries an email.
const fallbackPayerEmail = "cliente@blacklink.app"

// PaymentRequest is the body of both the checkout and the process endpoints.
// PaymentID is only consulted by Process, and only in production.
type PaymentRequest struct {
	Username  string `json:"username"`
	Plan      string `json:"plan"`
	Months    int    `json:"months"`
	Email     string `json:"email"`
	PaymentID string `json:"payment_id"`
}

// CheckoutResult carries the created preference plus the fields a client
// needs to debug the webhook round trip.
type CheckoutResult struct {
	PreferenceID      string `json:"preference_id"`
	InitPoint         string `json:"init_point"`
	SandboxInitPoint  string `json:"sandbox_init_point"`
	ExternalReference string `json:"external_reference"`
	NotificationURL   string `json:"notification_url"`
}

// ProcessResult reports a plan activation.
type ProcessResult struct {
	Status        string     `json:"status"`
	Message       string     `json:"message"`
	Username      string     `json:"username"`
	Plan          string     `json:"plan"`
	PlanStatus    string     `json:"plan_status"`
	PlanExpiresAt *time.Time `json:"plan_expires_at"`
}

// WebhookEvent is a gateway notification already lifted out of its wire
// shape by the handler.
type WebhookEvent struct {
	Type      string
	PaymentID string
}

// WebhookResult is either an ignored event (Status "ignored" with a Reason)
// or a processed activation.
type WebhookResult struct {
	Status    string     `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	Username  string     `json:"username,omitempty"`
	Plan      string     `json:"plan,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// PaymentService sells paid plans through the payment gateway. Checkout
// creates the hosted checkout, the webhook and Process activate the plan
// once the gateway reports the payment approved.
type PaymentService interface {
	// Checkout registers a checkout preference for a paid plan.
	Checkout(ctx context.Context, req PaymentRequest) (*CheckoutResult, error)

	// Process activates a paid plan directly. In production it refuses to
	// activate without an approved gateway payment matching the request.
	Process(ctx context.Context, req PaymentRequest, webhookSecret string) (*ProcessResult, error)

	// HandleWebhook reacts to a gateway notification, activating the plan
	// encoded in the payment's external reference.
	HandleWebhook(ctx context.Context, evt WebhookEvent) (*WebhookResult, error)
}

type paymentService struct {
	users   repository.UserRepository
	gateway payment.Gateway
	mp      config.MercadoPagoConfig
}

// NewPaymentService constructs a new PaymentService. A nil gateway is
// allowed and turns every paid operation into ErrGatewayUnconfigured.
func NewPaymentService(users repository.UserRepository, gateway payment.Gateway, mp config.MercadoPagoConfig) PaymentService {
	return &paymentService{users: users, gateway: gateway, mp: mp}
}

func (s *paymentService) Checkout(ctx context.Context, req PaymentRequest) (*CheckoutResult, error) {
	username := normalizeUsername(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	months := req.Months
	if months == 0 {
		months = 1
	}
	if months < 1 || months > 24 {
		return nil, ErrMonthsOutOfRange
	}

	current := plan.Get(req.Plan)
	if !current.Sellable {
		return nil, plan.ErrNotSellable
	}

	user, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	if s.gateway == nil || !s.mp.Configured() {
		return nil, ErrGatewayUnconfigured
	}
	if s.mp.WebhookURL == "" {
		return nil, ErrWebhookURLMissing
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = user.Email
	}
	if email == "" {
		email = fallbackPayerEmail
	}

	ref := fmt.Sprintf("%s:%s:%d", user.Username, current.ID, months)
	pref, err := s.gateway.CreatePreference(ctx, payment.PreferenceRequest{
		ItemID:              current.ID,
		Title:               fmt.Sprintf("Plano %s — %d mês(es)", current.Name, months),
		Quantity:            1,
		UnitPrice:           current.PriceBRL() * float64(months),
		CurrencyID:          "BRL",
		PayerEmail:          email,
		ExternalReference:   ref,
		NotificationURL:     s.mp.WebhookURL,
		SuccessURL:          s.mp.SuccessURL,
		FailureURL:          s.mp.FailureURL,
		PendingURL:          s.mp.PendingURL,
		StatementDescriptor: "BLACKLINK",
		// Binary mode: the payment approves or fails, never stays pending.
		BinaryMode: true,
	})
	if err != nil {
		return nil, err
	}

	return &CheckoutResult{
		PreferenceID:      pref.ID,
		InitPoint:         pref.InitPoint,
		SandboxInitPoint:  pref.SandboxInitPoint,
		ExternalReference: ref,
		NotificationURL:   s.mp.WebhookURL,
	}, nil
}

func (s *paymentService) Process(ctx context.Context, req PaymentRequest, webhookSecret string) (*ProcessResult, error) {
	username := normalizeUsername(req.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}

	months := req.Months
	if months == 0 {
		months = 1
	}
	if months < 1 || months > 24 {
		return nil, ErrMonthsOutOfRange
	}

	current := plan.Get(req.Plan)
	if !current.Sellable {
		return nil, plan.ErrNotSellable
	}

	user, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	// Outside production an approved payment is assumed; this path backs
	// manual activation and sandbox testing.
	if s.mp.Env == "production" {
		if strings.TrimSpace(req.PaymentID) == "" {
			return nil, ErrPaymentIDRequired
		}
		if s.mp.WebhookSecret != "" && webhookSecret != s.mp.WebhookSecret {
			return nil, ErrWebhookUnauthorized
		}
		if s.gateway == nil {
			return nil, ErrGatewayUnconfigured
		}

		pm, err := s.gateway.GetPayment(ctx, req.PaymentID)
		if err != nil {
			return nil, err
		}
		if pm.Status != payment.StatusApproved {
			return nil, ErrPaymentNotApproved
		}
		if pm.ExternalReference != fmt.Sprintf("%s:%s:%d", user.Username, current.ID, months) {
			return nil, ErrPaymentReferenceMismatch
		}
	}

	if err := plan.Upgrade(user, current, months, time.Now()); err != nil {
		return nil, err
	}
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Status:        "approved",
		Message:       "Plano ativado com sucesso",
		Username:      updated.Username,
		Plan:          updated.Plan,
		PlanStatus:    updated.PlanStatus,
		PlanExpiresAt: updated.PlanExpiresAt,
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, evt WebhookEvent) (*WebhookResult, error) {
	if evt.Type != "payment" {
		return &WebhookResult{Status: "ignored", Reason: "Evento não é pagamento"}, nil
	}
	if strings.TrimSpace(evt.PaymentID) == "" {
		return nil, ErrPaymentIDMissing
	}
	if s.gateway == nil {
		return nil, ErrGatewayUnconfigured
	}

	pm, err := s.gateway.GetPayment(ctx, evt.PaymentID)
	if err != nil {
		return nil, err
	}
	if pm.Status != payment.StatusApproved {
		return &WebhookResult{Status: "ignored", Reason: "Pagamento não aprovado"}, nil
	}

	username, planID, months := parseReference(pm.ExternalReference)
	if username == "" || planID == plan.Free {
		return nil, ErrInvalidPaymentData
	}

	user, err := syncedUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	if err := plan.Upgrade(user, plan.Get(planID), months, time.Now()); err != nil {
		return nil, err
	}
	if pm.PayerEmail != "" {
		user.Email = pm.PayerEmail
	}
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	return &WebhookResult{
		Status:    "processed",
		Username:  updated.Username,
		Plan:      updated.Plan,
		ExpiresAt: updated.PlanExpiresAt,
	}, nil
}

// parseReference splits the "username:plan:months" reference stamped on the
// preference at checkout. A malformed reference comes back with an empty
// username; an unparseable month count falls back to 1.
func parseReference(ref string) (username, planID string, months int) {
	parts := strings.Split(ref, ":")
	if len(parts) != 3 {
		return "", "", 0
	}
	months, err := strconv.Atoi(parts[2])
	if err != nil || months < 1 {
		months = 1
	}
	return normalizeUsername(parts[0]), plan.Normalize(parts[1]), months
}
