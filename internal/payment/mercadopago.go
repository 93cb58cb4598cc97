package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"blacklink/internal/config"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

// MercadoPago is a Gateway implementation over the Mercado Pago REST API.
// It talks to /checkout/preferences and /v1/payments with bearer auth.
type MercadoPago struct {
	token   string
	baseURL string
	client  *http.Client
}

// NewMercadoPago builds the gateway client from configuration. Outbound
// calls are traced through the otelhttp transport.
func NewMercadoPago(cfg config.MercadoPagoConfig) *MercadoPago {
	return &MercadoPago{
		token:   cfg.AccessToken,
		baseURL: mercadoPagoBaseURL,
		client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

var _ Gateway = (*MercadoPago)(nil)

// CreatePreference registers a checkout preference.
func (g *MercadoPago) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	payload := mpPreferencePayload{
		Items: []mpItem{{
			ID:          req.ItemID,
			Title:       req.Title,
			Description: req.Description,
			Quantity:    req.Quantity,
			CurrencyID:  req.CurrencyID,
			UnitPrice:   req.UnitPrice,
		}},
		Payer:             mpPayer{Email: req.PayerEmail},
		ExternalReference: req.ExternalReference,
		NotificationURL:   req.NotificationURL,
		BackURLs: mpBackURLs{
			Success: req.SuccessURL,
			Failure: req.FailureURL,
			Pending: req.PendingURL,
		},
		AutoReturn:          "approved",
		StatementDescriptor: req.StatementDescriptor,
		BinaryMode:          req.BinaryMode,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal preference payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout/preferences", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create preference request: %w", err)
	}
	g.setHeaders(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mercado pago request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, apiError("create preference", resp)
	}

	var out mpPreferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode preference response: %w", err)
	}

	return &Preference{
		ID:               out.ID,
		InitPoint:        out.InitPoint,
		SandboxInitPoint: out.SandboxInitPoint,
	}, nil
}

// GetPayment looks a payment up by provider ID.
func (g *MercadoPago) GetPayment(ctx context.Context, id string) (*Payment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create payment request: %w", err)
	}
	g.setHeaders(httpReq)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("mercado pago request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError("get payment", resp)
	}

	var out mpPaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payment response: %w", err)
	}

	return &Payment{
		ID:                out.ID,
		Status:            out.Status,
		StatusDetail:      out.StatusDetail,
		ExternalReference: out.ExternalReference,
		TransactionAmount: out.TransactionAmount,
		PayerEmail:        out.Payer.Email,
	}, nil
}

func (g *MercadoPago) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Content-Type", "application/json")
}

func apiError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return fmt.Errorf("mercado pago %s returned status %d: %s", op, resp.StatusCode, string(body))
}

// Mercado Pago REST payload types.
type mpPreferencePayload struct {
	Items               []mpItem   `json:"items"`
	Payer               mpPayer    `json:"payer"`
	ExternalReference   string     `json:"external_reference"`
	NotificationURL     string     `json:"notification_url"`
	BackURLs            mpBackURLs `json:"back_urls"`
	AutoReturn          string     `json:"auto_return"`
	StatementDescriptor string     `json:"statement_descriptor,omitempty"`
	BinaryMode          bool       `json:"binary_mode"`
}

type mpItem struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id"`
	UnitPrice   float64 `json:"unit_price"`
}

type mpPayer struct {
	Email string `json:"email"`
}

type mpBackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type mpPreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type mpPaymentResponse struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
	Payer             mpPayer `json:"payer"`
}
