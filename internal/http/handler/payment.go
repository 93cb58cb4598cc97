package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/payment"
	"blacklink/internal/plan"
	"blacklink/internal/service"
)

// paymentError translates the checkout, process and webhook sentinels onto
// HTTP statuses.
func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUsernameRequired):
		return writeError(c, fiber.StatusBadRequest, "USERNAME_REQUIRED", "username é obrigatório")
	case errors.Is(err, service.ErrMonthsOutOfRange):
		return writeError(c, fiber.StatusBadRequest, "INVALID_MONTHS", "months inválido (1..24)")
	case errors.Is(err, plan.ErrNotSellable):
		return writeError(c, fiber.StatusBadRequest, "PLAN_NOT_SELLABLE", "Plano FREE não é vendável")
	case errors.Is(err, service.ErrUserNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "Usuário não encontrado")
	case errors.Is(err, service.ErrGatewayUnconfigured):
		return writeError(c, fiber.StatusInternalServerError, "GATEWAY_UNCONFIGURED", "Mercado Pago não configurado (MP_ACCESS_TOKEN ausente)")
	case errors.Is(err, service.ErrWebhookURLMissing):
		return writeError(c, fiber.StatusInternalServerError, "WEBHOOK_URL_MISSING", "MP_WEBHOOK_URL ausente (notification_url do Mercado Pago)")
	case errors.Is(err, service.ErrPaymentIDRequired):
		return writeError(c, fiber.StatusBadRequest, "PAYMENT_ID_REQUIRED", "payment_id é obrigatório em produção")
	case errors.Is(err, service.ErrWebhookUnauthorized):
		return writeError(c, fiber.StatusForbidden, "WEBHOOK_UNAUTHORIZED", "Webhook não autorizado")
	case errors.Is(err, payment.ErrNotFound):
		return writeError(c, fiber.StatusBadRequest, "PAYMENT_NOT_FOUND", "Pagamento não encontrado no Mercado Pago")
	case errors.Is(err, service.ErrPaymentNotApproved):
		return writeError(c, fiber.StatusBadRequest, "PAYMENT_NOT_APPROVED", "Pagamento não aprovado")
	case errors.Is(err, service.ErrPaymentReferenceMismatch):
		return writeError(c, fiber.StatusBadRequest, "PAYMENT_REFERENCE_MISMATCH", "Referência de pagamento inválida")
	case errors.Is(err, service.ErrPaymentIDMissing):
		return writeError(c, fiber.StatusBadRequest, "PAYMENT_ID_MISSING", "payment.id ausente")
	case errors.Is(err, service.ErrInvalidPaymentData):
		return writeError(c, fiber.StatusBadRequest, "INVALID_PAYMENT_DATA", "Dados de pagamento inválidos")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ListPlans serves the public plan catalog in fixed UI order.
func ListPlans() fiber.Handler {
	return func(c *fiber.Ctx) error {
		plans := plan.All()
		views := make([]plan.View, 0, len(plans))
		for _, p := range plans {
			views = append(views, p.View())
		}
		return c.JSON(views)
	}
}

// UpgradePlan moves a user straight onto a paid plan, the payment-independent
// path. The response codes here are part of the public front-end contract.
func UpgradePlan(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := c.Query("plan")

		profile, err := svc.UpgradePlan(c.UserContext(), c.Params("username"), requested)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidPlan):
				return writeError(c, fiber.StatusBadRequest, "invalid_plan", "Plano inválido. Use: pro, don")
			case errors.Is(err, service.ErrUserNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "User not found")
			case errors.Is(err, service.ErrUpgradeNotAllowed):
				return writeError(c, fiber.StatusForbidden, "upgrade_not_allowed", "Usuário já está no plano DON (máximo).")
			case errors.Is(err, service.ErrAlreadyOnPlan):
				return writeError(c, fiber.StatusBadRequest, "already_on_plan",
					fmt.Sprintf("Usuário já está no plano %s.", strings.ToUpper(plan.Normalize(requested))))
			case errors.Is(err, service.ErrUsernameRequired):
				return writeError(c, fiber.StatusBadRequest, "USERNAME_REQUIRED", "username é obrigatório")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.JSON(profile)
	}
}

// PaymentCheckout creates a MercadoPago preference for a plan purchase and
// returns its init points.
func PaymentCheckout(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.PaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Checkout(c.UserContext(), req)
		if err != nil {
			return paymentError(c, err)
		}
		return c.JSON(res)
	}
}

// PaymentProcess applies a plan purchase directly. In production it verifies
// the payment against the gateway first; the optional X-Webhook-Secret header
// is checked by the service.
func PaymentProcess(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.PaymentRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Process(c.UserContext(), req, c.Get("X-Webhook-Secret"))
		if err != nil {
			return paymentError(c, err)
		}
		return c.JSON(res)
	}
}

// MercadoPagoWebhook receives payment notifications. MercadoPago sends
// data.id sometimes as a number and sometimes as a string, so the payload is
// decoded tolerantly.
func MercadoPagoWebhook(svc service.PaymentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			Type string `json:"type"`
			Data struct {
				ID json.Number `json:"id"`
			} `json:"data"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.HandleWebhook(c.UserContext(), service.WebhookEvent{
			Type:      payload.Type,
			PaymentID: payload.Data.ID.String(),
		})
		if err != nil {
			return paymentError(c, err)
		}
		return c.JSON(res)
	}
}
