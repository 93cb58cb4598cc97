package handler

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"blacklink/internal/guardian"
	"blacklink/internal/http/middleware"
	"blacklink/internal/service"
)

// Deps bundles everything the routes need. A nil Limiter disables rate
// limiting; a nil Media store still mounts /media, which then answers 503
// through the service.
type Deps struct {
	DB       *sql.DB
	Users    service.UserService
	Products service.ProductService
	Catalog  service.CatalogService
	Payments service.PaymentService
	Media    service.MediaService
	Ingest   service.IngestService
	Sweeper  guardian.Sweeper

	// MPPublicKey is injected into the checkout page for the browser SDK.
	MPPublicKey string

	// Limiter guards the session- and money-minting routes only.
	Limiter *middleware.RateLimiter
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app. Handlers
// stay thin: parse, call the service, translate sentinel errors to statuses.
func RegisterRoutes(app *fiber.App, deps Deps) {
	limit := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		limit = deps.Limiter.Handler()
	}

	app.Get("/", Root())
	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/checkout", CheckoutPage(deps.MPPublicKey))

	app.Post("/auth/login", limit, Login(deps.Users))
	app.Get("/auth/me/:username", GetMe(deps.Users))

	app.Post("/blacklink/", CreateUser(deps.Users))
	app.Get("/blacklink/", ListUsers(deps.Users))
	app.Get("/blacklink/out/:id", OutRedirect(deps.Catalog))
	app.Get("/blacklink/:username/products", Storefront(deps.Catalog))
	app.Get("/blacklink/:username/products/:id", StorefrontProduct(deps.Catalog))
	app.Get("/blacklink/:username", GetUser(deps.Users))
	app.Patch("/blacklink/:username", UpdateUser(deps.Users))
	app.Delete("/blacklink/:username", DeleteUser(deps.Users))
	app.Get("/u/:username", GetUser(deps.Users))
	app.Get("/api/blacklink/:username/products", ListPublicProducts(deps.Catalog))

	app.Get("/product/:username", ListProducts(deps.Products))
	app.Post("/product/:username", CreateProduct(deps.Products))
	app.Patch("/product/edit/:id", UpdateProduct(deps.Products))
	app.Delete("/product/:id", DeleteProduct(deps.Products))

	app.Get("/plans", ListPlans())
	app.Post("/plan/upgrade/:username", UpgradePlan(deps.Users))

	app.Post("/payment/checkout", limit, PaymentCheckout(deps.Payments))
	app.Post("/payment/process", PaymentProcess(deps.Payments))
	app.Post("/webhook/mercadopago", MercadoPagoWebhook(deps.Payments))

	app.Post("/admin/create-user", AdminCreateUser(deps.Users))
	app.Post("/admin/ingest", AdminIngest(deps.Ingest))
	app.Post("/admin/guardian/tick", GuardianTick(deps.Sweeper))

	app.Post("/media", UploadMedia(deps.Media))
	app.Get("/media/*", ResolveMedia(deps.Media))
	app.Delete("/media/*", DeleteMedia(deps.Media))
}

// Root answers the bare service ping used by uptime checks.
func Root() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "blacklink"})
	}
}

// HealthCheck reports whether the database still answers a ping.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is the bare liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

const checkoutHTML = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>CosaNostra BlackLink — Checkout</title>
  <script src="https://sdk.mercadopago.com/js/v2"></script>
</head>
<body>
  <h1>Assinatura BlackLink</h1>
  <form id="checkout-form">
    <label>Username <input name="username" required /></label>
    <label>Plano
      <select name="plan">
        <option value="pro">PRO</option>
        <option value="don">DON</option>
      </select>
    </label>
    <label>Meses <input name="months" type="number" min="1" max="24" value="1" /></label>
    <button type="submit">Pagar com Mercado Pago</button>
  </form>
  <script>
    const publicKey = "__MP_PUBLIC_KEY__";
    if (publicKey) {
      new MercadoPago(publicKey);
    }
    document.getElementById("checkout-form").addEventListener("submit", async (e) => {
      e.preventDefault();
      const form = new FormData(e.target);
      const resp = await fetch("/payment/checkout", {
        method: "POST",
        headers: { "Content-Type": "application/json" },
        body: JSON.stringify({
          username: form.get("username"),
          plan: form.get("plan"),
          months: parseInt(form.get("months"), 10),
        }),
      });
      const data = await resp.json();
      if (resp.ok && data.init_point) {
        window.location.href = data.init_point;
      } else {
        alert(data.error ? data.error.message : "Falha ao iniciar o checkout");
      }
    });
  </script>
</body>
</html>`

// CheckoutPage serves the minimal checkout page with the MercadoPago public
// key baked in for the browser SDK.
func CheckoutPage(publicKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		html := strings.ReplaceAll(checkoutHTML, "__MP_PUBLIC_KEY__", publicKey)
		return c.Type("html").SendString(html)
	}
}
