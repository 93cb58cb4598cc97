package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"blacklink/internal/guardian"
	guardianMocks "blacklink/internal/guardian/mocks"
	"blacklink/internal/model"
	"blacklink/internal/plan"
	"blacklink/internal/service"
	serviceMocks "blacklink/internal/service/mocks"
)

func TestAdminCreateUser(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Post("/admin/create-user", AdminCreateUser(mockSvc))

	t.Run("success", func(t *testing.T) {
		created := &model.User{ID: 4, Username: "capo", Email: "capo@example.com", Plan: plan.Pro}
		mockSvc.On("CreateAdmin", mock.Anything, "capo", "capo@example.com", "pro").Return(created, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/create-user?username=capo&email=capo@example.com&plan=pro", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "capo", body["username"])
		assert.Equal(t, "pro", body["plan"])
		assert.Equal(t, "created", body["status"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("plan defaults to free", func(t *testing.T) {
		created := &model.User{ID: 5, Username: "soldato", Plan: plan.Free}
		mockSvc.On("CreateAdmin", mock.Anything, "soldato", "", "free").Return(created, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/create-user?username=soldato", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("duplicate answers conflict", func(t *testing.T) {
		mockSvc.On("CreateAdmin", mock.Anything, "Capo", "", "free").Return(nil, service.ErrUsernameTaken).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/create-user?username=Capo", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "USERNAME_TAKEN", res.Error.Code)
		assert.Equal(t, "Usuário 'capo' já existe", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid plan", func(t *testing.T) {
		mockSvc.On("CreateAdmin", mock.Anything, "capo", "", "gold").Return(nil, service.ErrInvalidPlan).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/create-user?username=capo&plan=gold", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_PLAN", res.Error.Code)
		assert.Equal(t, "Plano inválido. Use: free, pro ou don", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func TestAdminIngest(t *testing.T) {
	mockSvc := new(serviceMocks.MockIngestService)
	app := fiber.New()
	app.Post("/admin/ingest", AdminIngest(mockSvc))

	t.Run("success", func(t *testing.T) {
		imported := &model.Product{
			ID:       11,
			Title:    "Anel de ouro 18k",
			URL:      "https://produto.mercadolivre.com.br/MLB-123",
			Price:    "R$ 1.200",
			IsActive: true,
		}
		mockSvc.On("IngestProduct", mock.Anything, service.IngestRequest{
			Username: "capo",
			URL:      "https://produto.mercadolivre.com.br/MLB-123",
			Featured: true,
		}).Return(imported, nil).Once()

		body := strings.NewReader(`{"username":"capo","url":"https://produto.mercadolivre.com.br/MLB-123","featured":true}`)
		req := httptest.NewRequest(http.MethodPost, "/admin/ingest", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Product
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, int64(11), result.ID)
		assert.Equal(t, "Anel de ouro 18k", result.Title)
		mockSvc.AssertExpectations(t)
	})

	t.Run("free plan cannot ingest", func(t *testing.T) {
		mockSvc.On("IngestProduct", mock.Anything, mock.Anything).Return(nil, service.ErrIngestNotAllowed).Once()

		body := strings.NewReader(`{"username":"capo","url":"https://produto.mercadolivre.com.br/MLB-123"}`)
		req := httptest.NewRequest(http.MethodPost, "/admin/ingest", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INGEST_NOT_ALLOWED", res.Error.Code)
		assert.Equal(t, "Ingestão automática disponível apenas para planos PRO ou DON.", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("plan limit reached", func(t *testing.T) {
		limitErr := &service.PlanLimitError{Plan: plan.Pro, Limit: 20}
		mockSvc.On("IngestProduct", mock.Anything, mock.Anything).Return(nil, limitErr).Once()

		body := strings.NewReader(`{"username":"capo","url":"https://produto.mercadolivre.com.br/MLB-123"}`)
		req := httptest.NewRequest(http.MethodPost, "/admin/ingest", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "PLAN_LIMIT_REACHED", res.Error.Code)
		assert.Equal(t, "Limite atingido: plano PRO permite até 20 produtos.", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unsupported url", func(t *testing.T) {
		mockSvc.On("IngestProduct", mock.Anything, mock.Anything).Return(nil, service.ErrUnsupportedURL).Once()

		body := strings.NewReader(`{"username":"capo","url":"https://example.com/produto"}`)
		req := httptest.NewRequest(http.MethodPost, "/admin/ingest", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNSUPPORTED_URL", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("listing unreadable", func(t *testing.T) {
		mockSvc.On("IngestProduct", mock.Anything, mock.Anything).Return(nil, service.ErrListingUnreadable).Once()

		body := strings.NewReader(`{"username":"capo","url":"https://produto.mercadolivre.com.br/MLB-999"}`)
		req := httptest.NewRequest(http.MethodPost, "/admin/ingest", body)
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "LISTING_UNREADABLE", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestGuardianTick(t *testing.T) {
	mockSweeper := new(guardianMocks.MockSweeper)
	app := fiber.New()
	app.Post("/admin/guardian/tick", GuardianTick(mockSweeper))

	t.Run("success", func(t *testing.T) {
		mockSweeper.On("Sweep", mock.Anything).Return(&guardian.SweepResult{Checked: 12, Deactivated: 2}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/guardian/tick", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result guardian.SweepResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 12, result.Checked)
		assert.Equal(t, 2, result.Deactivated)
		mockSweeper.AssertExpectations(t)
	})

	t.Run("sweep failure", func(t *testing.T) {
		mockSweeper.On("Sweep", mock.Anything).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/guardian/tick", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSweeper.AssertExpectations(t)
	})
}
