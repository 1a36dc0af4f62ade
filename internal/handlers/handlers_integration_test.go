package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"kicks/internal/flow"
	"kicks/internal/handlers"
	"kicks/internal/middleware"
	"kicks/internal/models"
	"kicks/internal/repositories"
	"kicks/internal/services"
	"kicks/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupApp builds the API over an in-memory SQLite catalog and in-memory
// snapshot storage. Submissions complete without delay.
func setupApp(t *testing.T) (*fiber.App, *services.Storefront) {
	t.Helper()
	logger, _ := test.NewNullLogger()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	productRepo, err := repositories.NewGORMProductRepository(db)
	require.NoError(t, err)
	seedProductsForTest(t, productRepo)

	catalog := services.NewCatalogService(productRepo)
	front := services.NewStorefront(context.Background(), services.StorefrontConfig{
		Storage:   storage.NewAdapter(storage.NewMemoryBackend(), storage.DefaultKey, logger),
		Catalog:   catalog,
		Scheduler: flow.ImmediateScheduler{},
		Logger:    logger,
	})

	app := fiber.New()
	api := app.Group("/api")
	handlers.NewStatusHandler().RegisterRoutes(api)
	handlers.NewCatalogHandler(catalog, logger).RegisterRoutes(api)
	handlers.NewCartHandler(front).RegisterRoutes(api)
	handlers.NewAuthHandler(front, logger).RegisterRoutes(api)
	handlers.NewAccountHandler(front, logger).RegisterRoutes(api, middleware.SessionRequired(front))
	handlers.NewFormHandler(front).RegisterRoutes(api)
	return app, front
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	products := []models.Product{
		{ID: "p1", Title: "Nike Air Max 270", Brand: "nike", Gender: "men", Image: "p1.png", Price: 1000},
		{ID: "p2", Title: "Adidas Ultraboost", Brand: "adidas", Gender: "women", Image: "p2.png", Price: 2500},
	}
	for i := range products {
		require.NoError(t, repo.Create(&products[i]))
	}
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestStatus(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, http.MethodGet, "/api/status", nil)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestProducts(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, http.MethodGet, "/api/products?brand=nike", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = do(t, app, http.MethodGet, "/api/products?search=ULTRA", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = do(t, app, http.MethodGet, "/api/products/p2", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Adidas Ultraboost", body["title"])

	status, _ = do(t, app, http.MethodGet, "/api/products/nope", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCartFlow(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, http.MethodPost, "/api/cart/items", map[string]string{"product_id": "p1"})
	assert.Equal(t, fiber.StatusCreated, status)
	status, body = do(t, app, http.MethodPost, "/api/cart/items", map[string]string{"product_id": "p1"})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, float64(2000), body["total"])
	assert.Equal(t, float64(2), body["count"])

	_, body = do(t, app, http.MethodPost, "/api/cart/items/p1/increment", nil)
	assert.Equal(t, float64(3), body["count"])
	_, body = do(t, app, http.MethodPost, "/api/cart/items/p1/decrement", nil)
	assert.Equal(t, float64(2), body["count"])

	status, body = do(t, app, http.MethodPatch, "/api/cart/items/p1", map[string]int{"quantity": 4})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(4000), body["total"])

	status, _ = do(t, app, http.MethodPatch, "/api/cart/items/p1", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, http.MethodDelete, "/api/cart/items/p1", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(0), body["total"])
	status, _ = do(t, app, http.MethodDelete, "/api/cart/items/p1", nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = do(t, app, http.MethodPost, "/api/cart/items", map[string]string{"product_id": "ghost"})
	assert.Equal(t, fiber.StatusNotFound, status)
	status, body = do(t, app, http.MethodPost, "/api/cart/items", map[string]string{})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "ProductID")
}

func TestAuthSignupLoginLogout(t *testing.T) {
	app, _ := setupApp(t)
	signup := map[string]string{
		"name":             "Asha",
		"email":            "Asha@X.com",
		"password":         "Passw0rd",
		"confirm_password": "Passw0rd",
	}

	status, body := do(t, app, http.MethodPost, "/api/auth/signup", signup)
	require.Equal(t, fiber.StatusCreated, status, body)
	user := body["user"].(map[string]any)
	assert.Equal(t, "asha@x.com", user["email"])

	status, _ = do(t, app, http.MethodPost, "/api/auth/signup", signup)
	assert.Equal(t, fiber.StatusConflict, status)

	_, body = do(t, app, http.MethodGet, "/api/session", nil)
	assert.Equal(t, "authenticated", body["state"])

	status, _ = do(t, app, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, fiber.StatusOK, status)
	_, body = do(t, app, http.MethodGet, "/api/session", nil)
	assert.Equal(t, "anonymous", body["state"])

	status, _ = do(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "Passw0rd"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = do(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "asha@x.com", "password": "Wrong1234"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = do(t, app, http.MethodPost, "/api/auth/login", map[string]string{"email": "asha@x.com", "password": "Passw0rd"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Login successful! Welcome back, Asha!", body["message"])
}

func TestSignupValidation(t *testing.T) {
	app, _ := setupApp(t)

	status, body := do(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "A1", "email": "bad", "password": "weak", "confirm_password": "weak",
	})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
}

func TestAccountRequiresSession(t *testing.T) {
	app, _ := setupApp(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/orders"},
		{http.MethodPut, "/api/profile"},
		{http.MethodPost, "/api/checkout"},
	} {
		status, _ := do(t, app, tc.method, tc.path, map[string]string{})
		assert.Equal(t, fiber.StatusUnauthorized, status, tc.path)
	}
}

func TestCheckoutFlow(t *testing.T) {
	app, front := setupApp(t)
	status, _ := do(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Asha", "email": "asha@x.com", "password": "Passw0rd", "confirm_password": "Passw0rd",
	})
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = do(t, app, http.MethodPost, "/api/checkout", map[string]string{"address": "1 Park Street", "payment_method": "cod"})
	assert.Equal(t, fiber.StatusBadRequest, status, "empty cart")

	do(t, app, http.MethodPost, "/api/cart/items", map[string]string{"product_id": "p1"})
	do(t, app, http.MethodPost, "/api/cart/items", map[string]string{"product_id": "p2"})

	status, body := do(t, app, http.MethodPost, "/api/checkout", map[string]string{"address": "", "payment_method": "cod"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Please enter delivery address", body["errors"].(map[string]any)["address"])

	status, body = do(t, app, http.MethodPost, "/api/checkout", map[string]string{"address": "1 Park Street", "payment_method": "card"})
	require.Equal(t, fiber.StatusCreated, status, body)
	order := body["order"].(map[string]any)
	assert.Equal(t, float64(3500), order["totalPrice"])
	assert.Equal(t, "Confirmed", order["status"])
	assert.Empty(t, front.Cart().Items)

	status, body = do(t, app, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	status, body = do(t, app, http.MethodPut, "/api/profile", map[string]string{"name": "Asha Rao", "phone": "9876543210", "address": "2 Lake Road"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Asha Rao", body["user"].(map[string]any)["name"])
}

func TestValidateField(t *testing.T) {
	app, _ := setupApp(t)
	do(t, app, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Asha", "email": "asha@x.com", "password": "Passw0rd", "confirm_password": "Passw0rd",
	})

	_, body := do(t, app, http.MethodPost, "/api/validate/email", map[string]any{"value": "asha@x.com"})
	assert.Equal(t, true, body["valid"])

	_, body = do(t, app, http.MethodPost, "/api/validate/email", map[string]any{"value": "asha@x.com", "signup": true})
	assert.Equal(t, false, body["valid"])
	assert.Equal(t, "Email already registered", body["message"])

	_, body = do(t, app, http.MethodPost, "/api/validate/confirm-password", map[string]any{"value": "Passw0rd", "reference": "Passw0rd1"})
	assert.Equal(t, false, body["valid"])

	status, _ := do(t, app, http.MethodPost, "/api/validate/shoe-size", map[string]any{"value": "10"})
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPasswordStrengthAndContact(t *testing.T) {
	app, _ := setupApp(t)

	_, body := do(t, app, http.MethodPost, "/api/password-strength", map[string]string{"password": "Passw0rd!"})
	assert.Equal(t, "strong", body["level"])

	status, _ := do(t, app, http.MethodPost, "/api/contact", map[string]string{"name": "Asha", "email": "asha@x.com", "message": "short"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/contact", map[string]string{"name": "Asha", "email": "asha@x.com", "message": "Do you stock size 12?"})
	assert.Equal(t, fiber.StatusOK, status)
}
