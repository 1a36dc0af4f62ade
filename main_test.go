package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"kicks/internal/config"
	"kicks/internal/flow"
	"kicks/internal/models"
	"kicks/internal/services"
	"kicks/internal/validation"
	"kicks/pkg/rabbitmq"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "memory")
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewAppServesSiteAndAPI(t *testing.T) {
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<h1>KICKS</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "style.css"), []byte("body{}"), 0o644))

	logger, _ := test.NewNullLogger()
	rt, err := openDeps(memoryConfig(t), logger)
	require.NoError(t, err)
	defer rt.Close()

	front, catalog := rt.storefront(context.Background(), flow.ImmediateScheduler{})
	app := newApp(front, catalog, staticDir, logger)

	get := func(path string) (int, string) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	status, body := get("/style.css")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "body{}", body)

	status, body = get("/products/nike-air-max-270")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "KICKS")

	status, body = get("/api/status")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"ok"`)

	status, body = get("/api/products?gender=kids")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "skechers-go-walk-kids")

	status, _ = get("/api/nothing-here")
	assert.Equal(t, http.StatusNotFound, status)
}

type recordingBroker struct {
	exchanges []string
	routes    []string
	bodies    [][]byte
}

func (b *recordingBroker) Publish(exchange, routingKey string, body []byte) error {
	b.exchanges = append(b.exchanges, exchange)
	b.routes = append(b.routes, routingKey)
	b.bodies = append(b.bodies, body)
	return nil
}

func (b *recordingBroker) Close() error { return nil }

func TestStorefrontPublishesToConfiguredExchange(t *testing.T) {
	t.Setenv("RABBITMQ_EXCHANGE", "shop")
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	rt, err := openDeps(memoryConfig(t), logger)
	require.NoError(t, err)
	defer rt.Close()

	pub := &recordingBroker{}
	rt.publisher = pub
	front, _ := rt.storefront(ctx, flow.ImmediateScheduler{})

	require.NoError(t, front.Signup(ctx, services.SignupInput{
		Name: "Asha", Email: "asha@x.com", Password: "Passw0rd", ConfirmPassword: "Passw0rd",
	}, nil))
	_, err = front.AddToCart(ctx, "puma-rs-x")
	require.NoError(t, err)
	require.NoError(t, front.Checkout(ctx, services.CheckoutInput{Address: "1 Park Street", PaymentMethod: "cod"}, nil))

	require.Equal(t, []string{"shop"}, pub.exchanges)
	assert.Equal(t, []string{services.OrderPlacedRoute}, pub.routes)

	var event rabbitmq.OrderEvent
	require.NoError(t, json.Unmarshal(pub.bodies[0], &event))
	assert.Equal(t, "asha@x.com", event.Email)
	assert.Equal(t, int64(8999), event.TotalPrice)
}

func TestSeedProductsOnlyWhenEmpty(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rt, err := openDeps(memoryConfig(t), logger)
	require.NoError(t, err)
	defer rt.Close()

	_, catalog := rt.storefront(context.Background(), flow.ImmediateScheduler{})
	first, err := rt.products.GetAll()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	seedProducts(catalog, logger)
	second, err := rt.products.GetAll()
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestSnapshotCommands(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_DIR", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"snapshot", "reset"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Snapshot kicksStoreData reset")

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"snapshot", "show"})
	require.NoError(t, cmd.Execute())

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(out.Bytes(), &snap))
	assert.Equal(t, models.DefaultSnapshot(), snap)
}

func TestCatalogCommands(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file:"+filepath.Join(t.TempDir(), "kicks.db"))
	t.Setenv("LOG_LEVEL", "error")

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := run("catalog", "price", "puma-rs-x", "₹7,499")
	require.NoError(t, err)
	assert.Equal(t, "puma-rs-x now costs 7499\n", out)

	out, err = run("catalog", "remove", "nb-574")
	require.NoError(t, err)
	assert.Equal(t, "nb-574 removed\n", out)

	out, err = run("catalog", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "puma-rs-x\t7499\tPuma RS-X\n")
	assert.NotContains(t, out, "nb-574")

	_, err = run("catalog", "remove", "nb-574")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	_, err = run("catalog", "price", "puma-rs-x", "Free")
	assert.ErrorIs(t, err, validation.ErrValidation)
}

func TestOrdersConsumeRequiresBroker(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"orders", "consume"})
	err := cmd.Execute()

	assert.EqualError(t, err, "RABBITMQ_URL is not set")
}
