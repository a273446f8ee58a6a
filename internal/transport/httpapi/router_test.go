package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/access"
	"github.com/vladislavdragonenkov/shop/internal/service/auth"
	"github.com/vladislavdragonenkov/shop/internal/service/catalog"
	"github.com/vladislavdragonenkov/shop/internal/service/orders"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/transport/httpapi"
)

type testAPI struct {
	t        *testing.T
	server   *httptest.Server
	auth     *auth.Service
	registry *prometheus.Registry
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "test")

	store := memory.NewStore()
	issuer, err := auth.NewTokenIssuer("router-test-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	gate := access.NewGate(store, entry)
	authSvc := auth.NewService(store, issuer, entry, auth.WithBcryptCost(bcrypt.MinCost))

	handler := httpapi.NewRouter(httpapi.Deps{
		Auth:    authSvc,
		Catalog: catalog.NewService(store, gate, entry),
		Orders:  orders.NewService(store, gate, entry, orders.WithMetrics(metrics.NewOrderMetricsWithRegisterer(reg))),
		Logger:  entry,
		Metrics: metrics.NewHTTPMetricsWithRegisterer(reg),
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testAPI{t: t, server: server, auth: authSvc, registry: reg}
}

// do выполняет запрос и декодирует JSON-ответ в out (если out != nil).
func (a *testAPI) do(method, path, token string, body any, out any) *http.Response {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// signUp регистрирует пользователя и возвращает его токен.
func (a *testAPI) signUp(email string, admin bool) string {
	a.t.Helper()

	resp := a.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "name": "User", "password": "long-enough-password",
	}, nil)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)

	if admin {
		_, err := a.auth.GrantRole(context.Background(), email, domain.RoleAdmin)
		require.NoError(a.t, err)
	}

	var token auth.Token
	resp = a.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "long-enough-password",
	}, &token)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(a.t, token.AccessToken)
	return token.AccessToken
}

func (a *testAPI) createProduct(adminToken, name string, price int64, stock int32) int64 {
	a.t.Helper()

	var product catalog.ProductView
	resp := a.do(http.MethodPost, "/products", adminToken, map[string]any{
		"name": name, "price_minor": price, "stock": stock,
	}, &product)
	require.Equal(a.t, http.StatusCreated, resp.StatusCode)
	return product.ID
}

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func TestRouter_AuthFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.signUp("bob@example.com", false)

	var profile auth.Profile
	resp := api.do(http.MethodGet, "/auth/me", token, nil, &profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "bob@example.com", profile.Email)
	assert.Equal(t, []string{domain.RoleCustomer}, profile.Roles)

	var dup errorEnvelope
	resp = api.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": "bob@example.com", "name": "Bob", "password": "long-enough-password",
	}, &dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", dup.Error.Code)

	var bad errorEnvelope
	resp = api.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "wrong-password",
	}, &bad)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", bad.Error.Code)
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/auth/me", "/order/all", "/order/1", "/order/sales/all"} {
		t.Run(path, func(t *testing.T) {
			resp := api.do(http.MethodGet, path, "", nil, nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
		})
	}

	resp := api.do(http.MethodGet, "/order/all", "garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = api.do(http.MethodGet, "/products", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_PurchaseFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signUp("admin@example.com", true)
	customer := api.signUp("alice@example.com", false)

	productID := api.createProduct(admin, "Lamp", 1250, 5)

	var created orders.OrderCreated
	resp := api.do(http.MethodPost, "/order/purchase", customer, map[string]any{
		"products": []map[string]any{{"product_id": productID, "amount": 2}},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Positive(t, created.OrderID)

	var detail orders.OrderDetail
	resp = api.do(http.MethodGet, fmt.Sprintf("/order/%d", created.OrderID), customer, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2500), detail.TotalPriceMinor)
	require.Len(t, detail.Lines, 1)
	assert.Equal(t, "Lamp", detail.Lines[0].Name)
	assert.Equal(t, int64(1250), detail.Lines[0].UnitPriceMinor)

	var product catalog.ProductView
	api.do(http.MethodGet, fmt.Sprintf("/products/%d", productID), "", nil, &product)
	assert.Equal(t, int32(3), product.Stock)

	var short errorEnvelope
	resp = api.do(http.MethodPost, "/order/purchase", customer, map[string]any{
		"products": []map[string]any{{"product_id": productID, "amount": 10}},
	}, &short)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "insufficient_stock", short.Error.Code)
	assert.EqualValues(t, 3, short.Error.Details["available"])

	var missing errorEnvelope
	resp = api.do(http.MethodPost, "/order/purchase", customer, map[string]any{
		"products": []map[string]any{{"product_id": 999, "amount": 1}},
	}, &missing)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, []any{float64(999)}, missing.Error.Details["product_ids"])

	var page domain.Page[orders.OrderSummary]
	resp = api.do(http.MethodGet, "/order/all?page=1&limit=5", customer, nil, &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, 5, page.PageSize)
}

func TestRouter_OrderVisibility(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signUp("admin@example.com", true)
	alice := api.signUp("alice@example.com", false)
	eve := api.signUp("eve@example.com", false)

	var created orders.OrderCreated
	resp := api.do(http.MethodPost, "/order/custom", alice, map[string]string{
		"name": "Oak table", "description": "Two meters, oiled",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	path := fmt.Sprintf("/order/%d", created.OrderID)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, path, eve, nil, nil).StatusCode)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, alice, nil, nil).StatusCode)

	customPath := fmt.Sprintf("/order/custom/%d", created.OrderID)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, customPath, alice, nil, nil).StatusCode)

	var detail orders.OrderDetail
	resp = api.do(http.MethodGet, customPath, admin, nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.OrderStatusCustomPending, detail.Status)

	var custom domain.Page[orders.OrderSummary]
	resp = api.do(http.MethodGet, "/order/custom/all", admin, nil, &custom)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, custom.TotalItems)
}

func TestRouter_RejectsBadInput(t *testing.T) {
	api := newTestAPI(t)
	customer := api.signUp("alice@example.com", false)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{name: "unknown state", method: http.MethodGet, path: "/order/all?state=lost", status: http.StatusBadRequest},
		{name: "zero page", method: http.MethodGet, path: "/order/all?page=0", status: http.StatusBadRequest},
		{name: "huge limit", method: http.MethodGet, path: "/order/all?limit=1000", status: http.StatusBadRequest},
		{name: "non numeric id", method: http.MethodGet, path: "/order/abc", status: http.StatusBadRequest},
		{name: "unknown field", method: http.MethodPost, path: "/order/custom", body: map[string]string{"title": "x"}, status: http.StatusBadRequest},
		{name: "empty purchase", method: http.MethodPost, path: "/order/purchase", body: map[string]any{"products": []any{}}, status: http.StatusBadRequest},
		{name: "customer creates product", method: http.MethodPost, path: "/products", body: map[string]any{"name": "x", "price_minor": 1}, status: http.StatusForbidden},
		{name: "unknown route", method: http.MethodGet, path: "/nowhere", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(tt.method, tt.path, customer, tt.body, nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		})
	}
}

func TestRouter_SupplierOrders(t *testing.T) {
	api := newTestAPI(t)
	admin := api.signUp("admin@example.com", true)

	var supplier catalog.SupplierView
	resp := api.do(http.MethodPost, "/suppliers", admin, map[string]string{
		"name": "Acme", "email": "sales@acme.test", "phone": "+100",
		"address": "1 Main St", "city": "Springfield", "state": "IL",
		"country": "US", "postal_code": "62701",
	}, &supplier)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	productID := api.createProduct(admin, "Bolt", 10, 0)

	var order orders.SupplierOrderView
	resp = api.do(http.MethodPost, "/order/sales", admin, map[string]any{
		"supplier_id": supplier.ID, "product_id": productID, "amount": 100, "total_price_minor": 900,
	}, &order)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Acme", order.SupplierName)
	assert.Equal(t, "Bolt", order.ProductName)

	var fetched orders.SupplierOrderView
	resp = api.do(http.MethodGet, fmt.Sprintf("/order/sales/%d", order.ID), admin, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.ID, fetched.ID)

	var page domain.Page[orders.SupplierOrderView]
	resp = api.do(http.MethodGet, "/order/sales/all", admin, nil, &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, page.TotalItems)
}

func TestRouter_RequestIDAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	req, err := http.NewRequest(http.MethodGet, api.server.URL+"/products/42", nil)
	require.NoError(t, err)
	req.Header.Set(httpapi.RequestIDHeader, "req-123")

	resp, err := api.server.Client().Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(httpapi.RequestIDHeader))

	resp = api.do(http.MethodGet, "/products", "", nil, nil)
	assert.NotEmpty(t, resp.Header.Get(httpapi.RequestIDHeader))

	families, err := api.registry.Gather()
	require.NoError(t, err)

	var routes []string
	for _, family := range families {
		if family.GetName() != "shop_http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" {
					routes = append(routes, label.GetValue())
				}
			}
		}
	}
	assert.Contains(t, routes, "/products/{id}")
}
