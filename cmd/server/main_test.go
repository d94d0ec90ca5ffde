package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ae-portal/internal/config"
	"ae-portal/internal/handlers"
	"ae-portal/internal/metrics"
	"ae-portal/internal/middleware"
	"ae-portal/internal/services"
	"ae-portal/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, data := testutil.NewStore(t)
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	catalog := services.NewCatalogService(store, nil, services.NewSalesGate())
	baskets := services.NewBasketService(store, m)
	checkout := services.NewCheckoutService(store, catalog, baskets, nil, config.EbouticConfig{RefillingType: data.RefillingType.ID}, m)
	settlement := services.NewSettlementEngine(store, nil, data.RefillingType.ID, m)

	sessionStore := sessions.NewCookieStore([]byte("router-test"))
	eboutic := handlers.NewEbouticHandler(catalog, baskets, checkout, settlement,
		services.NewAccountService(store), middleware.NewSessionMiddleware(sessionStore))

	return newRouter(m, registry,
		middleware.NewAuthMiddleware(store.Users, sessionStore),
		eboutic,
		handlers.NewHealthHandler(store.DB()))
}

func TestRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name        string
		method      string
		path        string
		status      int
		contentType string
	}{
		{"health", "GET", "/health", http.StatusOK, "application/json"},
		{"unknown route", "GET", "/nope", http.StatusNotFound, "application/json"},
		{"wrong method", "DELETE", "/health", http.StatusMethodNotAllowed, "application/json"},
		{"shop requires a user", "GET", "/eboutic/", http.StatusUnauthorized, "application/json"},
		{"callback without key", "GET", "/eboutic/et_autoanswer?Amount=1&BasketID=1&Error=00000&Sig=abc", http.StatusBadRequest, "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.contentType, rr.Header().Get("Content-Type"))
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	router := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `ae_portal_http_requests_total{method="GET",status="200"} 1`)
}
