package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/taiwanleaftea/ceca-bank-payments/handler"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

func denyAll(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func TestRoutes_EndpointRegistration(t *testing.T) {
	service := provider.NewPaymentService(order.NewMemoryStore(""), nil, "https://pay.example.com")

	r := chi.NewRouter()
	Routes(r, Handlers{
		Payment: handler.NewPaymentHandler(service, validator.New(), nil),
		Logs:    handler.NewLogsHandler(nil),
	}, denyAll)

	tests := []struct {
		name       string
		method     string
		path       string
		expectCode int
	}{
		{"webhook is public", http.MethodPost, "/webhooks/ceca", http.StatusNotFound},
		{"redirect needs auth", http.MethodGet, "/payments/ceca/500/redirect", http.StatusUnauthorized},
		{"order needs auth", http.MethodGet, "/orders/500", http.StatusUnauthorized},
		{"gateways need auth", http.MethodGet, "/gateways", http.StatusUnauthorized},
		{"gateway needs auth", http.MethodGet, "/gateways/ceca", http.StatusUnauthorized},
		{"logs need auth", http.MethodGet, "/logs/ceca/rejections", http.StatusUnauthorized},
		{"unknown method", http.MethodDelete, "/orders/500", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.expectCode, rr.Code)
		})
	}
}

func TestRoutes_WithoutLogs(t *testing.T) {
	service := provider.NewPaymentService(order.NewMemoryStore(""), nil, "")

	r := chi.NewRouter()
	assert.NotPanics(t, func() {
		Routes(r, Handlers{Payment: handler.NewPaymentHandler(service, validator.New(), nil)})
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs/ceca/rejections", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
