package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/logger"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/middle"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/response"
	"github.com/taiwanleaftea/ceca-bank-payments/order"
	"github.com/taiwanleaftea/ceca-bank-payments/provider"
)

const orderIDRule = "required,max=64,printascii,excludesall=/?#&%"

// PaymentServiceInterface defines the interface for payment operations
type PaymentServiceInterface interface {
	Checkout(ctx context.Context, gatewayName, orderID string) (*provider.RedirectForm, error)
	HandleWebhook(ctx context.Context, gatewayName string, fields map[string]string, meta provider.WebhookMeta) (provider.ResponseToken, error)
	Order(ctx context.Context, orderID string) (*order.Order, error)
	GatewayInfo(name string) (provider.GatewayInfo, error)
	Gateways() []provider.GatewayInfo
}

// FormRenderer writes the HTML page that posts a redirect form to the bank
type FormRenderer func(w io.Writer, form *provider.RedirectForm) error

// PaymentHandler handles payment related HTTP requests
type PaymentHandler struct {
	paymentService PaymentServiceInterface
	validate       *validator.Validate
	renderers      map[string]FormRenderer
}

// NewPaymentHandler creates a new payment handler. renderers maps gateway
// names to their checkout page.
func NewPaymentHandler(paymentService PaymentServiceInterface, validate *validator.Validate, renderers map[string]FormRenderer) *PaymentHandler {
	if renderers == nil {
		renderers = map[string]FormRenderer{}
	}
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
		renderers:      renderers,
	}
}

// HandleWebhook receives a bank notification and answers it with the bare
// response token. Retryable failures are answered 503 so the bank redelivers.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	providerName := chi.URLParam(r, "provider")

	if err := r.ParseForm(); err != nil {
		logger.Warn("Unreadable webhook body", logger.LogContext{
			Provider:  providerName,
			RequestID: middleware.GetReqID(r.Context()),
			Fields: map[string]any{
				"error": err.Error(),
			},
		})
		response.WriteToken(w, http.StatusBadRequest, string(provider.TokenFailure))
		return
	}

	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			fields[key] = values[0]
		}
	}

	token, err := h.paymentService.HandleWebhook(ctx, providerName, fields, provider.WebhookMeta{
		RequestID: middleware.GetReqID(r.Context()),
		ClientIP:  middle.GetClientIP(r),
	})

	switch {
	case errors.Is(err, provider.ErrGatewayNotFound):
		response.WriteToken(w, http.StatusNotFound, "")
	case provider.IsRetryable(token, err):
		response.WriteToken(w, http.StatusServiceUnavailable, string(token))
	default:
		response.WriteToken(w, http.StatusOK, string(token))
	}
}

// CheckoutPage renders the self-submitting form that sends the buyer to the bank
func (h *PaymentHandler) CheckoutPage(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")
	orderID := chi.URLParam(r, "orderID")

	render, ok := h.renderers[providerName]
	if !ok {
		response.Error(w, http.StatusNotFound, "Checkout page not available", provider.ErrGatewayNotFound)
		return
	}

	form, ok := h.buildForm(w, r, providerName, orderID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, form); err != nil {
		logger.Error("Failed to render checkout page", err, logger.LogContext{
			Provider: providerName,
			OrderID:  orderID,
		})
		response.Error(w, http.StatusInternalServerError, "Failed to render checkout page", nil)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetRedirectForm returns the signed redirect form as JSON
func (h *PaymentHandler) GetRedirectForm(w http.ResponseWriter, r *http.Request) {
	form, ok := h.buildForm(w, r, chi.URLParam(r, "provider"), chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	response.Success(w, http.StatusOK, "Redirect form built", form)
}

func (h *PaymentHandler) buildForm(w http.ResponseWriter, r *http.Request, providerName, orderID string) (*provider.RedirectForm, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := h.validate.Var(orderID, orderIDRule); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID", err)
		return nil, false
	}

	form, err := h.paymentService.Checkout(ctx, providerName, orderID)
	if err != nil {
		response.Error(w, statusFor(err), "Failed to build redirect form", err)
		return nil, false
	}

	return form, true
}

// GetOrder returns an order with its notes
func (h *PaymentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orderID := chi.URLParam(r, "orderID")
	if err := h.validate.Var(orderID, orderIDRule); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid order ID", err)
		return
	}

	o, err := h.paymentService.Order(ctx, orderID)
	if err != nil {
		response.Error(w, statusFor(err), "Failed to load order", err)
		return
	}

	response.Success(w, http.StatusOK, "Order retrieved", o)
}

// ListGateways describes every configured gateway
func (h *PaymentHandler) ListGateways(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Gateways retrieved", h.paymentService.Gateways())
}

// GetGateway describes one gateway, including the notify URL to enter in the
// bank's merchant dashboard
func (h *PaymentHandler) GetGateway(w http.ResponseWriter, r *http.Request) {
	info, err := h.paymentService.GatewayInfo(chi.URLParam(r, "provider"))
	if err != nil {
		response.Error(w, statusFor(err), "Gateway not found", err)
		return
	}

	response.Success(w, http.StatusOK, "Gateway retrieved", info)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, provider.ErrGatewayNotFound), errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, provider.ErrGatewayDisabled):
		return http.StatusConflict
	}

	var c interface{ Code() string }
	if errors.As(err, &c) {
		switch c.Code() {
		case "VALIDATION":
			return http.StatusUnprocessableEntity
		case "CONFIGURATION", "STORE_UNAVAILABLE":
			return http.StatusServiceUnavailable
		}
	}

	return http.StatusInternalServerError
}
