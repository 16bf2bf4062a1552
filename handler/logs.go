package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/opensearch"
	"github.com/taiwanleaftea/ceca-bank-payments/infra/response"
)

// WebhookLogReader reads the webhook audit trail
type WebhookLogReader interface {
	GetOrderWebhooks(ctx context.Context, provider, orderID string) ([]opensearch.WebhookLog, error)
	GetRecentRejections(ctx context.Context, provider string, hours int) ([]opensearch.WebhookLog, error)
}

// LogsHandler serves the webhook audit trail
type LogsHandler struct {
	logs WebhookLogReader
}

// NewLogsHandler creates a new logs handler. logs may be nil when auditing is off.
func NewLogsHandler(logs WebhookLogReader) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// GetOrderLogs lists every audited webhook delivery of an order, newest first
func (h *LogsHandler) GetOrderLogs(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	provider := chi.URLParam(r, "provider")
	orderID := chi.URLParam(r, "orderID")

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logs, err := h.logs.GetOrderWebhooks(ctx, provider, orderID)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to retrieve logs", err)
		return
	}

	response.Success(w, http.StatusOK, "Logs retrieved successfully", map[string]any{
		"provider": provider,
		"order_id": orderID,
		"count":    len(logs),
		"logs":     logs,
	})
}

// GetRejections lists recent deliveries that failed verification or processing
func (h *LogsHandler) GetRejections(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		response.Error(w, http.StatusServiceUnavailable, "Logging service not available", nil)
		return
	}

	provider := chi.URLParam(r, "provider")

	hours := 24
	if hoursStr := r.URL.Query().Get("hours"); hoursStr != "" {
		if h, err := strconv.Atoi(hoursStr); err == nil && h > 0 && h <= 168 { // max 7 days
			hours = h
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	logs, err := h.logs.GetRecentRejections(ctx, provider, hours)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to get rejected webhooks", err)
		return
	}

	response.Success(w, http.StatusOK, "Rejected webhooks retrieved successfully", map[string]any{
		"provider": provider,
		"hours":    hours,
		"count":    len(logs),
		"logs":     logs,
	})
}
