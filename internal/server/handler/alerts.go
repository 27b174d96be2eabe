package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/polysentinel/sentinel/internal/domain"
)

// AlertProvider supplies the retained alert list, most recent first.
type AlertProvider interface {
	Alerts() []domain.ClusterAlert
}

// AlertHandler serves the alert-list endpoint used by the dashboard's REST
// fallback and by late joiners before their WebSocket snapshot arrives.
type AlertHandler struct {
	alerts AlertProvider
	logger *slog.Logger
}

// NewAlertHandler creates an AlertHandler.
func NewAlertHandler(alerts AlertProvider, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, logger: logger}
}

// ListAlerts returns the retained alerts, most recent first. An optional
// ?limit=N query truncates the response.
// GET /api/alerts
func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.alerts.Alerts()

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(alerts) {
			alerts = alerts[:n]
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}
