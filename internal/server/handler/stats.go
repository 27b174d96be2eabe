package handler

import (
	"log/slog"
	"net/http"

	"github.com/polysentinel/sentinel/internal/domain"
)

// StatsProvider supplies the current pipeline statistics snapshot.
type StatsProvider interface {
	Stats() domain.PipelineStats
}

// StatsHandler serves the pipeline statistics endpoint.
type StatsHandler struct {
	stats  StatsProvider
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats StatsProvider, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{stats: stats, logger: logger}
}

// GetStats returns the current statistics snapshot.
// GET /api/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.Stats())
}
