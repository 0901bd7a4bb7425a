package handlers

import (
	"log/slog"
	"net/http"

	"github.com/avdeev/events-manager/internal/service"
)

type PublicHandler struct {
	eventService *service.EventService
	logger       *slog.Logger
}

func NewPublicHandler(eventService *service.EventService, logger *slog.Logger) *PublicHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublicHandler{eventService: eventService, logger: logger}
}

// ListEvents returns all events with creator and participant projections.
// Soft-deleted rows are hidden unless includeDeleted=true.
func (h *PublicHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("includeDeleted") == "true"

	events, err := h.eventService.ListPublic(r.Context(), includeDeleted)
	if err != nil {
		h.logger.Error("failed to list events", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to fetch events")
		return
	}

	respondJSON(w, http.StatusOK, toEventListResponse(events))
}
