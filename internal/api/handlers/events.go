package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/avdeev/events-manager/internal/api/middleware"
	"github.com/avdeev/events-manager/internal/domain"
	"github.com/avdeev/events-manager/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type EventHandler struct {
	eventService *service.EventService
	logger       *slog.Logger
}

func NewEventHandler(eventService *service.EventService, logger *slog.Logger) *EventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHandler{eventService: eventService, logger: logger}
}

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
}

type EventResponse struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description,omitempty"`
	Date         time.Time      `json:"date"`
	CreatedBy    string         `json:"createdBy"`
	Creator      *UserResponse  `json:"creator,omitempty"`
	Participants []UserResponse `json:"participants,omitempty"`
	DeletedAt    *time.Time     `json:"deletedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

type ParticipationResponse struct {
	Message       string `json:"message"`
	Participating bool   `json:"participating"`
}

func toEventResponse(e *domain.Event) EventResponse {
	resp := EventResponse{
		ID:          e.ID.String(),
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		CreatedBy:   e.CreatedBy.String(),
		DeletedAt:   e.DeletedAt,
		CreatedAt:   e.CreatedAt,
	}
	if e.Creator != nil {
		creator := toUserResponse(e.Creator)
		resp.Creator = &creator
	}
	return resp
}

func toEventListResponse(items []*service.EventWithParticipants) []EventResponse {
	out := make([]EventResponse, 0, len(items))
	for _, item := range items {
		resp := toEventResponse(item.Event)
		resp.Participants = make([]UserResponse, 0, len(item.Participants))
		for _, p := range item.Participants {
			resp.Participants = append(resp.Participants, toUserResponse(p))
		}
		out = append(out, resp)
	}
	return out
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" || req.Date.IsZero() {
		respondError(w, http.StatusBadRequest, "Title and date are required")
		return
	}

	event, err := h.eventService.Create(r.Context(), user.ID, service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		h.logger.Error("failed to create event", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to create event")
		return
	}

	respondJSON(w, http.StatusCreated, toEventResponse(event))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Event not found")
		return
	}

	var req UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.eventService.Update(r.Context(), user.ID, eventID, service.UpdateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		h.writeEventError(w, err, "Failed to update event")
		return
	}

	respondJSON(w, http.StatusOK, toEventResponse(event))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Event not found")
		return
	}

	if err := h.eventService.Delete(r.Context(), user.ID, eventID); err != nil {
		h.writeEventError(w, err, "Failed to delete event")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Event soft deleted"})
}

func (h *EventHandler) Participate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Event not found")
		return
	}

	participating, err := h.eventService.ToggleParticipation(r.Context(), user.ID, eventID)
	if err != nil {
		h.writeEventError(w, err, "Failed to toggle participation")
		return
	}

	message := "Participation canceled"
	if participating {
		message = "Participating"
	}
	respondJSON(w, http.StatusOK, ParticipationResponse{
		Message:       message,
		Participating: participating,
	})
}

func (h *EventHandler) Participants(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "Event not found")
		return
	}

	participants, err := h.eventService.Participants(r.Context(), eventID)
	if err != nil {
		h.writeEventError(w, err, "Failed to get participants")
		return
	}

	out := make([]UserResponse, 0, len(participants))
	for _, p := range participants {
		out = append(out, toUserResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *EventHandler) writeEventError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, domain.ErrNotEventOwner):
		respondError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, domain.ErrOwnEventParticipation):
		respondError(w, http.StatusBadRequest, "Cannot participate in your own event")
	default:
		h.logger.Error("event operation failed", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
