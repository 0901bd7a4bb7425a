package handlers

import (
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

type UserHandler struct {
	userService  *service.UserService
	eventService *service.EventService
	logger       *slog.Logger
}

func NewUserHandler(userService *service.UserService, eventService *service.EventService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService:  userService,
		eventService: eventService,
		logger:       logger,
	}
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, ProfileResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

// Events lists the caller's active created events, newest date first, with
// participant projections.
func (h *UserHandler) Events(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	events, err := h.eventService.ListByCreator(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list user events", slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to fetch user events")
		return
	}

	respondJSON(w, http.StatusOK, toEventListResponse(events))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	if err := h.userService.SoftDelete(r.Context(), user.ID, targetID); err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			respondError(w, http.StatusForbidden, "Not authorized to delete this user")
		case errors.Is(err, domain.ErrUserNotFound):
			respondError(w, http.StatusNotFound, "User not found")
		default:
			h.logger.Error("failed to delete user", slog.String("error", err.Error()))
			respondError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "User soft deleted successfully"})
}
