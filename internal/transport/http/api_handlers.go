package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/parlor-chat/parlor/internal/core"
	"github.com/parlor-chat/parlor/internal/store"
)

// APIHandlers provides HTTP handlers for the REST endpoints.
type APIHandlers struct {
	hub   *core.Hub
	store store.Store
	log   *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, st store.Store, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:   hub,
		store: st,
		log:   logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name string `json:"name"`
}

// UserPayload represents a participant in API responses.
type UserPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RegisterResponse represents the registration response body.
type RegisterResponse struct {
	Status string      `json:"status"`
	User   UserPayload `json:"user"`
}

// ErrorResponse represents an error response body with a distinguishing status.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Register reserves a display name for a new participant.
// POST /api/register
func (h *APIHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusBadRequest, ErrorResponse{Status: "invalid_name", Error: "name is required"})
		return
	}

	participant, err := h.hub.Register(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrEmptyName):
			c.JSON(http.StatusBadRequest, ErrorResponse{Status: "invalid_name", Error: "name is required"})
		case errors.Is(err, core.ErrNameTaken):
			c.JSON(http.StatusConflict, ErrorResponse{Status: "name_taken", Error: "name already taken"})
		default:
			h.log.Error().Err(err).Str("name", req.Name).Msg("failed to register name")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Status: "error", Error: "internal server error"})
		}
		return
	}

	h.log.Info().Str("name", participant.Name).Str("id", participant.ID).Msg("name registered")
	c.JSON(http.StatusCreated, RegisterResponse{
		Status: "ok",
		User:   UserPayload{ID: participant.ID, Name: participant.Name},
	})
}

// ListUsers returns the registration journal.
// GET /api/users
func (h *APIHandlers) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: "error", Error: "internal server error"})
		return
	}

	response := make([]UserPayload, 0, len(users))
	for _, u := range users {
		response = append(response, UserPayload{ID: u.ID, Name: u.Name})
	}
	c.JSON(http.StatusOK, response)
}

// Presence returns the current participant list.
// GET /api/presence
func (h *APIHandlers) Presence(c *gin.Context) {
	participants, err := h.hub.Presence(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to snapshot presence")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Status: "error", Error: "internal server error"})
		return
	}

	response := make([]UserPayload, 0, len(participants))
	for _, p := range participants {
		response = append(response, UserPayload{ID: p.ID, Name: p.Name})
	}
	c.JSON(http.StatusOK, response)
}
