package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultHistoryLimit = 50

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// HandleChat — POST /api/chat
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "Missing userId or text")
		return
	}

	if payload.UserID == "" || payload.Text == "" {
		respondError(w, http.StatusBadRequest, "Missing userId or text")
		return
	}

	result, err := h.svc.Relay(r.Context(), payload.UserID, payload.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respondError(w, http.StatusBadRequest, "Missing userId or text")
		case errors.Is(err, ErrUpstream):
			respondError(w, http.StatusBadGateway, "Failed to reach chatbot backend")
		default:
			respondError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// HandleHistory — GET /api/chat/history/{userId}
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "Missing userId")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	history, err := h.svc.History(r.Context(), userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if history == nil {
		history = []ChatMessage{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"history": history})
}

// HandleHealth — GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
