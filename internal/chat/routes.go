package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the chat API. The limiter guards only the relay
// endpoint; history reads and health are not rate limited.
func RegisterRoutes(r chi.Router, h *Handler, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Post("/api/chat", h.HandleChat)
	r.Get("/api/chat/history/{userId}", h.HandleHistory)
	r.Get("/health", h.HandleHealth)
}
