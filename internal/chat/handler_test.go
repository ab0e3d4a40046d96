package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avoronov/n8n-chat-relay/internal/ratelimit"
	"github.com/avoronov/n8n-chat-relay/internal/upstream"
)

func setupRouter(t *testing.T, webhook http.HandlerFunc, rateLimit int) *chi.Mux {
	t.Helper()

	upstreamSrv := httptest.NewServer(webhook)
	t.Cleanup(upstreamSrv.Close)

	svc := NewService(NewMemoryStore(), upstream.NewWebhook(upstreamSrv.URL, 5*time.Second))
	handler := NewHandler(svc)
	limiter := ratelimit.NewLimiter(rateLimit, time.Minute)

	r := chi.NewRouter()
	RegisterRoutes(r, handler, limiter.Middleware)
	return r
}

func postChat(r http.Handler, userID, text string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{"userId": userID, "text": text})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatEndToEnd(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			Text   string `json:"text"`
			UserID string `json:"userId"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			t.Errorf("webhook got bad payload: %v", err)
		}
		if payload.Text != "hello" || payload.UserID != "u1" {
			t.Errorf("webhook got %+v", payload)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"reply":"hi there"}`)
	}, 20)

	resp := postChat(r, "u1", "hello")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result RelayResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if result.Reply != "hi there" || result.MessageID != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	// History round-trip
	req := httptest.NewRequest(http.MethodGet, "/api/chat/history/u1", nil)
	hresp := httptest.NewRecorder()
	r.ServeHTTP(hresp, req)
	if hresp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", hresp.Code)
	}

	var payload struct {
		History []ChatMessage `json:"history"`
	}
	if err := json.Unmarshal(hresp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("bad history body: %v", err)
	}
	if len(payload.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(payload.History))
	}
	m := payload.History[0]
	if m.UserID != "u1" || m.Message != "hello" || m.Reply != "hi there" {
		t.Errorf("unexpected history entry: %+v", m)
	}
}

func TestChatMissingFields(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("webhook must not be called")
	}, 20)

	for _, pair := range [][2]string{{"", "hello"}, {"u1", ""}} {
		resp := postChat(r, pair[0], pair[1])
		if resp.Code != http.StatusBadRequest {
			t.Errorf("expected 400 for %q/%q, got %d", pair[0], pair[1], resp.Code)
		}
	}
}

func TestChatUpstreamFailure(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "workflow exploded", http.StatusInternalServerError)
	}, 20)

	resp := postChat(r, "u1", "hello")
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected generic error message in body")
	}

	// Nothing was persisted.
	req := httptest.NewRequest(http.MethodGet, "/api/chat/history/u1", nil)
	hresp := httptest.NewRecorder()
	r.ServeHTTP(hresp, req)

	var payload struct {
		History []ChatMessage `json:"history"`
	}
	json.Unmarshal(hresp.Body.Bytes(), &payload)
	if len(payload.History) != 0 {
		t.Errorf("expected empty history after upstream failure, got %d", len(payload.History))
	}
}

func TestChatPlainTextReply(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "plain text answer")
	}, 20)

	resp := postChat(r, "u1", "hello")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result RelayResult
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Reply != "plain text answer" {
		t.Errorf("expected raw text reply, got %q", result.Reply)
	}
}

func TestChatRateLimited(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"reply":"ok"}`)
	}, 2)

	for i := 0; i < 2; i++ {
		if resp := postChat(r, "u1", "hello"); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.Code)
		}
	}

	resp := postChat(r, "u1", "hello")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("RateLimit-Limit") != "2" {
		t.Errorf("expected RateLimit-Limit header, got %q", resp.Header().Get("RateLimit-Limit"))
	}

	// Another identity is unaffected.
	if other := postChat(r, "u2", "hello"); other.Code != http.StatusOK {
		t.Errorf("expected 200 for other user, got %d", other.Code)
	}
}

func TestHealth(t *testing.T) {
	r := setupRouter(t, func(w http.ResponseWriter, _ *http.Request) {}, 20)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}
