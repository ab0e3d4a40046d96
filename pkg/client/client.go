// Package client is the widget-side adapter for the chat relay backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SendResult mirrors the relay's success body. Extra fields from
// intermediate proxies are ignored.
type SendResult struct {
	Reply     string `json:"reply"`
	MessageID int64  `json:"messageId"`
}

type HistoryEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}

type Client struct {
	baseURL string
	userID  string
	http    *http.Client
}

type Option func(*Client)

// WithUserID pins the identity instead of the cached/generated one.
func WithUserID(userID string) Option {
	return func(c *Client) { c.userID = userID }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New builds a client for the backend at baseURL. When baseURL is empty it
// falls back to CHAT_BACKEND_URL and fails if that is unset too.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = os.Getenv("CHAT_BACKEND_URL")
	}
	if baseURL == "" {
		return nil, errors.New("CHAT_BACKEND_URL is not set")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.userID == "" {
		c.userID = resolveIdentity()
	}

	return c, nil
}

func (c *Client) UserID() string {
	return c.userID
}

// Send posts one user turn to the relay. Non-success statuses become
// errors embedding status and body; a non-JSON success body is treated as
// the reply text, mirroring the relay's own leniency.
func (c *Client) Send(ctx context.Context, text string) (*SendResult, error) {
	b, err := json.Marshal(map[string]string{
		"text":   text,
		"userId": c.userID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/api/chat",
		bytes.NewReader(b),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend error: %d %s", resp.StatusCode, string(body))
	}

	var result SendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return &SendResult{Reply: string(body)}, nil
	}
	return &result, nil
}

// History fetches the caller's conversation, oldest first.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	u := fmt.Sprintf("%s/api/chat/history/%s?limit=%d",
		c.baseURL, url.PathEscape(c.userID), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend error: %d %s", resp.StatusCode, string(body))
	}

	var payload struct {
		History []HistoryEntry `json:"history"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}

// resolveIdentity reads the locally cached identity, creating one on first
// use: CHAT_USER_ID env, then the cache file, then a generated UUID
// persisted for the next run. "anonymous" only when the cache is unusable.
func resolveIdentity() string {
	if id := os.Getenv("CHAT_USER_ID"); id != "" {
		return id
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "anonymous"
	}
	path := filepath.Join(dir, "n8n-chat-relay", "identity")

	if raw, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(raw)); id != "" {
			return id
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "anonymous"
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "anonymous"
	}
	return id
}
