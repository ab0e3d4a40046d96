package ratelimit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window per-identity request counter. State is
// in-memory only and resets on restart.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
}

func NewLimiter(limit int, period time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
	}

	// Drop identities idle for a full window.
	go func() {
		for {
			time.Sleep(period)
			l.mu.Lock()
			now := time.Now()
			for key, w := range l.windows {
				if now.Sub(w.start) > period {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}()

	return l
}

// Allow counts one request for the key. It reports whether the request is
// admitted, how many requests remain in the window, and when the window
// resets.
func (l *Limiter) Allow(key string) (ok bool, remaining int, reset time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	w, exists := l.windows[key]
	if !exists || now.Sub(w.start) >= l.period {
		l.windows[key] = &window{count: 1, start: now}
		return true, l.limit - 1, now.Add(l.period)
	}

	reset = w.start.Add(l.period)
	if w.count >= l.limit {
		return false, 0, reset
	}

	w.count++
	return true, l.limit - w.count, reset
}

// Middleware admits or rejects requests per identity and stamps
// RateLimit-* headers on every response. 429 rejections never reach the
// wrapped handler.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := identityKey(r)

		ok, remaining, reset := l.Allow(key)

		secs := int(time.Until(reset).Seconds())
		if secs < 0 {
			secs = 0
		}
		w.Header().Set("RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(secs))

		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"Too many messages. Please wait before sending another."}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// identityKey resolves the limiter key: the userId from the request body
// if present, otherwise the caller's remote address. First match wins,
// never both. The body is restored for the downstream handler.
func identityKey(r *http.Request) string {
	if r.Body == nil {
		return r.RemoteAddr
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return r.RemoteAddr
	}

	var payload struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.UserID == "" {
		return r.RemoteAddr
	}
	return payload.UserID
}
