package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// Webhook forwards user turns to an n8n workflow webhook. The webhook is
// opaque: it may answer JSON or plain text, and the raw body is returned
// either way.
type Webhook struct {
	url    string
	client *http.Client
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (u *Webhook) Send(ctx context.Context, userID, text string) ([]byte, error) {
	b, err := json.Marshal(map[string]string{
		"text":   text,
		"userId": userID,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		u.url,
		bytes.NewReader(b),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		return nil, errors.New(
			"webhook error: " +
				resp.Status +
				" body=" + string(body),
		)
	}

	return body, nil
}
