package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

type service struct {
	store    Store
	upstream Upstream
}

func NewService(store Store, upstream Upstream) Service {
	return &service{
		store:    store,
		upstream: upstream,
	}
}

// Relay forwards one user turn to the upstream, persists the exchange and
// returns the normalized reply. Exactly one upstream call and one store
// write per successful invocation; failures are not retried.
func (s *service) Relay(ctx context.Context, userID, text string) (*RelayResult, error) {
	if userID == "" || text == "" {
		return nil, fmt.Errorf("%w: missing userId or text", ErrValidation)
	}

	raw, err := s.upstream.Send(ctx, userID, text)
	if err != nil {
		log.Printf("[relay] upstream error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	reply := normalizeReply(raw)

	id, err := s.store.Append(ctx, userID, text, reply)
	if err != nil {
		log.Printf("[relay] store append error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &RelayResult{Reply: reply, MessageID: id}, nil
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]ChatMessage, error) {
	msgs, err := s.store.History(ctx, userID, limit)
	if err != nil {
		log.Printf("[relay] history error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}

// normalizeReply turns a heterogeneous upstream body into reply text.
// JSON objects resolve "reply", then "message", then the re-serialized
// object; anything that is not a JSON object passes through as raw text.
func normalizeReply(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return string(raw)
	}

	if s, ok := body["reply"].(string); ok && s != "" {
		return s
	}
	if s, ok := body["message"].(string); ok && s != "" {
		return s
	}

	b, err := json.Marshal(body)
	if err != nil {
		return string(raw)
	}
	return string(b)
}
