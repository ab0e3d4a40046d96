package upstream

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI answers user turns directly via the OpenAI chat API. Used when no
// webhook URL is configured.
type OpenAI struct {
	client       *openai.Client
	model        string
	systemPrompt string
}

func NewOpenAI(apiKey, model, systemPrompt string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAI{
		client:       openai.NewClient(apiKey),
		model:        model,
		systemPrompt: systemPrompt,
	}
}

func (u *OpenAI) Send(ctx context.Context, userID, text string) ([]byte, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if u.systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: u.systemPrompt,
		})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := u.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    u.model,
		Messages: msgs,
		User:     userID,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: empty choices")
	}

	return []byte(resp.Choices[0].Message.Content), nil
}
