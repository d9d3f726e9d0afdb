package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// GroqFallbackMessage is returned in place of a reply when Groq is
// unreachable after retries. It is user-facing text, not an error.
const GroqFallbackMessage = "I'm having trouble connecting to Groq (Llama 3) right now."

const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient calls Groq's OpenAI-compatible chat completion API.
type GroqClient struct {
	client *openai.Client
}

// NewGroqClient builds a client against the Groq API. An empty baseURL uses
// the public Groq endpoint.
func NewGroqClient(apiKey, baseURL string) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	cfg.BaseURL = baseURL
	return &GroqClient{client: openai.NewClientWithConfig(cfg)}
}

// Complete sends the transcript to the chat completion endpoint.
func (c *GroqClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if c.client == nil {
		return LLMResponse{}, errors.New("conversation: groq client not initialized")
	}

	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := m.Role
		switch role {
		case ChatRoleSystem, ChatRoleUser, ChatRoleAssistant:
		default:
			role = openai.ChatMessageRoleUser
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.Temperature,
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: groq completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, errors.New("conversation: groq returned no choices")
	}
	return LLMResponse{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

var _ LLMClient = (*GroqClient)(nil)
