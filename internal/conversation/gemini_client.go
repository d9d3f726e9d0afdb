package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiFallbackMessage is returned in place of a reply when Gemini is
// unreachable after retries.
const GeminiFallbackMessage = "I'm having trouble connecting to Gemini (Google) right now."

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient implements LLMClient using Google's Gemini API. The transcript
// is flattened into a single role-prefixed prompt.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini completion client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("conversation: gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to create gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// Complete flattens the transcript and sends it to Gemini. Models other than
// the native-audio variants are coerced to the default flash model.
func (c *GeminiClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if c.client == nil {
		return LLMResponse{}, errors.New("conversation: gemini client not initialized")
	}

	modelID := defaultGeminiModel
	if strings.Contains(strings.ToLower(req.Model), "native-audio") {
		modelID = req.Model
	}

	model := c.client.GenerativeModel(modelID)
	model.SetTemperature(req.Temperature)

	prompt := flattenTranscript(req.Messages)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return LLMResponse{}, fmt.Errorf("conversation: gemini completion failed: %w", err)
	}
	text := collectGeminiText(resp)
	if text == "" {
		return LLMResponse{}, errors.New("conversation: gemini returned no content")
	}
	return LLMResponse{Text: text}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func flattenTranscript(messages []ChatMessage) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case ChatRoleSystem:
			b.WriteString("System: ")
		case ChatRoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

func collectGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(b.String())
}

var _ LLMClient = (*GeminiClient)(nil)
