package conversation

import (
	"context"
	"errors"
	"strings"
)

// ProviderRouter dispatches completion requests by model name: models
// containing "gemini" go to the Gemini client, everything else to Groq.
// This mirrors the dual-provider setup where Llama models run on Groq.
type ProviderRouter struct {
	groq   LLMClient
	gemini LLMClient
}

// NewProviderRouter builds a router over the two providers. Either provider
// may be nil; requests routed to a missing provider fail.
func NewProviderRouter(groq, gemini LLMClient) *ProviderRouter {
	return &ProviderRouter{groq: groq, gemini: gemini}
}

// Complete routes the request to the provider selected by the model name.
func (r *ProviderRouter) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	if isGeminiModel(req.Model) {
		if r.gemini == nil {
			return LLMResponse{}, errors.New("conversation: gemini provider not configured")
		}
		return r.gemini.Complete(ctx, req)
	}
	if r.groq == nil {
		return LLMResponse{}, errors.New("conversation: groq provider not configured")
	}
	return r.groq.Complete(ctx, req)
}

// FallbackMessageFor returns the user-facing degraded reply for the provider
// that serves the given model.
func FallbackMessageFor(model string) string {
	if isGeminiModel(model) {
		return GeminiFallbackMessage
	}
	return GroqFallbackMessage
}

func isGeminiModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "gemini")
}

var _ LLMClient = (*ProviderRouter)(nil)
