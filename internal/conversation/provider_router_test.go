package conversation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRouterDispatch(t *testing.T) {
	groq := respondWith("from groq")
	gemini := respondWith("from gemini")
	router := NewProviderRouter(groq, gemini)

	resp, err := router.Complete(context.Background(), LLMRequest{Model: "llama-3.3-70b-versatile"})
	require.NoError(t, err)
	assert.Equal(t, "from groq", resp.Text)

	resp, err = router.Complete(context.Background(), LLMRequest{Model: "gemini-2.5-flash"})
	require.NoError(t, err)
	assert.Equal(t, "from gemini", resp.Text)

	assert.Len(t, groq.calls, 1)
	assert.Len(t, gemini.calls, 1)
}

func TestProviderRouterModelMatchIsCaseInsensitive(t *testing.T) {
	gemini := respondWith("ok")
	router := NewProviderRouter(respondWith("nope"), gemini)

	_, err := router.Complete(context.Background(), LLMRequest{Model: "Gemini-2.5-Pro"})

	require.NoError(t, err)
	assert.Len(t, gemini.calls, 1)
}

func TestProviderRouterMissingProvider(t *testing.T) {
	router := NewProviderRouter(nil, nil)

	_, err := router.Complete(context.Background(), LLMRequest{Model: "llama-3.1-8b-instant"})
	assert.ErrorContains(t, err, "groq provider not configured")

	_, err = router.Complete(context.Background(), LLMRequest{Model: "gemini-2.5-flash"})
	assert.ErrorContains(t, err, "gemini provider not configured")
}

func TestFallbackMessageFor(t *testing.T) {
	assert.Equal(t, GroqFallbackMessage, FallbackMessageFor("llama-3.3-70b-versatile"))
	assert.Equal(t, GeminiFallbackMessage, FallbackMessageFor("gemini-2.5-flash"))
}
