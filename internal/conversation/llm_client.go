package conversation

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation transcript. The transcript is
// replayed verbatim to the completion provider, so insertion order matters.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMRequest is a completion request against a specific model.
type LLMRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float32
}

// LLMResponse carries the generated text.
type LLMResponse struct {
	Text string
}

// LLMClient is the completion capability used for both conversational replies
// and structured extraction.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
