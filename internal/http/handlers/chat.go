package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/carefront/frontdesk-ai/internal/conversation"
	"github.com/carefront/frontdesk-ai/pkg/logging"
)

// TurnProcessor is the engine surface the chat handler depends on.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, req conversation.TurnRequest) conversation.TurnResult
}

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	engine TurnProcessor
	logger *logging.Logger
}

// NewChatHandler creates the handler.
func NewChatHandler(engine TurnProcessor, logger *logging.Logger) *ChatHandler {
	if engine == nil {
		panic("handlers: chat handler requires an engine")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{engine: engine, logger: logger}
}

// chatResponse is the wire shape clients consume: the assistant reply, the
// running transcript, and the structured slots collected so far.
type chatResponse struct {
	Response string                     `json:"response"`
	Context  []conversation.ChatMessage `json:"context"`
	Data     map[string]string          `json:"data"`
}

// Chat handles one form-encoded turn. Fields: input (the utterance),
// newchat ("yes" resets the session), session_id (defaults to guest).
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	req := conversation.TurnRequest{
		SessionKey: strings.TrimSpace(r.FormValue("session_id")),
		Utterance:  strings.TrimSpace(r.FormValue("input")),
		Reset:      strings.EqualFold(strings.TrimSpace(r.FormValue("newchat")), "yes"),
	}
	if req.Utterance == "" && !req.Reset {
		http.Error(w, "input is required", http.StatusBadRequest)
		return
	}

	result := h.engine.ProcessTurn(r.Context(), req)

	writeJSON(w, http.StatusOK, chatResponse{
		Response: result.Reply,
		Context:  result.Transcript,
		Data:     result.Slots,
	})
}

// NewSession issues a fresh session identifier for clients that want
// isolation from the shared guest session.
func (h *ChatHandler) NewSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": uuid.NewString(),
	})
}

// HealthCheck returns a simple health check response.
func (h *ChatHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
