package conversation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carefront/frontdesk-ai/internal/observability/metrics"
	"github.com/carefront/frontdesk-ai/pkg/logging"
)

var engineTracer = otel.Tracer("frontdesk.internal.conversation.engine")

// confirmationKeywords trigger the commit workflow when any of them appears
// anywhere in the utterance. The substring scan is deliberately naive: a
// casual "ok" mid-sentence commits the booking. StrictConfirmation narrows
// the scan to whole-word matches for deployments that want fewer false
// positives; the loose scan stays the default.
var confirmationKeywords = []string{"confirm", "yes", "sure", "ok", "okay", "book it", "schedule"}

var strictConfirmationRE = regexp.MustCompile(`\b(confirm|yes|sure|ok|okay|schedule|book it)\b`)

// TurnRequest is one client turn.
type TurnRequest struct {
	SessionKey string
	Utterance  string
	Reset      bool
}

// TurnResult is what a turn returns to the transport layer.
type TurnResult struct {
	Reply      string
	Transcript []ChatMessage
	Slots      map[string]string
}

// EngineConfig tunes the dialogue engine.
type EngineConfig struct {
	ChatModel          string
	Temperature        float32
	StrictConfirmation bool
}

// Engine orchestrates one conversational turn: transcript bookkeeping, slot
// extraction, the assistant reply, confirmation detection, and the commit
// workflow. No failure in a turn ever escapes as an error; every path
// resolves to a best-effort reply.
type Engine struct {
	store     *SessionStore
	extractor *SlotExtractor
	completer LLMClient
	commit    *CommitWorkflow
	cfg       EngineConfig
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics
}

// NewEngine wires the dialogue engine.
func NewEngine(store *SessionStore, extractor *SlotExtractor, completer LLMClient, commit *CommitWorkflow, cfg EngineConfig, m *metrics.ConversationMetrics, logger *logging.Logger) *Engine {
	if store == nil {
		panic("conversation: engine requires a session store")
	}
	if extractor == nil {
		panic("conversation: engine requires an extractor")
	}
	if completer == nil {
		panic("conversation: engine requires a completion client")
	}
	if commit == nil {
		panic("conversation: engine requires a commit workflow")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Engine{
		store:     store,
		extractor: extractor,
		completer: completer,
		commit:    commit,
		cfg:       cfg,
		logger:    logger,
		metrics:   m,
	}
}

// Store exposes the session store so an external scheduler can sweep it.
func (e *Engine) Store() *SessionStore {
	return e.store
}

// ProcessTurn drives one request/response exchange. Reset turns short-circuit
// with a fixed acknowledgement and never touch the completion provider.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) TurnResult {
	start := time.Now()
	ctx, span := engineTracer.Start(ctx, "conversation.turn")
	defer span.End()
	span.SetAttributes(
		attribute.String("frontdesk.session_key", req.SessionKey),
		attribute.Bool("frontdesk.reset", req.Reset),
	)
	defer func() {
		e.metrics.ObserveTurnLatency(time.Since(start).Seconds())
	}()

	sess := e.store.GetOrCreate(req.SessionKey)

	if req.Reset {
		e.store.Clear(sess.Key)
		sess = e.store.GetOrCreate(sess.Key)
		sess.SeedTranscript()
		e.metrics.ObserveTurn("reset")
		e.logger.Info("session reset", "session_key", sess.Key)
		return TurnResult{
			Reply:      ResetAcknowledgement,
			Transcript: copyTranscript(sess.Transcript),
			Slots:      sess.Slots.Map(),
		}
	}

	sess.SeedTranscript()
	sess.Append(ChatRoleUser, req.Utterance)

	partial := e.extractor.Extract(ctx, req.Utterance, sess.RecentContext(recentContextTurns), sess.Slots)
	sess.Slots.Merge(partial)

	reply := e.generateReply(ctx, sess.Transcript)
	sess.Append(ChatRoleAssistant, reply)

	if e.detectConfirmation(req.Utterance) {
		e.logger.Info("confirmation detected", "session_key", sess.Key, "filled_slots", sess.Slots.FilledCount())
		reply = e.commit.Run(ctx, sess, reply)
	}

	e.metrics.ObserveTurn("message")
	e.logger.Debug("turn processed",
		"session_key", sess.Key,
		"transcript_len", len(sess.Transcript),
		"filled_slots", sess.Slots.FilledCount(),
	)

	return TurnResult{
		Reply:      reply,
		Transcript: copyTranscript(sess.Transcript),
		Slots:      sess.Slots.Map(),
	}
}

// generateReply runs the completion over the full transcript. Provider
// failure degrades to the provider's human-readable fallback line.
func (e *Engine) generateReply(ctx context.Context, transcript []ChatMessage) string {
	ctx, span := engineTracer.Start(ctx, "conversation.reply")
	defer span.End()

	resp, err := e.completer.Complete(ctx, LLMRequest{
		Model:       e.cfg.ChatModel,
		Messages:    transcript,
		Temperature: e.cfg.Temperature,
	})
	if err != nil {
		span.RecordError(err)
		e.logger.Error("completion failed, degrading reply", "error", err.Error())
		return FallbackMessageFor(e.cfg.ChatModel)
	}
	return resp.Text
}

func (e *Engine) detectConfirmation(utterance string) bool {
	lowered := strings.ToLower(utterance)
	if e.cfg.StrictConfirmation {
		return strictConfirmationRE.MatchString(lowered)
	}
	for _, kw := range confirmationKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func copyTranscript(transcript []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(transcript))
	copy(out, transcript)
	return out
}
