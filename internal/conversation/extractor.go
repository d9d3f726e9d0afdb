package conversation

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/carefront/frontdesk-ai/internal/observability/metrics"
	"github.com/carefront/frontdesk-ai/pkg/logging"
)

// Empty-value sentinels the extraction prompt instructs the model to emit for
// slots it cannot find. Lines carrying either value are discarded.
const (
	emptySentinelLong  = "(empty if not found)"
	emptySentinelShort = "(empty)"
)

// recentContextTurns is how many trailing transcript turns are embedded in
// the extraction prompt.
const recentContextTurns = 3

var errNoSlotLines = errors.New("conversation: response contained no slot lines")

// SlotExtractor pulls structured appointment fields out of free-text
// utterances. It asks the completion provider for Key: value lines and falls
// back to keyword heuristics when the provider fails or yields nothing.
type SlotExtractor struct {
	client  LLMClient
	model   string
	logger  *logging.Logger
	metrics *metrics.ConversationMetrics
}

// NewSlotExtractor builds an extractor over the given completion client.
func NewSlotExtractor(client LLMClient, model string, m *metrics.ConversationMetrics, logger *logging.Logger) *SlotExtractor {
	if client == nil {
		panic("conversation: extractor requires a completion client")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SlotExtractor{client: client, model: model, logger: logger, metrics: m}
}

// Extract returns the partial SlotSet discovered in the utterance. An empty
// result is a valid, non-error outcome. The current SlotSet is consulted only
// by the heuristic name rule, which never overwrites an existing name.
func (e *SlotExtractor) Extract(ctx context.Context, utterance string, recentContext []ChatMessage, current SlotSet) SlotSet {
	prompt := buildExtractionPrompt(utterance, recentContext)
	resp, err := e.client.Complete(ctx, LLMRequest{
		Model: e.model,
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: extractionSystemPrompt},
			{Role: ChatRoleUser, Content: prompt},
		},
	})
	if err == nil {
		if parsed, perr := parseSlotLines(resp.Text); perr == nil {
			e.metrics.ObserveExtraction("llm")
			return parsed
		}
	} else {
		e.logger.Warn("slot extraction call failed, using heuristics", "error", err.Error())
	}

	e.metrics.ObserveExtraction("heuristic")
	return heuristicExtract(utterance, current)
}

// ExtractFromSummary applies the line parser to the assistant's own summary
// reply. There is no heuristic fallback here; a failed pass yields nothing.
func (e *SlotExtractor) ExtractFromSummary(ctx context.Context, summary string) SlotSet {
	resp, err := e.client.Complete(ctx, LLMRequest{
		Model: e.model,
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: summaryExtractionSystemPrompt},
			{Role: ChatRoleUser, Content: buildSummaryExtractionPrompt(summary)},
		},
	})
	if err != nil {
		e.logger.Warn("summary extraction call failed", "error", err.Error())
		return SlotSet{}
	}
	parsed, perr := parseSlotLines(resp.Text)
	if perr != nil {
		return SlotSet{}
	}
	return parsed
}

// parseSlotLines reads Key: value lines from a model response. A line counts
// only if its key matches the schema case-insensitively and its value is
// non-empty and not a sentinel. Returns errNoSlotLines when nothing matched.
func parseSlotLines(text string) (SlotSet, error) {
	var parsed SlotSet
	found := false
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		key = strings.TrimSpace(strings.TrimLeft(key, "-*• \t"))
		value = strings.TrimSpace(value)
		if value == "" || value == emptySentinelLong || value == emptySentinelShort {
			continue
		}
		if parsed.set(key, value) {
			found = true
		}
	}
	if !found {
		return SlotSet{}, errNoSlotLines
	}
	return parsed, nil
}

// heuristicExtract classifies a single utterance by a fixed priority order:
// email, mobile, department, doctor, time, date, name. The first matching
// rule wins and classification stops there.
func heuristicExtract(utterance string, current SlotSet) SlotSet {
	var out SlotSet
	trimmed := strings.TrimSpace(utterance)
	lowered := strings.ToLower(trimmed)

	switch {
	case strings.Contains(trimmed, "@") && strings.Contains(trimmed, "."):
		out.Email = trimmed
	case isAllDigits(lowered) && len(lowered) >= 10:
		out.Mobile = trimmed
	case strings.Contains(lowered, "department") ||
		strings.Contains(lowered, "cardiology") ||
		strings.Contains(lowered, "orthopedics"):
		out.Department = trimmed
	case strings.Contains(lowered, "dr") || strings.Contains(lowered, "doctor"):
		out.Doctor = trimmed
	case containsAny(lowered, "am", "pm", ":", "morning", "evening"):
		out.Time = trimmed
	case containsDigit(lowered) && strings.Contains(lowered, "/"):
		out.Date = trimmed
	case !containsDigit(lowered) && len(strings.Fields(trimmed)) >= 2:
		// First match wins for the name slot only: never replace one already
		// collected with a guess.
		if current.Name == "" {
			out.Name = trimmed
		}
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func containsDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
