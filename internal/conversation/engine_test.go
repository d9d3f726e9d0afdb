package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineHarness struct {
	engine   *Engine
	chat     *scriptedLLM
	sender   *captureSender
	saver    *fakeSaver
	exporter *fakeExporter
}

func newEngineHarness(t *testing.T, extractorLLM *scriptedLLM, chat *scriptedLLM, cfg EngineConfig) *engineHarness {
	t.Helper()
	if cfg.ChatModel == "" {
		cfg.ChatModel = "llama-3.3-70b-versatile"
	}
	extractor := NewSlotExtractor(extractorLLM, "test-model", nil, nil)
	sender := &captureSender{}
	saver := &fakeSaver{}
	exporter := &fakeExporter{}
	commit := NewCommitWorkflow(extractor, sender, saver, exporter, nil, nil)
	engine := NewEngine(NewSessionStore(), extractor, chat, commit, cfg, nil, nil)
	return &engineHarness{
		engine:   engine,
		chat:     chat,
		sender:   sender,
		saver:    saver,
		exporter: exporter,
	}
}

func TestEngineResetTurn(t *testing.T) {
	chat := respondWith("should not be called")
	h := newEngineHarness(t, failWith(errors.New("down")), chat, EngineConfig{})

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Reset: true})

	assert.Equal(t, ResetAcknowledgement, got.Reply)
	assert.Empty(t, chat.calls)
	require.Len(t, got.Transcript, 1)
	assert.Equal(t, ChatRoleSystem, got.Transcript[0].Role)
	assert.Empty(t, got.Slots)
}

func TestEngineResetDropsAccumulatedState(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Noted."), EngineConfig{})

	h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "a@b.com"})
	sess := h.engine.Store().GetOrCreate("s1")
	require.Equal(t, "a@b.com", sess.Slots.Email)

	h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Reset: true})

	sess = h.engine.Store().GetOrCreate("s1")
	assert.Empty(t, sess.Slots.Email)
	assert.Len(t, sess.Transcript, 1)
}

func TestEngineTurnWithoutConfirmation(t *testing.T) {
	chat := respondWith("Nice to meet you, John. Which department?")
	h := newEngineHarness(t, failWith(errors.New("down")), chat, EngineConfig{})

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "John Smith"})

	assert.Equal(t, "Nice to meet you, John. Which department?", got.Reply)
	assert.Equal(t, "John Smith", got.Slots[SlotName])
	assert.Empty(t, h.sender.sent)
	assert.Empty(t, h.saver.recs)

	// system preamble, user turn, assistant turn
	require.Len(t, got.Transcript, 3)
	assert.Equal(t, ChatRoleUser, got.Transcript[1].Role)
	assert.Equal(t, "John Smith", got.Transcript[1].Content)
	assert.Equal(t, ChatRoleAssistant, got.Transcript[2].Role)
}

func TestEngineTranscriptAccumulatesAcrossTurns(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Noted."), EngineConfig{})

	h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "hello there"})
	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "cardiology"})

	assert.Len(t, got.Transcript, 5)
	assert.Equal(t, "cardiology", got.Slots[SlotDepartment])
}

func TestEngineConfirmationRunsCommit(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Your appointment is confirmed."), EngineConfig{})
	h.engine.Store().GetOrCreate("s1").Slots = fullSlots()

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "yes, book it"})

	assert.Equal(t, "Your appointment is confirmed."+noteEmailSent+noteSavedBoth, got.Reply)
	assert.Len(t, h.sender.sent, 1)
	assert.Len(t, h.saver.recs, 1)
	assert.Len(t, h.exporter.recs, 1)
}

func TestEngineConfirmationWithoutEmail(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Confirmed."), EngineConfig{})
	slots := fullSlots()
	slots.Email = ""
	h.engine.Store().GetOrCreate("s1").Slots = slots

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "confirm please"})

	assert.Equal(t, "Confirmed."+noteNeedEmail, got.Reply)
	assert.Empty(t, h.sender.sent)
	assert.Empty(t, h.saver.recs)
}

func TestEngineDegradesReplyOnCompletionFailure(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), failWith(errors.New("503")), EngineConfig{})

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "hello there"})

	assert.Equal(t, GroqFallbackMessage, got.Reply)
	// The degraded reply still lands in the transcript.
	assert.Equal(t, GroqFallbackMessage, got.Transcript[len(got.Transcript)-1].Content)
}

func TestEngineGeminiFallbackFollowsModel(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), failWith(errors.New("503")),
		EngineConfig{ChatModel: "gemini-2.5-flash"})

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "hello there"})

	assert.Equal(t, GeminiFallbackMessage, got.Reply)
}

func TestEngineLooseConfirmationMatchesSubstrings(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Working on it."), EngineConfig{})
	slots := fullSlots()
	slots.Email = ""
	h.engine.Store().GetOrCreate("s1").Slots = slots

	// "booking" contains "ok", which the loose scan treats as a confirmation.
	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "still thinking about the booking"})

	assert.Contains(t, got.Reply, noteNeedEmail)
}

func TestEngineStrictConfirmationRequiresWholeWords(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Working on it."),
		EngineConfig{StrictConfirmation: true})
	slots := fullSlots()
	slots.Email = ""
	h.engine.Store().GetOrCreate("s1").Slots = slots

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "still thinking about the booking"})
	assert.Equal(t, "Working on it.", got.Reply)

	got = h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "ok confirm"})
	assert.Contains(t, got.Reply, noteNeedEmail)
}

func TestEngineSessionsAreIsolated(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Noted."), EngineConfig{})

	h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "alice", Utterance: "my email is alice@example.com"})
	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "bob", Utterance: "hello there"})

	assert.Empty(t, got.Slots[SlotEmail])
	assert.Len(t, got.Transcript, 3)
}

func TestEngineResultTranscriptIsACopy(t *testing.T) {
	h := newEngineHarness(t, failWith(errors.New("down")), respondWith("Noted."), EngineConfig{})

	got := h.engine.ProcessTurn(context.Background(), TurnRequest{SessionKey: "s1", Utterance: "hello there"})
	got.Transcript[0].Content = "tampered"

	sess := h.engine.Store().GetOrCreate("s1")
	assert.NotEqual(t, "tampered", sess.Transcript[0].Content)
}
