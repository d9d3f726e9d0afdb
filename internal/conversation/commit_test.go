package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carefront/frontdesk-ai/internal/appointments"
	"github.com/carefront/frontdesk-ai/internal/notify"
)

type captureSender struct {
	sent []notify.EmailMessage
	err  error
}

func (c *captureSender) Send(_ context.Context, msg notify.EmailMessage) error {
	c.sent = append(c.sent, msg)
	return c.err
}

type fakeSaver struct {
	recs   []*appointments.Record
	err    error
	panics bool
}

func (f *fakeSaver) Insert(_ context.Context, rec *appointments.Record) error {
	if f.panics {
		panic("database exploded")
	}
	f.recs = append(f.recs, rec)
	return f.err
}

type fakeExporter struct {
	recs []*appointments.Record
	err  error
}

func (f *fakeExporter) Append(rec *appointments.Record) error {
	f.recs = append(f.recs, rec)
	return f.err
}

func fullSlots() SlotSet {
	return SlotSet{
		Name:       "john smith",
		Department: "cardiology",
		Doctor:     "dr. a. mehta",
		Date:       "2026-09-12",
		Time:       "10 am",
		Email:      "john@example.com",
		Mobile:     "9876543210",
	}
}

func commitSession(slots SlotSet) *Session {
	sess := NewSessionStore().GetOrCreate("commit-test")
	sess.Slots = slots
	return sess
}

// stubExtractor returns an extractor whose completion client always fails,
// so a summary pass contributes nothing.
func stubExtractor() *SlotExtractor {
	return NewSlotExtractor(failWith(errors.New("unavailable")), "test-model", nil, nil)
}

func TestCommitHappyPath(t *testing.T) {
	sender := &captureSender{}
	saver := &fakeSaver{}
	exporter := &fakeExporter{}
	w := NewCommitWorkflow(stubExtractor(), sender, saver, exporter, nil, nil)

	got := w.Run(context.Background(), commitSession(fullSlots()), "All set!")

	assert.Equal(t, "All set!"+noteEmailSent+noteSavedBoth, got)
	require.Len(t, saver.recs, 1)
	require.Len(t, exporter.recs, 1)
	assert.Equal(t, "john smith", saver.recs[0].Name)
	assert.Equal(t, "cardiology", saver.recs[0].Department)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "john@example.com", msg.To)
	assert.Equal(t, "Your Hospital Appointment Confirmation", msg.Subject)
	assert.Contains(t, msg.Body, "Dear john smith,")
	assert.Contains(t, msg.Body, "Doctor: Dr. A. Mehta")
}

func TestCommitWithoutEmailAsksForIt(t *testing.T) {
	sender := &captureSender{}
	saver := &fakeSaver{}
	exporter := &fakeExporter{}
	w := NewCommitWorkflow(stubExtractor(), sender, saver, exporter, nil, nil)

	slots := fullSlots()
	slots.Email = ""
	got := w.Run(context.Background(), commitSession(slots), "Booked.")

	assert.Equal(t, "Booked."+noteNeedEmail, got)
	assert.Empty(t, sender.sent)
	assert.Empty(t, saver.recs)
	assert.Empty(t, exporter.recs)
}

func TestCommitPersistenceOutcomes(t *testing.T) {
	tests := map[string]struct {
		saverErr    error
		exporterErr error
		want        string
	}{
		"database only": {exporterErr: errors.New("sheet locked"), want: noteSavedDBOnly},
		"excel only":    {saverErr: errors.New("db down"), want: noteSavedExcelOnly},
		"both failed":   {saverErr: errors.New("db down"), exporterErr: errors.New("sheet locked"), want: noteSaveFailed},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			w := NewCommitWorkflow(stubExtractor(), &captureSender{},
				&fakeSaver{err: tc.saverErr}, &fakeExporter{err: tc.exporterErr}, nil, nil)

			got := w.Run(context.Background(), commitSession(fullSlots()), "Done.")

			assert.Equal(t, "Done."+noteEmailSent+tc.want, got)
		})
	}
}

func TestCommitEmailFailureStillPersists(t *testing.T) {
	saver := &fakeSaver{}
	exporter := &fakeExporter{}
	w := NewCommitWorkflow(stubExtractor(), &captureSender{err: errors.New("smtp refused")}, saver, exporter, nil, nil)

	got := w.Run(context.Background(), commitSession(fullSlots()), "Done.")

	assert.Equal(t, "Done."+noteEmailFailed+noteSavedBoth, got)
	assert.Len(t, saver.recs, 1)
	assert.Len(t, exporter.recs, 1)
}

func TestCommitNilCollaborators(t *testing.T) {
	w := NewCommitWorkflow(stubExtractor(), nil, nil, nil, nil, nil)

	got := w.Run(context.Background(), commitSession(fullSlots()), "Done.")

	assert.Equal(t, "Done."+noteEmailFailed+noteSaveFailed, got)
}

func TestCommitSummaryPassFillsMissingSlots(t *testing.T) {
	// Only two slots filled, so the workflow re-extracts from the
	// assistant's summary and picks up the email from there.
	extractor := NewSlotExtractor(respondWith(
		"Name: John Smith\nEmail: john@example.com\nDate: 2026-09-12",
	), "test-model", nil, nil)
	sender := &captureSender{}
	w := NewCommitWorkflow(extractor, sender, &fakeSaver{}, &fakeExporter{}, nil, nil)

	sess := commitSession(SlotSet{Name: "John Smith", Department: "cardiology"})
	got := w.Run(context.Background(), sess, "Summary: John Smith, john@example.com, 2026-09-12.")

	assert.Equal(t, "john@example.com", sess.Slots.Email)
	assert.Equal(t, "2026-09-12", sess.Slots.Date)
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, got, noteEmailSent)
}

func TestCommitSkipsSummaryPassWhenCoverageHigh(t *testing.T) {
	inner := respondWith("Email: other@example.com")
	w := NewCommitWorkflow(NewSlotExtractor(inner, "test-model", nil, nil),
		&captureSender{}, &fakeSaver{}, &fakeExporter{}, nil, nil)

	sess := commitSession(fullSlots())
	w.Run(context.Background(), sess, "Done.")

	assert.Empty(t, inner.calls)
	assert.Equal(t, "john@example.com", sess.Slots.Email)
}

func TestCommitRecoversFromPanic(t *testing.T) {
	w := NewCommitWorkflow(stubExtractor(), &captureSender{}, &fakeSaver{panics: true}, &fakeExporter{}, nil, nil)

	got := w.Run(context.Background(), commitSession(fullSlots()), "Done.")

	assert.Contains(t, got, noteSaveFailed)
	assert.True(t, len(got) > len("Done."))
}

func TestConfirmationBodySubstitutesDefaults(t *testing.T) {
	body := confirmationBody(SlotSet{Email: "a@b.com"})

	assert.Contains(t, body, "Dear Patient,")
	assert.Contains(t, body, "Doctor: N/A")
	assert.Contains(t, body, "Department: N/A")
	assert.Contains(t, body, "Email: a@b.com")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Dr. A. K. Smith", titleCase("dr. a. k. smith"))
	assert.Equal(t, "N/A", titleCase("n/a"))
	assert.Equal(t, "Mehta", titleCase("MEHTA"))
	assert.Equal(t, "", titleCase(""))
}
