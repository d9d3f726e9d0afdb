package conversation

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carefront/frontdesk-ai/internal/appointments"
	"github.com/carefront/frontdesk-ai/internal/notify"
	"github.com/carefront/frontdesk-ai/internal/observability/metrics"
	"github.com/carefront/frontdesk-ai/pkg/logging"
)

var commitTracer = otel.Tracer("frontdesk.internal.conversation.commit")

// Reply annotations appended by the commit workflow. Clients parse these, so
// the exact wording is part of the contract.
const (
	noteEmailSent      = "\n\n📧 A confirmation email has been sent."
	noteEmailFailed    = "\n\n⚠️ Failed to send confirmation email."
	noteSavedBoth      = "\n\n💾 Appointment saved to Database & Excel."
	noteSavedDBOnly    = "\n\n💾 Saved to Database (Excel failed)."
	noteSavedExcelOnly = "\n\n💾 Saved to Excel (Database failed)."
	noteSaveFailed     = "\n\n⚠️ Failed to save data."
	noteNeedEmail      = "\n\n⚠️ No email address found. Please provide your email."
)

const confirmationSubject = "Your Hospital Appointment Confirmation"

// minSlotsBeforeSummaryPass: below this many filled slots the workflow
// re-extracts from the assistant's own summary before committing.
const minSlotsBeforeSummaryPass = 5

// AppointmentSaver is the durable persistence collaborator.
type AppointmentSaver interface {
	Insert(ctx context.Context, rec *appointments.Record) error
}

// AppointmentExporter is the spreadsheet export collaborator.
type AppointmentExporter interface {
	Append(rec *appointments.Record) error
}

// CommitWorkflow finalizes a confirmed appointment: a secondary extraction
// pass when coverage is low, the confirmation email, and dual persistence.
// Every external call is fault-isolated; the workflow always returns a reply
// string annotated with exactly which sub-operations succeeded.
type CommitWorkflow struct {
	extractor *SlotExtractor
	email     notify.EmailSender
	saver     AppointmentSaver
	exporter  AppointmentExporter
	logger    *logging.Logger
	metrics   *metrics.ConversationMetrics
}

// NewCommitWorkflow wires the commit collaborators. Any of email, saver, and
// exporter may be nil; a missing collaborator simply counts as a failed
// sub-operation.
func NewCommitWorkflow(extractor *SlotExtractor, email notify.EmailSender, saver AppointmentSaver, exporter AppointmentExporter, m *metrics.ConversationMetrics, logger *logging.Logger) *CommitWorkflow {
	if extractor == nil {
		panic("conversation: commit workflow requires an extractor")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CommitWorkflow{
		extractor: extractor,
		email:     email,
		saver:     saver,
		exporter:  exporter,
		logger:    logger,
		metrics:   m,
	}
}

// Run executes the commit for a confirmed turn. It may merge further slots
// into the session and returns the reply with status annotations appended.
func (w *CommitWorkflow) Run(ctx context.Context, sess *Session, reply string) (result string) {
	ctx, span := commitTracer.Start(ctx, "conversation.commit")
	defer span.End()
	span.SetAttributes(attribute.String("frontdesk.session_key", sess.Key))

	// Anything unexpected degrades to the generic save-failure note; a
	// commit must never abort the turn.
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("commit workflow panicked", "session_key", sess.Key, "panic", fmt.Sprint(r))
			result = reply + noteSaveFailed
		}
	}()

	if sess.Slots.FilledCount() < minSlotsBeforeSummaryPass {
		sess.Slots.Merge(w.extractor.ExtractFromSummary(ctx, reply))
	}

	if sess.Slots.Email == "" {
		w.metrics.ObserveCommit("no_email")
		return reply + noteNeedEmail
	}

	if w.sendConfirmation(ctx, sess.Slots) {
		reply += noteEmailSent
	} else {
		reply += noteEmailFailed
	}

	rec := recordFromSlots(sess.Slots)
	dbOK := w.saveDurable(ctx, rec)
	excelOK := w.saveExport(rec)

	switch {
	case dbOK && excelOK:
		w.metrics.ObserveCommit("both")
		reply += noteSavedBoth
	case dbOK:
		w.metrics.ObserveCommit("database_only")
		reply += noteSavedDBOnly
	case excelOK:
		w.metrics.ObserveCommit("excel_only")
		reply += noteSavedExcelOnly
	default:
		w.metrics.ObserveCommit("failed")
		reply += noteSaveFailed
	}
	return reply
}

func (w *CommitWorkflow) sendConfirmation(ctx context.Context, slots SlotSet) bool {
	ctx, span := commitTracer.Start(ctx, "conversation.commit.email")
	defer span.End()

	if w.email == nil {
		w.metrics.ObserveEmail(false)
		return false
	}
	err := w.email.Send(ctx, notify.EmailMessage{
		To:      strings.TrimSpace(slots.Email),
		ToName:  slots.Name,
		Subject: confirmationSubject,
		Body:    confirmationBody(slots),
	})
	if err != nil {
		span.RecordError(err)
		w.logger.Error("confirmation email failed", "error", err.Error())
	}
	w.metrics.ObserveEmail(err == nil)
	return err == nil
}

func (w *CommitWorkflow) saveDurable(ctx context.Context, rec *appointments.Record) bool {
	ctx, span := commitTracer.Start(ctx, "conversation.commit.database")
	defer span.End()

	if w.saver == nil {
		return false
	}
	if err := w.saver.Insert(ctx, rec); err != nil {
		span.RecordError(err)
		w.logger.Error("database save failed", "error", err.Error())
		return false
	}
	return true
}

func (w *CommitWorkflow) saveExport(rec *appointments.Record) bool {
	if w.exporter == nil {
		return false
	}
	if err := w.exporter.Append(rec); err != nil {
		w.logger.Error("excel export failed", "error", err.Error())
		return false
	}
	return true
}

// confirmationBody renders the fixed email template, substituting N/A for
// slots the patient never provided.
func confirmationBody(slots SlotSet) string {
	return fmt.Sprintf(`Dear %s,

Your appointment has been confirmed with the following details:

Doctor: %s
Email: %s
Mobile: %s
Time: %s
Date: %s
Department: %s

Thank you for choosing our hospital.
`,
		slots.GetOr(SlotName, "Patient"),
		titleCase(slots.GetOr(SlotDoctor, "N/A")),
		slots.GetOr(SlotEmail, "N/A"),
		slots.GetOr(SlotMobile, "N/A"),
		slots.GetOr(SlotTime, "N/A"),
		slots.GetOr(SlotDate, "N/A"),
		slots.GetOr(SlotDepartment, "N/A"),
	)
}

func recordFromSlots(slots SlotSet) *appointments.Record {
	return &appointments.Record{
		Name:       slots.Name,
		Department: slots.Department,
		Doctor:     slots.Doctor,
		Date:       slots.Date,
		Time:       slots.Time,
		Email:      slots.Email,
		Mobile:     slots.Mobile,
	}
}

// titleCase uppercases every letter that follows a non-letter, so
// "dr. a. k. smith" renders as "Dr. A. K. Smith" and "n/a" as "N/A".
func titleCase(s string) string {
	runes := []rune(s)
	prevLetter := false
	for i, r := range runes {
		if unicode.IsLetter(r) {
			if prevLetter {
				runes[i] = unicode.ToLower(r)
			} else {
				runes[i] = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
	}
	return string(runes)
}
