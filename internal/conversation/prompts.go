package conversation

import (
	"fmt"
	"strings"
)

// SystemPreamble seeds every new transcript. It drives the step-by-step slot
// collection and the summary format the commit workflow re-extracts from.
const SystemPreamble = `
You are AppointmentBot, an automated service to issue hospital appointments.
Ask the patient step by step for:
- Full Name
- Department
- Preferred Doctor
- Date
- Time
- Email
- Mobile number

IMPORTANT: When collecting information, be explicit about what you're asking for.
For example:
- "What is your full name?"
- "Which department do you need? (e.g., Cardiology, Neurology, Orthopedics)"
- "Which doctor would you prefer?"
- "What date would you like for your appointment?"
- "What time works best for you?"
- "What is your email address?"
- "What is your mobile number?"

Once all details are collected, provide a clear summary like:
"Thank you for providing all the necessary details. Here is the summary of your appointment:
- Full Name: [name]
- Department: [department]
- Preferred Doctor: [doctor]
- Date: [date]
- Time: [time]
- Email: [email]
- Mobile number: [mobile]

Do you want to confirm this appointment?"

If the patient says "confirm", the system will send them an email and save the data.
Respond conversationally, one question at a time.
`

// ResetAcknowledgement is returned for reset turns without any completion call.
const ResetAcknowledgement = "Chat cleared. How can I help you?"

const extractionSystemPrompt = "You are a data extraction assistant. Extract appointment details from conversations."

const summaryExtractionSystemPrompt = "You are a data extraction assistant. Extract appointment details from summaries."

// buildExtractionPrompt embeds the utterance plus the most recent transcript
// turns and asks for one Key: value line per schema slot.
func buildExtractionPrompt(utterance string, recentContext []ChatMessage) string {
	var ctxText strings.Builder
	for _, m := range recentContext {
		fmt.Fprintf(&ctxText, "%s: %s\n", m.Role, m.Content)
	}

	return fmt.Sprintf(`From the following conversation, extract appointment details if any are mentioned:

User input: %q

Previous conversation context:
%s
Extract and return ONLY the following details if found (return empty string if not found):
- Name: [full name]
- Department: [department name]
- Doctor: [doctor name]
- Date: [appointment date]
- Time: [appointment time]
- Email: [email address]
- Mobile: [mobile number]

Format as: Name: [value] or Name: (empty if not found)`, utterance, ctxText.String())
}

// buildSummaryExtractionPrompt asks for the same line format over the
// assistant's own summary reply.
func buildSummaryExtractionPrompt(summary string) string {
	return fmt.Sprintf(`Extract appointment details from this summary:

%s

Extract and return ONLY the following details:
- Name: [full name]
- Department: [department name]
- Doctor: [doctor name]
- Date: [appointment date]
- Time: [appointment time]
- Email: [email address]
- Mobile: [mobile number]

Format as: Name: [value]`, summary)
}
