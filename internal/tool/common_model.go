package tool

import (
	"github.com/hal9000y/legalmail-mcp/internal/analysis"
)

// EmailAddress represents an email address with optional display name.
type EmailAddress struct {
	Name  string `json:"name,omitempty" jsonschema:"the display name"`
	Email string `json:"email" jsonschema:"the email address"`
}

// MessageSummary contains essential message metadata.
type MessageSummary struct {
	ID        string         `json:"id" jsonschema:"message ID"`
	ThreadID  string         `json:"thread_id" jsonschema:"thread ID"`
	Timestamp string         `json:"timestamp" jsonschema:"message timestamp"`
	From      EmailAddress   `json:"from" jsonschema:"sender information"`
	To        []EmailAddress `json:"to,omitempty" jsonschema:"recipients"`
	CC        []EmailAddress `json:"cc,omitempty" jsonschema:"CC recipients"`
	Subject   string         `json:"subject" jsonschema:"email subject"`
	Snippet   string         `json:"snippet" jsonschema:"message preview"`
}

// Triage is the classification of a message derived from its subject and
// snippet.
type Triage struct {
	Intent           analysis.Intent  `json:"intent" jsonschema:"intent of the email"`
	Topic            analysis.Topic   `json:"primary_topic" jsonschema:"legal topic of the email"`
	Urgency          analysis.Urgency `json:"urgency_level" jsonschema:"low, medium or high"`
	RequestedDueDate *string          `json:"requested_due_date" jsonschema:"date the sender expects a reply by"`
}

// Attachment represents email attachment metadata.
type Attachment struct {
	ID       string `json:"id" jsonschema:"attachment ID (Part ID)"`
	Filename string `json:"filename" jsonschema:"original filename"`
	MimeType string `json:"mime_type" jsonschema:"MIME type"`
	Size     int64  `json:"size" jsonschema:"size in bytes"`
}

func triageOf(a analysis.Analysis) Triage {
	return Triage{
		Intent:           a.Intent,
		Topic:            a.PrimaryTopic,
		Urgency:          a.UrgencyLevel,
		RequestedDueDate: a.RequestedDueDate,
	}
}
