package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/legalmail-mcp/internal/agent"
	"github.com/hal9000y/legalmail-mcp/internal/format"
)

// TriageMessagesRequest selects messages to analyze and the contract to cite.
type TriageMessagesRequest struct {
	MessageIDs              []string `json:"message_ids" jsonschema:"array of message IDs to triage"`
	ContractText            *string  `json:"contract_text,omitempty" jsonschema:"contract text used to draft replies to every message"`
	ContractFromAttachments bool     `json:"contract_from_attachments,omitempty" jsonschema:"when contract_text is absent use the first readable PDF, DOCX or text attachment of each message as its contract"`
}

// TriageMessagesResponse contains one triaged entry per requested message.
type TriageMessagesResponse struct {
	Messages []TriagedMessage `json:"messages" jsonschema:"array of triaged messages"`
}

// TriagedMessage is a message body with its analysis and optional draft.
type TriagedMessage struct {
	Summary        MessageSummary `json:"summary" jsonschema:"summary"`
	BodyText       string         `json:"body_text,omitempty" jsonschema:"text body, HTML bodies converted"`
	Attachments    []Attachment   `json:"attachments,omitempty" jsonschema:"list of attachments"`
	ContractSource string         `json:"contract_source,omitempty" jsonschema:"where the cited contract came from: request or attachment:<filename>"`
	Result         agent.Result   `json:"result" jsonschema:"analysis and draft reply"`
}

type triageMessagesSvc interface {
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
	GetAttachment(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error)
}

type htmlConverter interface {
	HTML2Text(raw []byte) (string, error)
}

type textConverter interface {
	Text(mimeType, fileName string, raw []byte) (string, error)
}

type processor interface {
	ProcessEmail(emailText string, contractText *string) agent.Result
}

// NewTriageMessages creates a new TriageMessages tool.
func NewTriageMessages(svc triageMessagesSvc, conv converter, p processor) *TriageMessages {
	return &TriageMessages{
		svc:  svc,
		conv: conv,
		p:    p,
	}
}

// TriageMessages runs the email pipeline over Gmail messages.
type TriageMessages struct {
	svc  triageMessagesSvc
	conv converter
	p    processor
}

// TriageMessages analyzes the requested messages and drafts replies when a
// contract is available.
func (t *TriageMessages) TriageMessages(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TriageMessagesRequest,
) (*mcp.CallToolResult, TriageMessagesResponse, error) {
	messages := make([]TriagedMessage, 0, len(input.MessageIDs))

	for _, msgID := range input.MessageIDs {
		msg, err := t.svc.GetMessage(ctx, msgID)
		if err != nil {
			return nil, TriageMessagesResponse{}, fmt.Errorf("get message %s failed: %w", msgID, err)
		}

		triaged := TriagedMessage{
			Summary: extractMessageSummary(msg),
		}

		contract := input.ContractText
		if contract != nil {
			triaged.ContractSource = "request"
		}

		if msg.Payload != nil {
			triaged.Attachments = extractAttachments(msg.Payload)

			textBody, htmlBody := extractMessageBodies(msg.Payload)
			triaged.BodyText, err = t.bodyText(textBody, htmlBody)
			if err != nil {
				return nil, TriageMessagesResponse{}, fmt.Errorf("bodyText failed: %w", err)
			}

			if contract == nil && input.ContractFromAttachments {
				if text, name := t.attachedContract(ctx, msg); text != "" {
					contract = &text
					triaged.ContractSource = "attachment:" + name
				}
			}
		}

		if triaged.BodyText == "" {
			triaged.BodyText = triaged.Summary.Snippet
		}

		triaged.Result = t.p.ProcessEmail(emailText(triaged.Summary.Subject, triaged.BodyText), contract)
		messages = append(messages, triaged)
	}

	return nil, TriageMessagesResponse{
		Messages: messages,
	}, nil
}

func (t *TriageMessages) bodyText(textBody, htmlBody string) (string, error) {
	if textBody != "" {
		return textBody, nil
	}
	if htmlBody == "" {
		return "", nil
	}

	converted, err := t.conv.HTML2Text([]byte(htmlBody))
	if err != nil {
		return "", fmt.Errorf("conv.HTML2Text failed: %w", err)
	}

	return converted, nil
}

// attachedContract returns the text and filename of the first attachment
// that converts to non-empty text. Unreadable attachments are skipped.
func (t *TriageMessages) attachedContract(ctx context.Context, msg *gmail.Message) (string, string) {
	for _, att := range extractAttachments(msg.Payload) {
		if !readable(att) {
			continue
		}

		part := findPart(msg.Payload, att.ID)
		text, err := attachmentText(ctx, t.svc, t.conv, msg.Id, part)
		if err != nil || text == "" {
			continue
		}

		return text, att.Filename
	}

	return "", ""
}

func readable(att Attachment) bool {
	switch format.DetectType(att.MimeType, att.Filename) {
	case format.MimeText, format.MimeHTML, format.MimePDF, format.MimeDOCX:
		return true
	}
	return false
}

type attachmentGetter interface {
	GetAttachment(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error)
}

func attachmentText(ctx context.Context, svc attachmentGetter, conv textConverter, msgID string, part *gmail.MessagePart) (string, error) {
	if part == nil || part.Body == nil || part.Body.AttachmentId == "" {
		return "", fmt.Errorf("no attachment in message %s", msgID)
	}

	body, err := svc.GetAttachment(ctx, msgID, part.Body.AttachmentId)
	if err != nil {
		return "", fmt.Errorf("get attachment %s failed: %w", part.Body.AttachmentId, err)
	}

	raw, err := decodeBase64URL(body.Data)
	if err != nil {
		return "", fmt.Errorf("failed to decode attachment: %w", err)
	}

	return conv.Text(part.MimeType, part.Filename, raw)
}
