package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/legalmail-mcp/internal/reply"
)

// ReadContractAttachmentsRequest specifies attachments to read.
type ReadContractAttachmentsRequest struct {
	MessageID     string   `json:"message_id" jsonschema:"message ID containing attachments"`
	AttachmentIDs []string `json:"attachment_ids" jsonschema:"array of attachment IDs (Part IDs)"`
}

// ReadContractAttachmentsResponse contains extracted attachment content.
type ReadContractAttachmentsResponse struct {
	Attachments []ContractAttachment `json:"attachments" jsonschema:"array of extracted attachments"`
}

// ContractAttachment contains extracted text from an attachment and the
// clauses found in it.
type ContractAttachment struct {
	ID       string   `json:"id" jsonschema:"attachment ID (Part ID)"`
	Filename string   `json:"filename" jsonschema:"original filename"`
	MimeType string   `json:"mime_type" jsonschema:"MIME type"`
	Content  string   `json:"content,omitempty" jsonschema:"extracted text content, usable as contract_text"`
	Clauses  []string `json:"clauses,omitempty" jsonschema:"clause headings found in the content"`
	Error    string   `json:"error,omitempty" jsonschema:"error if extraction failed"`
}

type readContractAttachmentsSvc interface {
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
	GetAttachment(ctx context.Context, msgID, attachmentID string) (*gmail.MessagePartBody, error)
}

// NewReadContractAttachments creates a new ReadContractAttachments tool.
func NewReadContractAttachments(svc readContractAttachmentsSvc, conv textConverter) *ReadContractAttachments {
	return &ReadContractAttachments{
		svc:  svc,
		conv: conv,
	}
}

// ReadContractAttachments extracts contract text from email attachments.
type ReadContractAttachments struct {
	svc  readContractAttachmentsSvc
	conv textConverter
}

// ReadContractAttachments extracts text from the specified attachments.
func (t *ReadContractAttachments) ReadContractAttachments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReadContractAttachmentsRequest,
) (*mcp.CallToolResult, ReadContractAttachmentsResponse, error) {
	msg, err := t.svc.GetMessage(ctx, input.MessageID)
	if err != nil {
		return nil, ReadContractAttachmentsResponse{}, fmt.Errorf("get message failed: %w", err)
	}

	attachments := make([]ContractAttachment, 0, len(input.AttachmentIDs))

	for _, partID := range input.AttachmentIDs {
		part := findPart(msg.Payload, partID)
		if part == nil || part.Body == nil || part.Body.AttachmentId == "" {
			return nil, ReadContractAttachmentsResponse{}, fmt.Errorf("no attachmentID found for %s/%s", input.MessageID, partID)
		}

		att := ContractAttachment{
			ID:       partID,
			Filename: part.Filename,
			MimeType: part.MimeType,
		}

		text, err := attachmentText(ctx, t.svc, t.conv, input.MessageID, part)
		if err != nil {
			att.Error = err.Error()
		} else {
			att.Content = text
			att.Clauses = clauseHeadings(text)
		}

		attachments = append(attachments, att)
	}

	return nil, ReadContractAttachmentsResponse{
		Attachments: attachments,
	}, nil
}

func clauseHeadings(text string) []string {
	clauses := reply.ParseContract(text)
	if len(clauses) == 0 {
		return nil
	}

	headings := make([]string, 0, len(clauses))
	for _, c := range clauses {
		h := c.Ref()
		if c.Title != "" {
			h += " (" + c.Title + ")"
		}
		headings = append(headings, h)
	}
	return headings
}
