package tool

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"

	"google.golang.org/api/gmail/v1"
)

// extractMessageSummary reads the envelope of msg. Header names are matched
// case-insensitively; the first occurrence wins.
func extractMessageSummary(msg *gmail.Message) MessageSummary {
	header := make(map[string]string)
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			name := strings.ToLower(h.Name)
			if _, ok := header[name]; !ok {
				header[name] = h.Value
			}
		}
	}

	summary := MessageSummary{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Snippet:   msg.Snippet,
		Subject:   header["subject"],
		Timestamp: header["date"],
		To:        addressList(header["to"]),
		CC:        addressList(header["cc"]),
	}
	if from := addressList(header["from"]); len(from) > 0 {
		summary.From = from[0]
	}

	return summary
}

// addressList parses an RFC 5322 address list. Values the parser rejects are
// split on commas and kept verbatim so that no recipient is lost.
func addressList(value string) []EmailAddress {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	if parsed, err := mail.ParseAddressList(value); err == nil {
		addrs := make([]EmailAddress, 0, len(parsed))
		for _, a := range parsed {
			addrs = append(addrs, EmailAddress{Name: a.Name, Email: a.Address})
		}
		return addrs
	}

	var addrs []EmailAddress
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			addrs = append(addrs, EmailAddress{Email: part})
		}
	}
	return addrs
}

// emailText rebuilds the raw email the analyzer expects: a subject header
// followed by the body.
func emailText(subject, body string) string {
	if subject == "" {
		return body
	}
	return "Subject: " + subject + "\n" + body
}

// extractMessageBodies returns the first text/plain and text/html bodies
// found in a depth-first walk of the MIME tree.
func extractMessageBodies(payload *gmail.MessagePart) (textBody, htmlBody string) {
	textBody, htmlBody = extractBodyFromPart(payload)

	for _, part := range payload.Parts {
		if part.Filename != "" {
			continue
		}

		partText, partHTML := extractMessageBodies(part)
		if textBody == "" {
			textBody = partText
		}
		if htmlBody == "" {
			htmlBody = partHTML
		}
	}

	return textBody, htmlBody
}

func extractBodyFromPart(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body == nil || part.Body.Data == "" {
		return "", ""
	}

	switch part.MimeType {
	case "text/plain":
		return decodeBase64URLString(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URLString(part.Body.Data)
	default:
		return "", ""
	}
}

// decodeBase64URL decodes Gmail body data, which is base64url with or
// without padding.
func decodeBase64URL(data string) ([]byte, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return nil, fmt.Errorf("base64.DecodeString failed: %w", err)
	}
	return decoded, nil
}

func decodeBase64URLString(data string) string {
	decoded, err := decodeBase64URL(data)
	if err != nil {
		return data
	}
	return string(decoded)
}

// extractAttachments lists every part carrying an attachment, keyed by part
// ID.
func extractAttachments(payload *gmail.MessagePart) []Attachment {
	var attachments []Attachment

	if payload.Body != nil && payload.Body.AttachmentId != "" {
		attachments = append(attachments, Attachment{
			ID:       payload.PartId,
			Filename: payload.Filename,
			MimeType: payload.MimeType,
			Size:     payload.Body.Size,
		})
	}

	for _, part := range payload.Parts {
		attachments = append(attachments, extractAttachments(part)...)
	}

	return attachments
}

func findPart(payload *gmail.MessagePart, partID string) *gmail.MessagePart {
	if payload == nil {
		return nil
	}
	if payload.Body != nil && payload.PartId == partID {
		return payload
	}

	for _, part := range payload.Parts {
		if found := findPart(part, partID); found != nil {
			return found
		}
	}

	return nil
}
