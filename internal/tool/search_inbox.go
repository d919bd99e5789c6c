package tool

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"

	"github.com/hal9000y/legalmail-mcp/internal/analysis"
)

// metadataConcurrency bounds the parallel metadata fetches of a search.
const metadataConcurrency = 5

// SearchInboxRequest is a Gmail search with optional urgency ordering.
type SearchInboxRequest struct {
	Query       string `json:"query" jsonschema:"the Gmail search query"`
	MaxResults  int64  `json:"max_results,omitempty" jsonschema:"max results per page, 10 by default and at most 50"`
	PageToken   string `json:"page_token,omitempty" jsonschema:"token for pagination"`
	UrgentFirst bool   `json:"urgent_first,omitempty" jsonschema:"order results by urgency, high first"`
}

// SearchInboxResponse lists matching messages with their triage.
type SearchInboxResponse struct {
	Messages      []InboxMessage `json:"messages" jsonschema:"array of triaged message summaries"`
	NextPageToken string         `json:"next_page_token,omitempty" jsonschema:"token for next page"`
	TotalResults  int            `json:"total_results" jsonschema:"number of messages returned"`
}

// InboxMessage is a message summary annotated with its triage.
type InboxMessage struct {
	Summary MessageSummary `json:"summary" jsonschema:"message metadata"`
	Triage  Triage         `json:"triage" jsonschema:"classification from subject and snippet"`
}

type searchInboxSvc interface {
	ListMessages(ctx context.Context, q, pageToken string, maxResults int64) (*gmail.ListMessagesResponse, error)
	GetMessageMetadata(ctx context.Context, msgID string) (*gmail.Message, error)
}

type analyzer interface {
	Analyze(emailText string) analysis.Analysis
}

// NewSearchInbox creates a new SearchInbox tool.
func NewSearchInbox(svc searchInboxSvc, an analyzer) *SearchInbox {
	return &SearchInbox{
		svc: svc,
		an:  an,
	}
}

// SearchInbox finds messages and triages them from their metadata.
type SearchInbox struct {
	svc searchInboxSvc
	an  analyzer
}

// SearchInbox searches the mailbox and classifies each result.
func (t *SearchInbox) SearchInbox(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInboxRequest,
) (*mcp.CallToolResult, SearchInboxResponse, error) {
	input.MaxResults = normalizeMaxResults(input.MaxResults)

	result, err := t.svc.ListMessages(ctx, input.Query, input.PageToken, input.MaxResults)
	if err != nil {
		return nil, SearchInboxResponse{}, fmt.Errorf("svc.ListMessages failed: %w", err)
	}

	messages := make([]InboxMessage, len(result.Messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataConcurrency)
	for i, m := range result.Messages {
		g.Go(func() error {
			msg, err := t.svc.GetMessageMetadata(gctx, m.Id)
			if err != nil {
				return fmt.Errorf("get message %s failed: %w", m.Id, err)
			}

			summary := extractMessageSummary(msg)
			messages[i] = InboxMessage{
				Summary: summary,
				Triage:  triageOf(t.an.Analyze(emailText(summary.Subject, summary.Snippet))),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, SearchInboxResponse{}, err
	}

	if input.UrgentFirst {
		slices.SortStableFunc(messages, func(a, b InboxMessage) int {
			return cmp.Compare(urgencyRank(b.Triage.Urgency), urgencyRank(a.Triage.Urgency))
		})
	}

	return nil, SearchInboxResponse{
		Messages:      messages,
		NextPageToken: result.NextPageToken,
		TotalResults:  len(messages),
	}, nil
}

func normalizeMaxResults(maxResults int64) int64 {
	if maxResults <= 0 {
		return 10
	}
	if maxResults > 50 {
		return 50
	}
	return maxResults
}

func urgencyRank(u analysis.Urgency) int {
	switch u {
	case analysis.UrgencyHigh:
		return 2
	case analysis.UrgencyMedium:
		return 1
	default:
		return 0
	}
}
