package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/legalmail-mcp/internal/agent"
	"github.com/hal9000y/legalmail-mcp/internal/analysis"
)

// AnalyzeEmailRequest carries the raw email to analyze.
type AnalyzeEmailRequest struct {
	EmailText string `json:"email_text" jsonschema:"raw email text including the Subject line when available"`
}

// DraftReplyRequest carries the inputs of a reply draft.
type DraftReplyRequest struct {
	EmailText    string             `json:"email_text" jsonschema:"raw email text being replied to"`
	Analysis     *analysis.Analysis `json:"analysis,omitempty" jsonschema:"result of analyze_email, computed from email_text when omitted"`
	ContractText string             `json:"contract_text" jsonschema:"text of the contract to cite, may be empty"`
}

// DraftReplyResponse holds the drafted reply.
type DraftReplyResponse struct {
	DraftReply string `json:"draft_reply" jsonschema:"reply email text"`
}

// ProcessEmailRequest carries an email and optional contract text.
type ProcessEmailRequest struct {
	EmailText    string  `json:"email_text" jsonschema:"raw email text"`
	ContractText *string `json:"contract_text,omitempty" jsonschema:"contract text, a reply is drafted only when present"`
}

type pipeline interface {
	Analyze(emailText string) analysis.Analysis
	Draft(emailText string, a analysis.Analysis, contractText string) string
	ProcessEmail(emailText string, contractText *string) agent.Result
}

// NewPipeline creates the analysis and drafting tools.
func NewPipeline(p pipeline) *Pipeline {
	return &Pipeline{p: p}
}

// Pipeline exposes email analysis and reply drafting as MCP tools.
type Pipeline struct {
	p pipeline
}

// AnalyzeEmail extracts intent, topic, parties, agreement, questions, due
// date and urgency from an email.
func (t *Pipeline) AnalyzeEmail(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeEmailRequest,
) (*mcp.CallToolResult, analysis.Analysis, error) {
	return nil, t.p.Analyze(input.EmailText), nil
}

// DraftReply drafts a reply citing the supplied contract.
func (t *Pipeline) DraftReply(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DraftReplyRequest,
) (*mcp.CallToolResult, DraftReplyResponse, error) {
	var a analysis.Analysis
	if input.Analysis != nil {
		a = *input.Analysis
	} else {
		a = t.p.Analyze(input.EmailText)
	}

	return nil, DraftReplyResponse{
		DraftReply: t.p.Draft(input.EmailText, a, input.ContractText),
	}, nil
}

// ProcessEmail analyzes an email and drafts a reply when contract text is
// given.
func (t *Pipeline) ProcessEmail(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ProcessEmailRequest,
) (*mcp.CallToolResult, agent.Result, error) {
	return nil, t.p.ProcessEmail(input.EmailText, input.ContractText), nil
}
