package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "v1.0.0"

type gmailSvc interface {
	searchInboxSvc
	triageMessagesSvc
	readContractAttachmentsSvc
}

type converter interface {
	htmlConverter
	textConverter
}

// NewServer creates an MCP server with the email pipeline tools. Gmail tools
// are registered only when svc is non-nil.
func NewServer(p pipeline, svc gmailSvc, conv converter) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "legalmail", Version: Version}, nil)

	pl := NewPipeline(p)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_email",
		Description: "Classify a legal email and extract parties, agreement, questions, due date and urgency",
	}, pl.AnalyzeEmail)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_reply",
		Description: "Draft a reply to a legal email citing clauses of the supplied contract",
	}, pl.DraftReply)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "process_email",
		Description: "Analyze a legal email and draft a reply when contract text is supplied",
	}, pl.ProcessEmail)

	if svc == nil {
		return server
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_inbox",
		Description: "Search Gmail using Gmail search syntax and triage each result by intent, topic and urgency",
	}, NewSearchInbox(svc, p).SearchInbox)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "triage_messages",
		Description: "Analyze Gmail messages and draft replies from supplied or attached contract text",
	}, NewTriageMessages(svc, conv, p).TriageMessages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_contract_attachments",
		Description: "Extract text and clause headings from contract attachments (PDF, DOCX, text, HTML)",
	}, NewReadContractAttachments(svc, conv).ReadContractAttachments)

	return server
}
