package tool_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/legalmail-mcp/internal/agent"
	"github.com/hal9000y/legalmail-mcp/internal/analysis"
	"github.com/hal9000y/legalmail-mcp/internal/format"
	"github.com/hal9000y/legalmail-mcp/internal/tool"
)

const sampleEmail = `Subject: Termination of Services under MSA
Dear Counsel,
We refer to the Master Services Agreement dated 10 March 2023 between Acme
Technologies Pvt. Ltd. ("Acme") and Brightwave Solutions LLP ("Brightwave").
Due to ongoing performance issues and repeated delays in delivery, we are considering
termination of the Agreement for cause with effect from 1 December 2025.
Please confirm:
1. Whether we are contractually entitled to terminate for cause on the basis of repeated
delays in delivery;
2. The minimum notice period required.
We would appreciate your advice by 18 November 2025.
Regards,
Priya Sharma
Legal Manager, Acme Technologies Pvt. Ltd.`

const sampleContract = `Clause 9 – Termination for Cause
9.1 Either Party may terminate this Agreement for cause upon thirty (30) days' written
notice if the other Party commits a material breach.
9.2 Repeated failure to meet delivery timelines constitutes a material breach.
Clause 10 – Notice
10.1 All notices shall be given in writing and shall be effective upon receipt.
10.2 For termination, minimum thirty (30) days' prior written notice is required.`

func strp(s string) *string {
	return &s
}

func TestAnalyzeEmailTool(t *testing.T) {
	cases := []struct {
		name  string
		email string
	}{
		{name: "sample", email: sampleEmail},
		{name: "empty", email: ""},
		{name: "punctuation", email: "?!?;;((\"\"))..."},
	}

	session := connect(t, tool.NewServer(agent.Default(), nil, format.Converter{}))

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var response analysis.Analysis
			errText := callTool(t, session, "analyze_email", tool.AnalyzeEmailRequest{EmailText: tc.email}, &response)
			require.Empty(t, errText)

			assert.Equal(t, agent.AnalyzeEmail(tc.email), response)
		})
	}
}

func TestDraftReplyTool(t *testing.T) {
	session := connect(t, tool.NewServer(agent.Default(), nil, format.Converter{}))

	t.Run("analysis_computed", func(t *testing.T) {
		var response tool.DraftReplyResponse
		errText := callTool(t, session, "draft_reply", tool.DraftReplyRequest{
			EmailText:    sampleEmail,
			ContractText: sampleContract,
		}, &response)
		require.Empty(t, errText)

		expected := agent.DraftReply(sampleEmail, agent.AnalyzeEmail(sampleEmail), sampleContract)
		assert.Equal(t, expected, response.DraftReply)
		assert.Contains(t, response.DraftReply, "Master Services Agreement")
		assert.Contains(t, response.DraftReply, "10.2")
	})

	t.Run("analysis_supplied", func(t *testing.T) {
		a := agent.AnalyzeEmail(sampleEmail)
		a.AgreementReference = analysis.AgreementReference{Type: strp("Supply Agreement")}
		a.Parties = analysis.Parties{}

		var response tool.DraftReplyResponse
		errText := callTool(t, session, "draft_reply", tool.DraftReplyRequest{
			EmailText:    sampleEmail,
			Analysis:     &a,
			ContractText: "",
		}, &response)
		require.Empty(t, errText)

		assert.Contains(t, response.DraftReply, "regarding the Supply Agreement")
		assert.NotContains(t, response.DraftReply, "Master Services Agreement")
		assert.Contains(t, response.DraftReply, "Regards,\nLegal Team")
	})
}

func TestProcessEmailTool(t *testing.T) {
	cases := []struct {
		name          string
		req           tool.ProcessEmailRequest
		expectedDraft bool
	}{
		{name: "without_contract", req: tool.ProcessEmailRequest{EmailText: sampleEmail}},
		{name: "with_contract", req: tool.ProcessEmailRequest{EmailText: sampleEmail, ContractText: strp(sampleContract)}, expectedDraft: true},
	}

	session := connect(t, tool.NewServer(agent.Default(), nil, format.Converter{}))

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var response agent.Result
			errText := callTool(t, session, "process_email", tc.req, &response)
			require.Empty(t, errText)

			assert.Equal(t, agent.Default().ProcessEmail(tc.req.EmailText, tc.req.ContractText), response)
			if !tc.expectedDraft {
				assert.Nil(t, response.DraftReply)
				return
			}
			require.NotNil(t, response.DraftReply)
			assert.True(t, strings.HasPrefix(*response.DraftReply, "Subject:"))
		})
	}
}

func TestServerTools(t *testing.T) {
	cases := []struct {
		name     string
		server   *mcp.Server
		expected []string
	}{
		{
			name:     "pipeline_only",
			server:   tool.NewServer(agent.Default(), nil, format.Converter{}),
			expected: []string{"analyze_email", "draft_reply", "process_email"},
		},
		{
			name:   "with_gmail",
			server: tool.NewServer(agent.Default(), &gmailSvcMock{}, format.Converter{}),
			expected: []string{
				"analyze_email", "draft_reply", "process_email",
				"read_contract_attachments", "search_inbox", "triage_messages",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := connect(t, tc.server)

			res, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
			require.NoError(t, err)

			names := make([]string, 0, len(res.Tools))
			for _, tl := range res.Tools {
				names = append(names, tl.Name)
			}
			sort.Strings(names)
			sort.Strings(tc.expected)

			assert.Equal(t, tc.expected, names)
		})
	}
}
