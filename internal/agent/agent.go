// Package agent wires the analyzer and the reply drafter into a single
// email processing step.
package agent

import (
	"sync"

	"go.uber.org/zap"

	"github.com/hal9000y/legalmail-mcp/internal/analysis"
	"github.com/hal9000y/legalmail-mcp/internal/reply"
)

// Result is the outcome of processing one email. DraftReply is nil when no
// contract text was supplied.
type Result struct {
	Analysis   analysis.Analysis `json:"analysis"`
	DraftReply *string           `json:"draft_reply"`
}

// Agent runs analysis and, when contract text is available, drafting.
type Agent struct {
	analyzer *analysis.Analyzer
	drafter  *reply.Drafter
	logger   *zap.Logger
}

// New creates an Agent. A nil logger disables logging.
func New(analyzer *analysis.Analyzer, drafter *reply.Drafter, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		analyzer: analyzer,
		drafter:  drafter,
		logger:   logger,
	}
}

var defaultAgent = sync.OnceValue(func() *Agent {
	return New(analysis.Default(), reply.New(""), nil)
})

// Default returns the Agent built from the default rules and signature.
func Default() *Agent {
	return defaultAgent()
}

// Analyze extracts an Analysis from emailText.
func (a *Agent) Analyze(emailText string) analysis.Analysis {
	return a.analyzer.Analyze(emailText)
}

// Draft renders a reply to emailText citing contractText.
func (a *Agent) Draft(emailText string, an analysis.Analysis, contractText string) string {
	return a.drafter.Draft(emailText, an, contractText)
}

// ProcessEmail always analyzes emailText and drafts a reply only when
// contractText is non-nil. An empty contract still produces a draft.
func (a *Agent) ProcessEmail(emailText string, contractText *string) Result {
	res := Result{Analysis: a.Analyze(emailText)}
	if contractText != nil {
		draft := a.Draft(emailText, res.Analysis, *contractText)
		res.DraftReply = &draft
	}

	a.logger.Debug("email processed",
		zap.String("intent", string(res.Analysis.Intent)),
		zap.String("topic", string(res.Analysis.PrimaryTopic)),
		zap.String("urgency", string(res.Analysis.UrgencyLevel)),
		zap.Int("questions", len(res.Analysis.Questions)),
		zap.Bool("drafted", res.DraftReply != nil),
	)

	return res
}

// AnalyzeEmail analyzes text with the default rules.
func AnalyzeEmail(text string) analysis.Analysis {
	return Default().Analyze(text)
}

// DraftReply drafts a reply with the default signature.
func DraftReply(emailText string, an analysis.Analysis, contractText string) string {
	return Default().Draft(emailText, an, contractText)
}
