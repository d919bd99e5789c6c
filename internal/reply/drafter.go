// Package reply drafts responses to analysed legal emails, citing the
// provisions of the supplied contract text.
package reply

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hal9000y/legalmail-mcp/internal/analysis"
)

// DefaultSignature signs every reply unless another one is configured.
const DefaultSignature = "Legal Team"

// topicKeywords decide which clauses are relevant to a topic. Matching is a
// case-insensitive substring test, so stems such as "terminat" are allowed.
var topicKeywords = map[analysis.Topic][]string{
	analysis.TopicTerminationForCause:       {"terminat", "for cause", "material breach", "breach", "notice"},
	analysis.TopicTerminationForConvenience: {"terminat", "convenience", "without cause", "notice"},
	analysis.TopicNoticePeriod:              {"notice", "notices"},
	analysis.TopicPaymentDispute:            {"payment", "invoice", "fees", "interest", "overdue"},
	analysis.TopicConfidentiality:           {"confidential", "disclos"},
	analysis.TopicLiabilityIndemnity:        {"liabilit", "indemn", "damages"},
	analysis.TopicIntellectualProperty:      {"intellectual property", "licen", "copyright", "ownership"},
	analysis.TopicDisputeResolution:         {"dispute", "arbitrat", "governing law", "jurisdiction", "court"},
	analysis.TopicRenewal:                   {"renew", "term of", "expir", "extension"},
}

var stopwords = map[string]struct{}{
	"whether": {}, "which": {}, "what": {}, "would": {}, "could": {}, "should": {}, "there": {},
	"their": {}, "these": {}, "those": {}, "this": {}, "that": {}, "with": {}, "from": {}, "have": {},
	"shall": {}, "under": {}, "upon": {}, "into": {}, "other": {}, "either": {}, "please": {},
	"agreement": {}, "contract": {}, "clause": {}, "party": {}, "parties": {}, "section": {},
}

// Drafter builds reply emails. It is stateless apart from its signature and
// is safe for concurrent use.
type Drafter struct {
	signature string
}

// New creates a Drafter signing with signature, or DefaultSignature when empty.
func New(signature string) *Drafter {
	signature = strings.TrimSpace(signature)
	if signature == "" {
		signature = DefaultSignature
	}
	return &Drafter{signature: signature}
}

type answer struct {
	question string
	clause   *Clause
	para     *Paragraph
}

// Draft renders the reply to emailText. It never fails: when the contract
// yields nothing relevant the reply falls back to an acknowledgement.
func (d *Drafter) Draft(emailText string, a analysis.Analysis, contractText string) string {
	clauses := ParseContract(contractText)

	answers := make([]answer, 0, len(a.Questions))
	cited := make(map[string]bool)
	for _, q := range a.Questions {
		ans := answer{question: q}
		if ci, pi := bestParagraph(q, clauses); ci >= 0 {
			ans.clause = &clauses[ci]
			ans.para = &clauses[ci].Paragraphs[pi]
			cited[clauses[ci].Ref()] = true
		}
		answers = append(answers, ans)
	}

	relevant := make([]Clause, 0, len(clauses))
	for _, c := range clauses {
		if cited[c.Ref()] || matchesTopic(c, a.PrimaryTopic) {
			relevant = append(relevant, c)
		}
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n\n", subjectLine(emailText, a.PrimaryTopic))
	fmt.Fprintf(&b, "Dear %s,\n\n", greetingName(emailText))

	b.WriteString(openingParagraph(a))
	b.WriteString("\n\n")

	if a.RequestedDueDate != nil {
		fmt.Fprintf(&b, "We note that you have requested our advice by %s, and we set out our position below.\n\n", *a.RequestedDueDate)
	}

	if len(answers) > 0 {
		b.WriteString("Our responses to your questions are as follows:\n\n")
		for i, ans := range answers {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ans.question)
			fmt.Fprintf(&b, "   %s\n\n", answerText(ans))
		}
	}

	if len(relevant) > 0 {
		b.WriteString("For ease of reference, we set out below the provisions of the Agreement we consider relevant:\n\n")
		for _, c := range relevant {
			writeClause(&b, c)
		}
	} else {
		b.WriteString("We have reviewed the contract text provided but did not identify a clause that directly " +
			"addresses this matter. We will consider the position further and revert to you with our detailed advice.\n\n")
	}

	b.WriteString("Please do not hesitate to contact us should you require any further clarification.\n\n")
	b.WriteString("Regards,\n")
	b.WriteString(d.signature)
	b.WriteString("\n")

	return b.String()
}

func subjectLine(emailText string, topic analysis.Topic) string {
	subject := analysis.Subject(emailText)
	if subject == "" {
		if topic == analysis.TopicGeneral || topic == "" {
			return "Re: Your email"
		}
		return "Re: Your query regarding " + topic.Label()
	}
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

func greetingName(emailText string) string {
	if name := analysis.SenderName(emailText); name != "" {
		return name
	}
	return "Sir or Madam"
}

func openingParagraph(a analysis.Analysis) string {
	var b strings.Builder
	b.WriteString("Thank you for your email regarding ")

	ref := a.AgreementReference
	if ref.Type == nil {
		b.WriteString("the Agreement")
	} else {
		b.WriteString("the " + *ref.Type)
		if ref.Date != nil {
			b.WriteString(" dated " + *ref.Date)
		}
	}

	p := a.Parties
	if p.Client != nil && p.Counterparty != nil {
		fmt.Fprintf(&b, " between %s and %s", *p.Client, *p.Counterparty)
	}
	if ref.Type != nil {
		b.WriteString(` (the "Agreement")`)
	}
	b.WriteString(".")

	if a.PrimaryTopic != analysis.TopicGeneral && a.PrimaryTopic != "" {
		fmt.Fprintf(&b, " We understand that your query concerns %s.", a.PrimaryTopic.Label())
	}

	return b.String()
}

func answerText(ans answer) string {
	if ans.para == nil {
		return "The contract text provided does not expressly address this point. " +
			"We will review it further and revert to you shortly."
	}

	ref := ans.clause.Ref()
	if ans.para.Number != "" {
		ref = ans.clause.Kind + " " + ans.para.Number
	}

	text := fmt.Sprintf("Pursuant to %s of the Agreement, \"%s\"", ref, ans.para.Text)
	if counts := DayCounts(ans.para.Text); len(counts) > 0 {
		text += fmt.Sprintf(" Accordingly, the applicable period is %s.", counts[0])
	}
	return text
}

func writeClause(b *strings.Builder, c Clause) {
	b.WriteString(c.Ref())
	if c.Title != "" {
		fmt.Fprintf(b, " (%s)", c.Title)
	}
	b.WriteString("\n")
	for _, p := range c.Paragraphs {
		if p.Number != "" {
			fmt.Fprintf(b, "- %s: %s\n", p.Number, p.Text)
		} else {
			fmt.Fprintf(b, "- %s\n", p.Text)
		}
	}
	b.WriteString("\n")
}

func matchesTopic(c Clause, topic analysis.Topic) bool {
	text := strings.ToLower(c.Text())
	for _, kw := range topicKeywords[topic] {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// bestParagraph returns the clause and paragraph indexes sharing the most
// word stems with question, or -1 when no paragraph reaches the threshold.
// Ties go to the earlier paragraph.
func bestParagraph(question string, clauses []Clause) (int, int) {
	qStems := stems(question)
	threshold := min(2, len(qStems))
	if threshold == 0 {
		return -1, -1
	}

	bestC, bestP, bestScore := -1, -1, threshold-1
	for ci, c := range clauses {
		for pi, p := range c.Paragraphs {
			score := 0
			pStems := stems(c.Title + " " + p.Text)
			for s := range qStems {
				if _, ok := pStems[s]; ok {
					score++
				}
			}
			if score > bestScore {
				bestC, bestP, bestScore = ci, pi, score
			}
		}
	}

	return bestC, bestP
}

// stems reduces text to the first six letters of each significant word.
func stems(text string) map[string]struct{} {
	out := make(map[string]struct{})
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		if len(w) > 6 {
			w = w[:6]
		}
		out[w] = struct{}{}
	}
	return out
}
