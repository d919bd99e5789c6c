package reply

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	clauseHeaderPattern = regexp.MustCompile(`^\s*(?i:(clause|section|article))\s+(\d+)(\s*[–—:-]\s*|\.\s+|\s+|$)(.*)$`)
	paragraphPattern    = regexp.MustCompile(`^\s*(\d+(?:\.\d+)+)\.?\s+(.+)$`)
	dayCountPattern     = regexp.MustCompile(`(?i)\(?\b(\d{1,3})\)?\s*(?:(calendar|business|working)\s+)?days?\b`)
)

// Paragraph is a numbered sub-provision of a clause, e.g. 9.1.
type Paragraph struct {
	Number string
	Text   string
}

// Clause is a numbered provision of a contract with its sub-paragraphs.
type Clause struct {
	Kind       string
	Number     string
	Title      string
	Paragraphs []Paragraph
}

// Ref returns the citation of the clause, e.g. "Clause 9".
func (c Clause) Ref() string {
	return c.Kind + " " + c.Number
}

// Text returns the title and every paragraph joined into one string.
func (c Clause) Text() string {
	parts := make([]string, 0, len(c.Paragraphs)+1)
	parts = append(parts, c.Title)
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, " ")
}

// ParseContract splits contract text into clauses. Lines before the first
// clause or paragraph are ignored; unnumbered lines continue the previous
// paragraph, or become an unnumbered paragraph right after a clause header.
func ParseContract(text string) []Clause {
	var (
		clauses []Clause
		cur     *Clause
	)

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := clauseHeaderPattern.FindStringSubmatch(line); m != nil && isHeader(m[3], m[4]) {
			clauses = append(clauses, Clause{
				Kind:   capitalize(m[1]),
				Number: m[2],
				Title:  strings.TrimSpace(m[4]),
			})
			cur = &clauses[len(clauses)-1]
			continue
		}

		if m := paragraphPattern.FindStringSubmatch(line); m != nil {
			number := m[1]
			parent := number[:strings.Index(number, ".")]
			if cur == nil || cur.Number != parent {
				clauses = append(clauses, Clause{Kind: "Clause", Number: parent})
				cur = &clauses[len(clauses)-1]
			}
			cur.Paragraphs = append(cur.Paragraphs, Paragraph{Number: number, Text: strings.TrimSpace(m[2])})
			continue
		}

		if cur == nil {
			continue
		}
		if n := len(cur.Paragraphs); n > 0 {
			cur.Paragraphs[n-1].Text += " " + trimmed
			continue
		}
		cur.Paragraphs = append(cur.Paragraphs, Paragraph{Text: trimmed})
	}

	return clauses
}

// isHeader tells a heading such as "Clause 9 Termination" from prose that
// merely starts with a reference, such as "Clause 9 of this Agreement shall
// survive.". Without a separator the title must be capitalised and must not
// end a sentence.
func isHeader(sep, title string) bool {
	title = strings.TrimSpace(title)
	if strings.TrimSpace(sep) != "" || title == "" {
		return true
	}

	r, _ := utf8.DecodeRuneInString(title)
	return unicode.IsUpper(r) && !strings.ContainsAny(title[len(title)-1:], ".;,")
}

// DayCounts returns the day periods stated in text, e.g. "30 days" or
// "10 business days", in order of appearance without duplicates.
func DayCounts(text string) []string {
	var counts []string
	seen := make(map[string]struct{})

	for _, m := range dayCountPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n == 0 {
			continue
		}

		count := m[1] + " "
		if m[2] != "" {
			count += strings.ToLower(m[2]) + " "
		}
		if n == 1 {
			count += "day"
		} else {
			count += "days"
		}

		if _, ok := seen[count]; ok {
			continue
		}
		seen[count] = struct{}{}
		counts = append(counts, count)
	}

	return counts
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
