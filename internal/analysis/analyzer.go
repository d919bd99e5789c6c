package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// agreementDateWindow bounds how far after an agreement name its date may start.
const agreementDateWindow = 120

type matcher struct {
	name     string
	patterns []*regexp.Regexp
}

// Analyzer classifies emails and extracts facts from them. It holds only
// compiled, read-only rules and is safe for concurrent use.
type Analyzer struct {
	intents        []matcher
	topics         []matcher
	agreement      *regexp.Regexp
	agreementNames map[string]string
	high           []*regexp.Regexp
	medium         []*regexp.Regexp
}

// New compiles rules into an Analyzer.
func New(rules Rules) (*Analyzer, error) {
	intents, err := compileCategories(rules.Intents)
	if err != nil {
		return nil, fmt.Errorf("compile intents failed: %w", err)
	}

	topics, err := compileCategories(rules.Topics)
	if err != nil {
		return nil, fmt.Errorf("compile topics failed: %w", err)
	}

	high, err := compileKeywords(rules.HighUrgency)
	if err != nil {
		return nil, fmt.Errorf("compile high urgency failed: %w", err)
	}

	medium, err := compileKeywords(rules.MediumUrgency)
	if err != nil {
		return nil, fmt.Errorf("compile medium urgency failed: %w", err)
	}

	agreement, names, err := compileAgreementTypes(rules.AgreementTypes)
	if err != nil {
		return nil, fmt.Errorf("compile agreement types failed: %w", err)
	}

	return &Analyzer{
		intents:        intents,
		topics:         topics,
		agreement:      agreement,
		agreementNames: names,
		high:           high,
		medium:         medium,
	}, nil
}

var defaultAnalyzer = sync.OnceValue(func() *Analyzer {
	a, err := New(DefaultRules())
	if err != nil {
		panic(fmt.Errorf("default rules failed to compile: %w", err))
	}
	return a
})

// Default returns an Analyzer built from DefaultRules.
func Default() *Analyzer {
	return defaultAnalyzer()
}

// Analyze extracts an Analysis from raw email text. It accepts any input and
// always returns a fully populated record.
func (a *Analyzer) Analyze(text string) Analysis {
	flat := collapse(text)

	due := requestedDueDate(flat)

	return Analysis{
		Intent:             Intent(classify(flat, a.intents, string(IntentUnknown))),
		PrimaryTopic:       Topic(classify(flat, a.topics, string(TopicGeneral))),
		Parties:            extractParties(text, flat),
		AgreementReference: a.agreementReference(flat),
		Questions:          extractQuestions(text),
		RequestedDueDate:   due,
		UrgencyLevel:       a.urgency(flat, due != nil),
	}
}

// classify returns the category with the most distinct keyword hits, the
// earliest category on a tie, and fallback when nothing matches.
func classify(text string, matchers []matcher, fallback string) string {
	best, bestScore := fallback, 0
	for _, m := range matchers {
		score := countHits(text, m.patterns)
		if score > bestScore {
			best, bestScore = m.name, score
		}
	}
	return best
}

func countHits(text string, patterns []*regexp.Regexp) int {
	hits := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			hits++
		}
	}
	return hits
}

func (a *Analyzer) urgency(text string, hasDueDate bool) Urgency {
	high := countHits(text, a.high) > 0
	medium := countHits(text, a.medium) > 0

	switch {
	case high, hasDueDate && medium:
		return UrgencyHigh
	case hasDueDate, medium:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// agreementReference reports the first agreement mention followed by a date,
// or the first mention at all when none carries a date.
func (a *Analyzer) agreementReference(text string) AgreementReference {
	var ref AgreementReference
	if a.agreement == nil {
		return ref
	}

	for _, loc := range a.agreement.FindAllStringIndex(text, -1) {
		name := a.agreementNames[strings.ToLower(text[loc[0]:loc[1]])]
		if name == "" {
			name = text[loc[0]:loc[1]]
		}

		if date := dateAfter(text[loc[1]:]); date != "" {
			return AgreementReference{Type: strPtr(name), Date: strPtr(date)}
		}
		if ref.Type == nil {
			ref.Type = strPtr(name)
		}
	}

	return ref
}

func dateAfter(rest string) string {
	if len(rest) > agreementDateWindow {
		rest = rest[:agreementDateWindow]
	}
	m := agreementDatePattern.FindStringSubmatch(rest)
	if m == nil {
		return ""
	}
	return m[1]
}

func requestedDueDate(text string) *string {
	if m := dueCuePattern.FindStringSubmatch(text); m != nil {
		return strPtr(m[1])
	}
	if m := dueFallbackPattern.FindStringSubmatch(text); m != nil {
		return strPtr(m[1])
	}
	return nil
}

func extractParties(text, flat string) Parties {
	client, counterparty := findParties(flat)
	if client == "" && counterparty == "" {
		return Parties{}
	}

	// The sender signs for the client.
	if client != "" && counterparty != "" {
		signOff := collapse(signOffBlock(text))
		if strings.Contains(signOff, counterparty) && !strings.Contains(signOff, client) {
			client, counterparty = counterparty, client
		}
	}

	var p Parties
	if client != "" {
		p.Client = strPtr(client)
	}
	if counterparty != "" {
		p.Counterparty = strPtr(counterparty)
	}
	return p
}

func findParties(flat string) (string, string) {
	if m := betweenDefinedPattern.FindStringSubmatch(flat); m != nil {
		return cleanPartyName(m[1]), cleanPartyName(m[3])
	}

	if ms := definedTermPattern.FindAllStringSubmatch(flat, 2); len(ms) > 0 {
		first := cleanPartyName(ms[0][1])
		if len(ms) == 1 {
			return first, ""
		}
		return first, cleanPartyName(ms[1][1])
	}

	if m := betweenPlainPattern.FindStringSubmatch(flat); m != nil {
		return cleanPartyName(m[1]), cleanPartyName(m[2])
	}

	return "", ""
}

func cleanPartyName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, ",;: ")
	if len(s) > 4 && strings.EqualFold(s[:4], "the ") {
		s = s[4:]
	}
	return s
}

// questionScanner walks email lines collecting list items and interrogative
// sentences in document order.
type questionScanner struct {
	out   []string
	prose []string
	open  int
}

func extractQuestions(text string) []string {
	s := &questionScanner{open: -1}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		s.scan(line)
	}
	s.flushProse()

	questions := make([]string, 0, len(s.out))
	seen := make(map[string]struct{}, len(s.out))
	for _, q := range s.out {
		q = normalizeQuestion(q)
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		questions = append(questions, q)
	}

	return questions
}

func (s *questionScanner) scan(line string) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		s.flushProse()
		s.open = -1

	case headerPattern.MatchString(trimmed):
		s.flushProse()
		s.open = -1

	case itemPattern.MatchString(line):
		s.flushProse()
		item := itemPattern.FindStringSubmatch(line)[1]
		s.out = append(s.out, item)
		s.open = -1
		if !terminated(item) {
			s.open = len(s.out) - 1
		}

	case s.open >= 0 && startsLower(trimmed):
		s.out[s.open] += " " + trimmed
		if terminated(trimmed) {
			s.open = -1
		}

	case isSalutation(trimmed):
		s.flushProse()
		s.open = -1

	default:
		s.open = -1
		s.prose = append(s.prose, trimmed)
	}
}

func (s *questionScanner) flushProse() {
	if len(s.prose) == 0 {
		return
	}
	joined := strings.Join(s.prose, " ")
	s.prose = s.prose[:0]

	s.out = append(s.out, sentencePattern.FindAllString(joined, -1)...)
}

// isSalutation reports short comma-terminated lines such as "Dear Counsel,"
// or "Kind regards,".
func isSalutation(s string) bool {
	return strings.HasSuffix(s, ",") && len(strings.Fields(s)) <= 4
}

func terminated(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', ';', '?', '!', ':':
		return true
	}
	return false
}

func startsLower(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLower(r)
}

func normalizeQuestion(q string) string {
	q = collapse(q)
	q = strings.TrimRight(q, ";,.: ")
	if !strings.ContainsFunc(q, unicode.IsLetter) {
		return ""
	}
	if !strings.HasSuffix(q, "?") {
		q += "?"
	}
	return q
}

func compileCategories(cats []Category) ([]matcher, error) {
	matchers := make([]matcher, 0, len(cats))
	for _, c := range cats {
		if c.Name == "" {
			return nil, fmt.Errorf("category without a name")
		}
		patterns, err := compileKeywords(c.Keywords)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", c.Name, err)
		}
		matchers = append(matchers, matcher{name: c.Name, patterns: patterns})
	}
	return matchers, nil
}

func compileKeywords(keywords []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		p, err := regexp.Compile(`(?i)` + wordBounded(kw))
		if err != nil {
			return nil, fmt.Errorf("keyword %q: %w", kw, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// wordBounded quotes kw and anchors it at word boundaries where kw starts or
// ends with a word character. A trailing "*" makes kw a stem that matches
// any word continuing it, so "terminat*" matches "terminated".
func wordBounded(kw string) string {
	kw = collapse(kw)
	stem := strings.HasSuffix(kw, "*")
	kw = strings.TrimSuffix(kw, "*")
	quoted := regexp.QuoteMeta(kw)

	first, _ := utf8.DecodeRuneInString(kw)
	last, _ := utf8.DecodeLastRuneInString(kw)
	if isWordRune(first) {
		quoted = `\b` + quoted
	}
	switch {
	case stem:
		quoted += `\w*`
	case isWordRune(last):
		quoted += `\b`
	}
	return quoted
}

func isWordRune(r rune) bool {
	return r == '_' || r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func compileAgreementTypes(types []string) (*regexp.Regexp, map[string]string, error) {
	names := make(map[string]string, len(types))
	alts := make([]string, 0, len(types))
	for _, t := range types {
		t = collapse(t)
		if t == "" {
			continue
		}
		names[strings.ToLower(t)] = t
		alts = append(alts, t)
	}
	if len(alts) == 0 {
		return nil, names, nil
	}

	// Longest first so that the leftmost-first alternation prefers
	// "Master Services Agreement" over "Services Agreement".
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })

	quoted := make([]string, len(alts))
	for i, alt := range alts {
		quoted[i] = wordBounded(alt)
	}

	p, err := regexp.Compile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
	if err != nil {
		return nil, nil, err
	}
	return p, names, nil
}
