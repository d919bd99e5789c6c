package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	monthPattern = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|June?|July?|Aug(?:ust)?|` +
		`Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?`

	// datePattern matches "10 March 2023", "1st Jan 2023", "March 10, 2023",
	// "2023-03-10" and "10/03/2023". Callers add (?i).
	datePattern = `\b(?:\d{1,2}(?:st|nd|rd|th)?\s+` + monthPattern + `,?\s+\d{4}` +
		`|` + monthPattern + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}` +
		`|\d{4}-\d{2}-\d{2}` +
		`|\d{1,2}/\d{1,2}/\d{2,4})\b`

	dueTrigger = `(?:by|before|no\s+later\s+than|not\s+later\s+than|on\s+or\s+before)`
	dueLead    = `(?:the\s+)?(?:close\s+of\s+business\s+on\s+|end\s+of\s+(?:the\s+)?day\s+on\s+|cob\s+)?`

	// properNoun is a run of capitalised words, allowing "&" and "of" inside.
	properNoun = `[A-Z][\w&'’.-]*(?:\s+(?:[A-Z][\w&'’.-]*|&|of))*`
	shortName  = `\(\s*(?:the\s+)?["“”']([^"“”'()]{1,40})["“”']\s*\)`
	freeName   = `([^()"“”]{2,120}?)`
)

var (
	agreementDatePattern = regexp.MustCompile(`(?i)^[\s,]*(?:\([^)]{0,40}\)\s*)?` +
		`(?:dated(?:\s+as\s+of)?|of|signed\s+on|executed\s+on|entered\s+into\s+on|effective(?:\s+from|\s+as\s+of)?)?` +
		`\s*(` + datePattern + `)`)

	dueCuePattern = regexp.MustCompile(`(?i)\b(?:advice|advise|response|respond|reply|revert|feedback|` +
		`confirmation|confirm|opinion|comments|views|instructions)\b[^.?!]{0,80}?\b` + dueTrigger + `\s+` + dueLead +
		`(` + datePattern + `)`)

	// dueFallbackPattern needs an explicit deadline phrase; a bare "by" or
	// "before" without a request cue is narrative ("signed by both parties by
	// 3 March 2022").
	dueFallbackPattern = regexp.MustCompile(`(?i)\b(?:deadline(?:\s+(?:is|of))?:?|due\s+(?:on|by|date(?:\s+is)?:?)|` +
		`no\s+later\s+than|not\s+later\s+than|on\s+or\s+before)\s+` + dueLead + `(` + datePattern + `)`)

	betweenDefinedPattern = regexp.MustCompile(`(?i)\bbetween\s+` + freeName + `\s*` + shortName +
		`,?\s+and\s+` + freeName + `\s*` + shortName)
	definedTermPattern = regexp.MustCompile(`(` + properNoun + `)\s*` + shortName)
	betweenPlainPattern = regexp.MustCompile(`\b[Bb]etween\s+(?:the\s+)?(` + properNoun + `)\s+and\s+(?:the\s+)?(` + properNoun + `)`)

	subjectPattern  = regexp.MustCompile(`(?im)^[ \t]*subject[ \t]*:[ \t]*(.*)$`)
	headerPattern   = regexp.MustCompile(`(?i)^(?:subject|from|to|cc|bcc|date|sent)\s*:`)
	signOffPattern  = regexp.MustCompile(`(?im)^\s*(?:kind regards|best regards|warm regards|regards|sincerely|yours sincerely|yours faithfully|many thanks|thanks|best wishes)\b[ \t]*(?:,[ \t]*|$)`)
	itemPattern     = regexp.MustCompile(`^\s*(?:\(?\d{1,2}[.)]|\(?[a-z][.)]|\([ivx]+\)|[-*•–])\s+(.+)$`)
	sentencePattern = regexp.MustCompile(`[^.?!]*\?`)
)

// collapse replaces every whitespace run with a single space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Subject returns the Subject header value of a raw email, or "".
func Subject(text string) string {
	m := subjectPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// SenderName returns the name signed under the closing of a raw email
// ("Regards,\nPriya Sharma" or "Regards, John"), or "".
func SenderName(text string) string {
	block := signOffBlock(text)
	if block == "" {
		return ""
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !looksLikeName(line) {
			return ""
		}
		return line
	}

	return ""
}

// signOffBlock returns the text after the last closing phrase.
func signOffBlock(text string) string {
	locs := signOffPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return ""
	}
	return text[locs[len(locs)-1][1]:]
}

func looksLikeName(s string) bool {
	if len(s) > 60 || strings.ContainsAny(s, "@:;?!") {
		return false
	}
	r := []rune(s)
	return unicode.IsUpper(r[0])
}
