package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Category is a classification outcome with the keywords that vote for it.
// Keywords match whole words unless they end in "*", which matches any word
// starting with the stem.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Rules are the keyword tables the Analyzer classifies with. Categories are
// listed in priority order; ties go to the earlier one.
type Rules struct {
	Intents        []Category `yaml:"intents"`
	Topics         []Category `yaml:"topics"`
	AgreementTypes []string   `yaml:"agreement_types"`
	HighUrgency    []string   `yaml:"high_urgency"`
	MediumUrgency  []string   `yaml:"medium_urgency"`
}

// DefaultRules returns the built-in tables.
func DefaultRules() Rules {
	return Rules{
		Intents: []Category{
			{Name: string(IntentLegalAdviceRequest), Keywords: []string{
				"advice", "advise", "please confirm", "legal opinion", "your opinion", "your views",
				"entitled to", "guidance", "whether we are", "whether we can", "our options", "legal position",
			}},
			{Name: string(IntentContractReviewRequest), Keywords: []string{
				"please review", "review the draft", "review and comment", "comments on the", "mark-up",
				"markup", "redline", "revised draft", "draft agreement",
			}},
			{Name: string(IntentDocumentRequest), Keywords: []string{
				"please send", "send us", "copy of", "signed copy", "executed version", "please share", "provide a copy",
			}},
			{Name: string(IntentGeneralInquiry), Keywords: []string{
				"question", "questions", "inquiry", "enquiry", "query", "queries", "clarification", "information",
			}},
		},
		Topics: []Category{
			{Name: string(TopicTerminationForCause), Keywords: []string{
				"for cause", "material breach", "terminat*", "repudiat*", "breach*",
			}},
			{Name: string(TopicTerminationForConvenience), Keywords: []string{
				"for convenience", "without cause", "early termination", "exit the agreement", "terminat*",
			}},
			{Name: string(TopicNoticePeriod), Keywords: []string{
				"notice period", "prior notice", "written notice", "notice",
			}},
			{Name: string(TopicPaymentDispute), Keywords: []string{
				"invoice*", "payment*", "overdue", "unpaid", "late fees", "outstanding amount",
			}},
			{Name: string(TopicConfidentiality), Keywords: []string{
				"confidential", "confidentiality", "non-disclosure", "nda", "trade secret",
			}},
			{Name: string(TopicLiabilityIndemnity), Keywords: []string{
				"liability", "indemnity", "indemnify", "indemnification", "damages", "limitation of liability",
			}},
			{Name: string(TopicIntellectualProperty), Keywords: []string{
				"intellectual property", "copyright", "trademark", "patent", "licence", "license", "ownership of",
			}},
			{Name: string(TopicDisputeResolution), Keywords: []string{
				"arbitration", "dispute", "litigation", "mediation", "jurisdiction", "governing law", "court",
			}},
			{Name: string(TopicRenewal), Keywords: []string{
				"renew*", "extend the term", "extension", "expiry", "auto-renew",
			}},
		},
		AgreementTypes: []string{
			"Master Services Agreement", "Master Service Agreement", "Professional Services Agreement",
			"Mutual Non-Disclosure Agreement", "Non-Disclosure Agreement", "Software License Agreement",
			"Software Licence Agreement", "Service Level Agreement", "Data Processing Agreement",
			"Shareholders' Agreement", "Shareholders Agreement", "Share Purchase Agreement",
			"Asset Purchase Agreement", "Joint Venture Agreement", "Consulting Agreement",
			"Consultancy Agreement", "Distribution Agreement", "Employment Agreement", "Framework Agreement",
			"Settlement Agreement", "Partnership Agreement", "Licence Agreement", "License Agreement",
			"Lease Agreement", "Loan Agreement", "Agency Agreement", "Supply Agreement",
			"Purchase Agreement", "Services Agreement", "Service Agreement", "Master Agreement",
		},
		HighUrgency: []string{
			"urgent", "urgently", "immediately", "immediate", "asap", "as soon as possible",
			"time-sensitive", "time sensitive", "without delay", "emergency",
		},
		MediumUrgency: []string{
			"soon", "promptly", "priority", "earliest convenience", "this week", "shortly", "timely",
		},
	}
}

// LoadRules reads YAML rules from r. Tables present in the document replace
// the corresponding default table; missing tables keep their defaults.
func LoadRules(r io.Reader) (Rules, error) {
	var override Rules

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return Rules{}, fmt.Errorf("yaml.Decode failed: %w", err)
	}

	rules := DefaultRules()
	if len(override.Intents) > 0 {
		rules.Intents = override.Intents
	}
	if len(override.Topics) > 0 {
		rules.Topics = override.Topics
	}
	if len(override.AgreementTypes) > 0 {
		rules.AgreementTypes = override.AgreementTypes
	}
	if len(override.HighUrgency) > 0 {
		rules.HighUrgency = override.HighUrgency
	}
	if len(override.MediumUrgency) > 0 {
		rules.MediumUrgency = override.MediumUrgency
	}

	return rules, nil
}

// LoadRulesFile reads rules from a YAML file. An empty path yields the defaults.
func LoadRulesFile(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("os.ReadFile failed: %w", err)
	}

	rules, err := LoadRules(bytes.NewReader(raw))
	if err != nil {
		return Rules{}, fmt.Errorf("LoadRules(%s) failed: %w", path, err)
	}

	return rules, nil
}
