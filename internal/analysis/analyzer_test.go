package analysis_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/legalmail-mcp/internal/analysis"
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

func strp(s string) *string {
	return &s
}

func TestAnalyzeSampleEmail(t *testing.T) {
	res := analysis.Default().Analyze(sampleEmail)

	expected := analysis.Analysis{
		Intent:       analysis.IntentLegalAdviceRequest,
		PrimaryTopic: analysis.TopicTerminationForCause,
		Parties: analysis.Parties{
			Client:       strp("Acme Technologies Pvt. Ltd."),
			Counterparty: strp("Brightwave Solutions LLP"),
		},
		AgreementReference: analysis.AgreementReference{
			Type: strp("Master Services Agreement"),
			Date: strp("10 March 2023"),
		},
		Questions: []string{
			"Whether we are contractually entitled to terminate for cause on the basis of repeated delays in delivery?",
			"The minimum notice period required?",
		},
		RequestedDueDate: strp("18 November 2025"),
		UrgencyLevel:     analysis.UrgencyMedium,
	}

	assert.Equal(t, expected, res)
}

func TestAnalyzeAlwaysPopulatesEveryKey(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "malformed", input: "This is not a proper email format"},
		{name: "special_characters", input: "Subject: Re: Contract — Review & Comments\nDear Team,\n" +
			"We need to discuss the \"special provisions\" mentioned.\nRegards, John O'Brien"},
		{name: "very_long", input: "Subject: Test\n" + strings.Repeat("This is a very long email. ", 1000)},
		{name: "only_punctuation", input: "?!?;;((\"\"))...\n- \n1. \n"},
		{name: "sample", input: sampleEmail},
	}

	keys := []string{
		"intent", "primary_topic", "parties", "agreement_reference",
		"questions", "requested_due_date", "urgency_level",
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analysis.Default().Analyze(tc.input)

			raw, err := json.Marshal(res)
			require.NoError(t, err)

			var decoded map[string]any
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Len(t, decoded, len(keys))
			for _, k := range keys {
				assert.Contains(t, decoded, k)
			}

			assert.Contains(t, decoded["parties"], "client")
			assert.Contains(t, decoded["parties"], "counterparty")
			assert.Contains(t, decoded["agreement_reference"], "type")
			assert.Contains(t, decoded["agreement_reference"], "date")
			assert.NotNil(t, res.Questions)
			assert.Contains(t,
				[]analysis.Urgency{analysis.UrgencyLow, analysis.UrgencyMedium, analysis.UrgencyHigh},
				res.UrgencyLevel)
		})
	}
}

func TestAnalyzeEmptyEmail(t *testing.T) {
	res := analysis.Default().Analyze("")

	assert.Equal(t, analysis.IntentUnknown, res.Intent)
	assert.Equal(t, analysis.TopicGeneral, res.PrimaryTopic)
	assert.Nil(t, res.Parties.Client)
	assert.Nil(t, res.Parties.Counterparty)
	assert.Nil(t, res.AgreementReference.Type)
	assert.Nil(t, res.AgreementReference.Date)
	assert.Empty(t, res.Questions)
	assert.Nil(t, res.RequestedDueDate)
	assert.Equal(t, analysis.UrgencyLow, res.UrgencyLevel)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	a := analysis.Default()
	assert.Equal(t, a.Analyze(sampleEmail), a.Analyze(sampleEmail))
}

func TestIntentAndTopic(t *testing.T) {
	cases := []struct {
		name           string
		input          string
		expectedIntent analysis.Intent
		expectedTopic  analysis.Topic
	}{
		{
			name:           "general_inquiry",
			input:          "Subject: General Inquiry\nDear Team,\nWe have some questions about the contract.\nRegards, John",
			expectedIntent: analysis.IntentGeneralInquiry,
			expectedTopic:  analysis.TopicGeneral,
		},
		{
			name:           "review_request",
			input:          "Please review the draft agreement and send us your mark-up on the indemnity and liability caps.",
			expectedIntent: analysis.IntentContractReviewRequest,
			expectedTopic:  analysis.TopicLiabilityIndemnity,
		},
		{
			name:           "convenience_beats_cause",
			input:          "Can we terminate for convenience without cause? Please advise.",
			expectedIntent: analysis.IntentLegalAdviceRequest,
			expectedTopic:  analysis.TopicTerminationForConvenience,
		},
		{
			name:           "payment",
			input:          "Please send us a copy of the overdue invoice and the payment schedule.",
			expectedIntent: analysis.IntentDocumentRequest,
			expectedTopic:  analysis.TopicPaymentDispute,
		},
		{
			name:           "inflected_forms",
			input:          "We terminated the Services Agreement dated 1 May 2021 and the supplier breached it.",
			expectedIntent: analysis.IntentUnknown,
			expectedTopic:  analysis.TopicTerminationForCause,
		},
		{
			name:           "stem_needs_word_start",
			input:          "The determination of the auditors is final.",
			expectedIntent: analysis.IntentUnknown,
			expectedTopic:  analysis.TopicGeneral,
		},
		{
			name:           "keyword_inside_word_does_not_count",
			input:          "The agenda for the calendar review is attached.",
			expectedIntent: analysis.IntentUnknown,
			expectedTopic:  analysis.TopicGeneral,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analysis.Default().Analyze(tc.input)
			assert.Equal(t, tc.expectedIntent, res.Intent)
			assert.Equal(t, tc.expectedTopic, res.PrimaryTopic)
		})
	}
}

func TestParties(t *testing.T) {
	cases := []struct {
		name         string
		input        string
		client       *string
		counterparty *string
	}{
		{
			name:         "defined_terms_without_between",
			input:        "Northwind Traders Ltd (\"Northwind\") has written to Contoso LLC (\"Contoso\") about delays.",
			client:       strp("Northwind Traders Ltd"),
			counterparty: strp("Contoso LLC"),
		},
		{
			name:         "between_without_defined_terms",
			input:        "The lease between Globex Corporation and Initech Inc is ending.",
			client:       strp("Globex Corporation"),
			counterparty: strp("Initech Inc"),
		},
		{
			name: "sender_signs_for_second_party",
			input: "We refer to the agreement between Acme Ltd (\"Acme\") and Beta Corp (\"Beta\").\n" +
				"Regards,\nJane Doe\nGeneral Counsel, Beta Corp",
			client:       strp("Beta Corp"),
			counterparty: strp("Acme Ltd"),
		},
		{
			name:  "no_parties",
			input: "Can you call me tomorrow?",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analysis.Default().Analyze(tc.input)
			assert.Equal(t, tc.client, res.Parties.Client)
			assert.Equal(t, tc.counterparty, res.Parties.Counterparty)
		})
	}
}

func TestAgreementReference(t *testing.T) {
	cases := []struct {
		name         string
		input        string
		expectedType *string
		expectedDate *string
	}{
		{
			name: "multiple_agreements_first_wins",
			input: "Subject: Multiple Agreements\nWe refer to the Service Agreement dated 1 Jan 2023 and \n" +
				"the Master Agreement dated 2 Feb 2023.\nRegards, John",
			expectedType: strp("Service Agreement"),
			expectedDate: strp("1 Jan 2023"),
		},
		{
			name:         "dated_mention_preferred",
			input:        "Under the NDA, and specifically the Non-Disclosure Agreement, and the Supply Agreement of March 3, 2024, ...",
			expectedType: strp("Supply Agreement"),
			expectedDate: strp("March 3, 2024"),
		},
		{
			name:         "no_date",
			input:        "Our consulting agreement needs an update.",
			expectedType: strp("Consulting Agreement"),
		},
		{
			name:         "iso_date",
			input:        "the Loan Agreement dated 2021-06-30 is in default",
			expectedType: strp("Loan Agreement"),
			expectedDate: strp("2021-06-30"),
		},
		{
			name:  "none",
			input: "Hello there",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analysis.Default().Analyze(tc.input)
			assert.Equal(t, tc.expectedType, res.AgreementReference.Type)
			assert.Equal(t, tc.expectedDate, res.AgreementReference.Date)
		})
	}
}

func TestDueDateAndUrgency(t *testing.T) {
	cases := []struct {
		name            string
		input           string
		expectedDue     *string
		expectedUrgency analysis.Urgency
	}{
		{
			name:            "no_dates",
			input:           "Subject: General Inquiry\nDear Team,\nWe have some questions about the contract.\nRegards, John",
			expectedUrgency: analysis.UrgencyLow,
		},
		{
			name:            "effective_date_is_not_due_date",
			input:           "We intend to terminate with effect from 1 December 2025.",
			expectedUrgency: analysis.UrgencyLow,
		},
		{
			name:            "deadline",
			input:           "The deadline is 5th May 2026 for the filing.",
			expectedDue:     strp("5th May 2026"),
			expectedUrgency: analysis.UrgencyMedium,
		},
		{
			name:            "narrative_by_is_not_due_date",
			input:           "The Supply Agreement was signed by both parties by 3 March 2022.",
			expectedUrgency: analysis.UrgencyLow,
		},
		{
			name:            "narrative_before_is_not_due_date",
			input:           "The supplier stopped delivering before 1 January 2024.",
			expectedUrgency: analysis.UrgencyLow,
		},
		{
			name:            "due_by",
			input:           "The first instalment is due by 30 June 2026.",
			expectedDue:     strp("30 June 2026"),
			expectedUrgency: analysis.UrgencyMedium,
		},
		{
			name:            "on_or_before",
			input:           "Kindly countersign on or before 15 January 2026.",
			expectedDue:     strp("15 January 2026"),
			expectedUrgency: analysis.UrgencyMedium,
		},
		{
			name:            "urgent_keyword",
			input:           "URGENT: please call me immediately regarding the dispute.",
			expectedUrgency: analysis.UrgencyHigh,
		},
		{
			name:            "due_date_with_medium_keyword",
			input:           "Please respond promptly, and in any event no later than 12/01/2026.",
			expectedDue:     strp("12/01/2026"),
			expectedUrgency: analysis.UrgencyHigh,
		},
		{
			name:            "medium_keyword_only",
			input:           "Could you look at this soon?",
			expectedUrgency: analysis.UrgencyMedium,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analysis.Default().Analyze(tc.input)
			assert.Equal(t, tc.expectedDue, res.RequestedDueDate)
			assert.Equal(t, tc.expectedUrgency, res.UrgencyLevel)
		})
	}
}

func TestQuestions(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name: "interrogative_sentences",
			input: "Subject: Can we exit?\nDear Counsel,\nCan we exit the lease early? We think so. " +
				"What would the penalty be?\nThanks,\nSam",
			expected: []string{"Can we exit the lease early?", "What would the penalty be?"},
		},
		{
			name:     "bullets_and_letters",
			input:    "Please advise on:\n- liability caps\n(b) governing law;\n* the notice address",
			expected: []string{"liability caps?", "governing law?", "the notice address?"},
		},
		{
			name:     "capitalised_line_does_not_continue_item",
			input:    "1. Is the clause enforceable\nWe look forward to hearing from you.",
			expected: []string{"Is the clause enforceable?"},
		},
		{
			name:     "duplicates_dropped",
			input:    "Is it valid? Is it valid?",
			expected: []string{"Is it valid?"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := analysis.Default().Analyze(tc.input)
			assert.Equal(t, tc.expected, res.Questions)
		})
	}
}

func TestSubjectAndSenderName(t *testing.T) {
	assert.Equal(t, "Termination of Services under MSA", analysis.Subject(sampleEmail))
	assert.Equal(t, "Priya Sharma", analysis.SenderName(sampleEmail))

	assert.Equal(t, "John O'Brien", analysis.SenderName("Dear Team,\nNoted.\nRegards, John O'Brien"))
	assert.Empty(t, analysis.Subject("no headers here"))
	assert.Empty(t, analysis.SenderName("Thanks for your help with this."))
}

func TestTopicLabel(t *testing.T) {
	assert.Equal(t, "termination for cause", analysis.TopicTerminationForCause.Label())
	assert.Equal(t, "liability and indemnity", analysis.TopicLiabilityIndemnity.Label())
	assert.Equal(t, "your query", analysis.TopicGeneral.Label())
}
