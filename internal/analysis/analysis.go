// Package analysis extracts structured facts from inbound legal emails using
// keyword tables and regular expressions.
package analysis

// Intent is the coarse purpose of an inbound email.
type Intent string

// Known intents, in classification priority order.
const (
	IntentLegalAdviceRequest    Intent = "legal_advice_request"
	IntentContractReviewRequest Intent = "contract_review_request"
	IntentDocumentRequest       Intent = "document_request"
	IntentGeneralInquiry        Intent = "general_inquiry"
	IntentUnknown               Intent = "unknown"
)

// Topic is the legal subject matter of an inbound email.
type Topic string

// Known topics, in classification priority order.
const (
	TopicTerminationForCause       Topic = "termination_for_cause"
	TopicTerminationForConvenience Topic = "termination_for_convenience"
	TopicNoticePeriod              Topic = "notice_period"
	TopicPaymentDispute            Topic = "payment_dispute"
	TopicConfidentiality           Topic = "confidentiality"
	TopicLiabilityIndemnity        Topic = "liability_indemnity"
	TopicIntellectualProperty      Topic = "intellectual_property"
	TopicDisputeResolution         Topic = "dispute_resolution"
	TopicRenewal                   Topic = "renewal"
	TopicGeneral                   Topic = "general"
)

// Label returns the topic in plain words, e.g. "termination for cause".
func (t Topic) Label() string {
	switch t {
	case TopicLiabilityIndemnity:
		return "liability and indemnity"
	case TopicGeneral, "":
		return "your query"
	}

	b := []byte(t)
	for i := range b {
		if b[i] == '_' {
			b[i] = ' '
		}
	}
	return string(b)
}

// Urgency is the heuristic priority tier of an email.
type Urgency string

// Urgency levels.
const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Parties holds the two contracting parties named in an email.
type Parties struct {
	Client       *string `json:"client" jsonschema:"the client party, null when not found"`
	Counterparty *string `json:"counterparty" jsonschema:"the other contracting party, null when not found"`
}

// AgreementReference is the contract instrument mentioned in an email.
type AgreementReference struct {
	Type *string `json:"type" jsonschema:"agreement type, e.g. Master Services Agreement"`
	Date *string `json:"date" jsonschema:"agreement date exactly as written in the email"`
}

// Analysis is the structured record extracted from one email. Every field is
// always populated; absent facts are nil pointers or an empty slice.
type Analysis struct {
	Intent             Intent             `json:"intent" jsonschema:"purpose of the email"`
	PrimaryTopic       Topic              `json:"primary_topic" jsonschema:"legal subject matter"`
	Parties            Parties            `json:"parties" jsonschema:"contracting parties"`
	AgreementReference AgreementReference `json:"agreement_reference" jsonschema:"referenced agreement"`
	Questions          []string           `json:"questions" jsonschema:"questions asked in the email"`
	RequestedDueDate   *string            `json:"requested_due_date" jsonschema:"date a reply is requested by, as written"`
	UrgencyLevel       Urgency            `json:"urgency_level" jsonschema:"one of low, medium, high"`
}

func strPtr(s string) *string {
	return &s
}
