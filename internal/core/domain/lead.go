package domain

import "time"

// PriorityStatus is the classification a lead receives during ingestion.
type PriorityStatus string

const (
	PriorityUnclassified PriorityStatus = "unclassified"
	PriorityHot          PriorityStatus = "hot"
	PriorityWarm         PriorityStatus = "warm"
	PriorityCold         PriorityStatus = "cold"
)

// IsValid returns true for the four known priorities.
func (p PriorityStatus) IsValid() bool {
	switch p {
	case PriorityUnclassified, PriorityHot, PriorityWarm, PriorityCold:
		return true
	}
	return false
}

// QualifiesForAutoReply returns true for hot and warm leads.
func (p PriorityStatus) QualifiesForAutoReply() bool {
	return p == PriorityHot || p == PriorityWarm
}

// Lead is a message-derived record created by the mailbox sync collaborator.
type Lead struct {
	// ID is the lead identifier, unique within its tenant.
	ID string `json:"id"`

	// TenantID owns the lead.
	TenantID string `json:"tenant_id"`

	// SenderAddress is the address the auto-reply goes to.
	SenderAddress string `json:"sender_address"`

	// Subject of the original message.
	Subject string `json:"subject"`

	// Body is the message content handed to the reply generator.
	Body string `json:"body,omitempty"`

	// PriorityStatus is set by the classification collaborator.
	PriorityStatus PriorityStatus `json:"priority_status"`

	// Confidence is the classifier's confidence in PriorityStatus, 0..1.
	// Nil when the classifier reported none.
	Confidence *float64 `json:"confidence,omitempty"`

	// Answered is true once anyone (human or orchestrator) replied.
	Answered bool `json:"answered"`

	// AutoReplied is the durable at-most-once flag for automatic replies.
	AutoReplied bool `json:"auto_replied"`

	// ReceivedAt is when the message arrived.
	ReceivedAt time.Time `json:"received_at"`

	// RespondedAt is when the reply was sent. Nil until answered.
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

// AwaitingReply returns true if nobody answered the lead yet.
func (l Lead) AwaitingReply() bool {
	return !l.Answered && !l.AutoReplied
}
