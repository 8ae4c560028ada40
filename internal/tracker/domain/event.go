package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventType classifies what lifecycle stage an email describes.
type EventType string

const (
	EventApplied   EventType = "applied"
	EventInterview EventType = "interview"
	EventRejected  EventType = "rejected"
	EventOffer     EventType = "offer"
)

// Namespace returns the vector index partition for this event type.
func (t EventType) Namespace() string {
	if t == EventApplied {
		return "application"
	}
	return string(t)
}

// InboundEmail is one message from an email source, ordered by ReceivedAt.
type InboundEmail struct {
	ID         string
	Subject    string
	Body       string
	ReceivedAt time.Time
}

// EmailEvent is the structured fact the classifier extracted from one email.
// A nil event means the email is not job related.
type EmailEvent struct {
	CompanyName   string    `json:"company_name"`
	RoleTitle     string    `json:"role"`
	EventDate     string    `json:"date"` // ISO-8601 as emitted by the classifier
	EventType     EventType `json:"status"`
	RoundLabel    string    `json:"interview_round,omitempty"`
	Location      string    `json:"location,omitempty"`
	ExternalJobID string    `json:"job_id,omitempty"`

	// Offer-only extras, null for other event types
	SalaryComp       string `json:"salary_comp,omitempty"`
	DeadlineToAccept string `json:"deadline_to_accept,omitempty"`
}

// Validate checks the fields the reconciler cannot work without. Invalid
// events are skipped at the pipeline boundary, never propagated as errors.
func (e *EmailEvent) Validate() error {
	if strings.TrimSpace(e.CompanyName) == "" {
		return fmt.Errorf("missing company_name")
	}
	if strings.TrimSpace(e.RoleTitle) == "" {
		return fmt.Errorf("missing role")
	}
	if strings.TrimSpace(e.EventDate) == "" {
		return fmt.Errorf("missing date")
	}
	switch e.EventType {
	case EventApplied, EventInterview, EventRejected, EventOffer:
	default:
		return fmt.Errorf("unknown status %q", e.EventType)
	}
	return nil
}

// eventDateLayouts absorbs common drift in classifier date output; the
// contract pins ISO-8601 but models occasionally emit long forms.
var eventDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

// ParseEventDate parses a classifier date string, falling back across known
// layouts. Returns the zero time and an error when nothing fits.
func ParseEventDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range eventDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date %q", raw)
}

// SemanticRecord is the metadata stored next to an embedding in the vector
// index. It references an Application by id but never owns it; the index is
// advisory and may be stale or missing entries.
type SemanticRecord struct {
	UserEmail      string
	ApplicationID  uint
	Status         string
	CompanyName    string
	RoleTitle      string
	InterviewRound string
	Location       string
	JobID          string
}

// SemanticMatch is one ranked candidate from a vector query. Score is the
// raw index score; matching decisions re-score candidates lexically and
// never trust Score alone.
type SemanticMatch struct {
	ID     string
	Score  float64
	Record SemanticRecord
}
