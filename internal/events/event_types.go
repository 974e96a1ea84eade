package events

import (
	"time"

	"github.com/spec-kit/ticket-relay/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketReceived      EventType = "ticket_received"
	EventTicketForwarded     EventType = "ticket_forwarded"
	EventTicketForwardFailed EventType = "ticket_forward_failed"
	EventTicketRejected      EventType = "ticket_rejected"
)

// Event represents a relay event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketReceivedPayload payload.
type TicketReceivedPayload struct {
	IssueCategory string `json:"issue_category"`
	IssueTitle    string `json:"issue_title"`
}

// TicketForwardedPayload payload.
type TicketForwardedPayload struct {
	Target domain.Target `json:"target"`
}

// TicketForwardFailedPayload payload.
type TicketForwardFailedPayload struct {
	Target domain.Target `json:"target"`
	Reason string        `json:"reason"`
}

// TicketRejectedPayload payload.
type TicketRejectedPayload struct {
	IssueCategory string `json:"issue_category"`
	Reason        string `json:"reason"`
}
