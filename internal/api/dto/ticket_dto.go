package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/ticket-relay/internal/domain"
)

// SubmitTicketRequest is the public submission payload.
type SubmitTicketRequest struct {
	IssueTitle       string `json:"issueTitle"`
	IssueDescription string `json:"issueDescription"`
	UserEmail        string `json:"userEmail"`
	IssueCategory    string `json:"issueCategory"`
}

// ForwardTicketRequest is the single-mode relay payload.
type ForwardTicketRequest struct {
	TicketID         string `json:"ticketId"`
	IssueTitle       string `json:"issueTitle"`
	IssueDescription string `json:"issueDescription"`
	UserEmail        string `json:"userEmail"`
	IssueCategory    string `json:"issueCategory"`
}

// ForwardResponse reports a successful single-mode dispatch.
type ForwardResponse struct {
	Message string                     `json:"message"`
	Results map[string]json.RawMessage `json:"results"`
}

// BulkForwardResponse is the bulk-mode manifest.
type BulkForwardResponse struct {
	Forwarded []BulkForwardEntry `json:"forwarded"`
}

// BulkForwardEntry is one ticket outcome in the manifest.
type BulkForwardEntry struct {
	TicketID string `json:"ticketid"`
	Status   string `json:"status"`
}

// ForwardAttempt is the cached outcome of the latest dispatch for a ticket.
type ForwardAttempt struct {
	Target      domain.Target `json:"target"`
	Success     bool          `json:"success"`
	Detail      string        `json:"detail"`
	AttemptedAt time.Time     `json:"attemptedAt"`
}

// TicketSummary response.
type TicketSummary struct {
	ID               string               `json:"id"`
	IssueTitle       string               `json:"issueTitle"`
	IssueDescription string               `json:"issueDescription"`
	UserEmail        string               `json:"userEmail"`
	IssueCategory    string               `json:"issueCategory"`
	ForwardStatus    domain.ForwardStatus `json:"forwardStatus"`
	ForwardedAt      *time.Time           `json:"forwardedAt,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}
