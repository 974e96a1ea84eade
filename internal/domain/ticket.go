package domain

import "time"

// IssueCategory drives routing. Comparison is case-insensitive; values are
// stored lower-cased.
type IssueCategory string

const (
	CategoryBilling    IssueCategory = "billing"
	CategoryAccess     IssueCategory = "access"
	CategoryStockIssue IssueCategory = "stock_issue"
)

// ForwardStatus records the outcome of the most recent dispatch attempt.
type ForwardStatus string

const (
	ForwardStatusPending   ForwardStatus = "PENDING"
	ForwardStatusForwarded ForwardStatus = "FORWARDED"
	ForwardStatusFailed    ForwardStatus = "FAILED"
	ForwardStatusRejected  ForwardStatus = "REJECTED"
)

// Ticket is the unit of work for the relay.
type Ticket struct {
	ID               string
	IssueTitle       string
	IssueDescription string
	UserEmail        string
	IssueCategory    string
	ForwardStatus    ForwardStatus
	ForwardedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
