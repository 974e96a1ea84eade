package relay

import (
	"fmt"
	"strings"

	"github.com/spec-kit/ticket-relay/internal/config"
	"github.com/spec-kit/ticket-relay/internal/domain"
	apperrors "github.com/spec-kit/ticket-relay/pkg/util/errorutil"
)

// Fixed values the downstream schemas expect.
const (
	SeverityImmediateAttention = "IMMEDIATE_ATTENTION"
	TaskCustomerRefundAlert    = "CUSTOMER_REFUND_ALERT"
	TaskVerifyStock            = "VERIFY_STOCK"
	TaskGeneralSupport         = "GENERAL_SUPPORT"

	inventoryCategoryItemNotFound = "itemnotfound"
)

// POSTicketPayload matches the point-of-sale ticketing function schema.
type POSTicketPayload struct {
	TicketID       string `json:"ticketid"`
	Subject        string `json:"subject"`
	Description    string `json:"description"`
	IssueCategory  string `json:"issue_category"`
	RequesterEmail string `json:"requesteremail"`
	Severity       string `json:"severity"`
	Task           string `json:"task"`
}

// ShoppingTicketPayload matches the online-shopping API schema.
type ShoppingTicketPayload struct {
	TicketID       string `json:"ticketId"`
	Subject        string `json:"subject"`
	Description    string `json:"description"`
	RequesterEmail string `json:"requesterEmail"`
	IssueCategory  string `json:"issue_category"`
	Severity       string `json:"severity"`
}

// InventoryTicketPayload matches the inventory API schema.
type InventoryTicketPayload struct {
	TicketID       string `json:"ticketid"`
	Subject        string `json:"subject"`
	Description    string `json:"description"`
	RequesterEmail string `json:"requesteremail"`
	IssueCategory  string `json:"issue_category"`
	Task           string `json:"task"`
}

// RoutingDecision selects one target and carries the fully built payload.
type RoutingDecision struct {
	TicketID  string
	Target    domain.Target
	URL       string
	AuthStyle domain.AuthStyle
	APIKey    string
	Payload   any
}

// Classifier maps an issue category to exactly one downstream target.
type Classifier struct {
	targets config.TargetsConfig
}

// NewClassifier constructs a classifier over the configured targets.
func NewClassifier(targets config.TargetsConfig) *Classifier {
	return &Classifier{targets: targets}
}

// Classify validates required fields and resolves the routing decision.
// Unknown categories are rejected, never dropped.
func (c *Classifier) Classify(ticket domain.Ticket) (RoutingDecision, error) {
	if strings.TrimSpace(ticket.ID) == "" {
		return RoutingDecision{}, apperrors.NewMissingRequiredField("ticketId")
	}
	if strings.TrimSpace(ticket.IssueCategory) == "" {
		return RoutingDecision{}, apperrors.NewMissingRequiredField("issueCategory")
	}

	category := strings.ToLower(strings.TrimSpace(ticket.IssueCategory))
	switch domain.IssueCategory(category) {
	case domain.CategoryBilling:
		return RoutingDecision{
			TicketID:  ticket.ID,
			Target:    domain.TargetPOS,
			URL:       c.targets.POS.URL,
			AuthStyle: posAuthStyle(c.targets.POS.APIKey),
			APIKey:    c.targets.POS.APIKey,
			Payload: POSTicketPayload{
				TicketID:       ticket.ID,
				Subject:        ticket.IssueTitle,
				Description:    ticket.IssueDescription,
				IssueCategory:  category,
				RequesterEmail: ticket.UserEmail,
				Severity:       SeverityImmediateAttention,
				Task:           TaskCustomerRefundAlert,
			},
		}, nil
	case domain.CategoryAccess:
		return RoutingDecision{
			TicketID:  ticket.ID,
			Target:    domain.TargetShopping,
			URL:       c.targets.Shopping.URL,
			AuthStyle: domain.AuthStyleBearer,
			APIKey:    c.targets.Shopping.APIKey,
			Payload: ShoppingTicketPayload{
				TicketID:       ticket.ID,
				Subject:        ticket.IssueTitle,
				Description:    ticket.IssueDescription,
				RequesterEmail: ticket.UserEmail,
				IssueCategory:  category,
				Severity:       SeverityImmediateAttention,
			},
		}, nil
	case domain.CategoryStockIssue:
		return RoutingDecision{
			TicketID:  ticket.ID,
			Target:    domain.TargetInventory,
			URL:       inventoryURL(c.targets.Inventory.URL, ticket.ID),
			AuthStyle: domain.AuthStyleAPIKey,
			APIKey:    c.targets.Inventory.APIKey,
			Payload: InventoryTicketPayload{
				TicketID:       ticket.ID,
				Subject:        ticket.IssueTitle,
				Description:    ticket.IssueDescription,
				RequesterEmail: ticket.UserEmail,
				IssueCategory:  inventoryCategoryItemNotFound,
				Task:           TaskVerifyStock,
			},
		}, nil
	default:
		return RoutingDecision{}, apperrors.NewUnsupportedCategory(ticket.IssueCategory)
	}
}

// BulkDecision builds the fixed POS-shaped decision used by bulk re-forwarding.
// Bulk mode forwards every ticket to the POS function; only the task tag is
// derived from the category.
func (c *Classifier) BulkDecision(ticket domain.Ticket) RoutingDecision {
	category := strings.ToLower(strings.TrimSpace(ticket.IssueCategory))
	return RoutingDecision{
		TicketID:  ticket.ID,
		Target:    domain.TargetPOS,
		URL:       c.targets.POS.URL,
		AuthStyle: posAuthStyle(c.targets.POS.APIKey),
		APIKey:    c.targets.POS.APIKey,
		Payload: POSTicketPayload{
			TicketID:       ticket.ID,
			Subject:        ticket.IssueTitle,
			Description:    ticket.IssueDescription,
			IssueCategory:  category,
			RequesterEmail: ticket.UserEmail,
			Severity:       SeverityImmediateAttention,
			Task:           DeriveTask(category),
		},
	}
}

// DeriveTask maps a category to the bulk-mode task tag.
func DeriveTask(category string) string {
	switch domain.IssueCategory(strings.ToLower(category)) {
	case domain.CategoryBilling:
		return TaskCustomerRefundAlert
	case domain.CategoryStockIssue:
		return TaskVerifyStock
	default:
		return TaskGeneralSupport
	}
}

// Some POS deployments run without a token; the relay then skips the
// Authorization header entirely.
func posAuthStyle(apiKey string) domain.AuthStyle {
	if apiKey == "" {
		return domain.AuthStyleNone
	}
	return domain.AuthStyleBearer
}

func inventoryURL(base, ticketID string) string {
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), ticketID)
}
