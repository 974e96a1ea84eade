package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-relay/internal/api/dto"
	"github.com/spec-kit/ticket-relay/internal/domain"
	"github.com/spec-kit/ticket-relay/internal/service"
	apperrors "github.com/spec-kit/ticket-relay/pkg/util/errorutil"
)

// ForwardHandler exposes the relay's single and bulk forwarding endpoints.
type ForwardHandler struct {
	service *service.ForwardService
}

// NewForwardHandler constructs handler.
func NewForwardHandler(forwardService *service.ForwardService) *ForwardHandler {
	return &ForwardHandler{service: forwardService}
}

// ForwardTicket POST /ticket/forward. Exactly one downstream call per
// invocation; classification rejections return 400 before any network I/O.
func (h *ForwardHandler) ForwardTicket(c *fiber.Ctx) error {
	var req dto.ForwardTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket := domain.Ticket{
		ID:               req.TicketID,
		IssueTitle:       req.IssueTitle,
		IssueDescription: req.IssueDescription,
		UserEmail:        req.UserEmail,
		IssueCategory:    req.IssueCategory,
	}

	result, err := h.service.ForwardTicket(c.Context(), ticket)
	if err != nil {
		return err
	}

	return c.JSON(dto.ForwardResponse{
		Message: fmt.Sprintf("Ticket %s forwarded to %s.", result.TicketID, result.Target),
		Results: map[string]json.RawMessage{
			string(result.Target): result.Detail,
		},
	})
}

// ForwardAll POST /ticket/forward-all. Bulk re-forward of every stored
// ticket; per-ticket failures are reported in the manifest, never as a
// request failure.
func (h *ForwardHandler) ForwardAll(c *fiber.Ctx) error {
	entries, err := h.service.ForwardAll(c.Context())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return c.JSON(fiber.Map{"message": "No tickets found."})
	}

	forwarded := make([]dto.BulkForwardEntry, 0, len(entries))
	for _, entry := range entries {
		forwarded = append(forwarded, dto.BulkForwardEntry{
			TicketID: entry.TicketID,
			Status:   entry.Status,
		})
	}
	return c.JSON(dto.BulkForwardResponse{Forwarded: forwarded})
}
