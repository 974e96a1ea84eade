package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-relay/internal/api/dto"
	"github.com/spec-kit/ticket-relay/internal/domain"
	"github.com/spec-kit/ticket-relay/internal/service"
	apperrors "github.com/spec-kit/ticket-relay/pkg/util/errorutil"
)

// TicketsHandler manages ticket submission and lookup endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	forwarder *service.ForwardService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, forwardService *service.ForwardService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, forwarder: forwardService}
}

// SubmitTicket POST /tickets. Persists the ticket and relays it; a failed
// relay is reported alongside the created ticket, not as a request failure.
func (h *TicketsHandler) SubmitTicket(c *fiber.Ctx) error {
	var req dto.SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, result, err := h.service.SubmitTicket(c.Context(), service.TicketSubmitInput{
		IssueTitle:       req.IssueTitle,
		IssueDescription: req.IssueDescription,
		UserEmail:        req.UserEmail,
		IssueCategory:    req.IssueCategory,
	})
	if err != nil && ticket == nil {
		return err
	}

	forward := fiber.Map{"success": false}
	if err != nil {
		forward["reason"] = apperrors.ToDomainError(err).Message
	} else if result != nil {
		forward["success"] = true
		forward["target"] = result.Target
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"ticket":  ticketSummary(ticket),
			"forward": forward,
		},
	})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id. The cached outcome of the latest dispatch, when
// still present in Redis, rides along as lastForward.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	data := fiber.Map{"ticket": ticketSummary(ticket)}
	if cached := h.forwarder.LastResult(c.Context(), ticket.ID); cached != nil {
		data["lastForward"] = dto.ForwardAttempt{
			Target:      cached.Target,
			Success:     cached.Success,
			Detail:      cached.Detail,
			AttemptedAt: cached.AttemptedAt,
		}
	}
	return c.JSON(fiber.Map{"data": data})
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:               ticket.ID,
		IssueTitle:       ticket.IssueTitle,
		IssueDescription: ticket.IssueDescription,
		UserEmail:        ticket.UserEmail,
		IssueCategory:    ticket.IssueCategory,
		ForwardStatus:    ticket.ForwardStatus,
		ForwardedAt:      ticket.ForwardedAt,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
}
