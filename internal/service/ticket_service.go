package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/ticket-relay/internal/domain"
	"github.com/spec-kit/ticket-relay/internal/events"
	"github.com/spec-kit/ticket-relay/internal/relay"
	"github.com/spec-kit/ticket-relay/internal/repository"
	apperrors "github.com/spec-kit/ticket-relay/pkg/util/errorutil"
)

// TicketService coordinates ticket submission and lookup.
type TicketService struct {
	tickets   repository.TicketRepository
	forwarder *ForwardService
	events    events.Dispatcher
}

// TicketSubmitInput describes the public submission payload.
type TicketSubmitInput struct {
	IssueTitle       string
	IssueDescription string
	UserEmail        string
	IssueCategory    string
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, forwarder *ForwardService, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, forwarder: forwarder, events: dispatcher}
}

// SubmitTicket persists a submitted ticket and immediately relays it. The
// forward outcome is recorded on the ticket; a failed forward does not undo
// the submission.
func (s *TicketService) SubmitTicket(ctx context.Context, input TicketSubmitInput) (*domain.Ticket, *relay.ForwardResult, error) {
	if strings.TrimSpace(input.IssueCategory) == "" {
		return nil, nil, apperrors.NewMissingRequiredField("issueCategory")
	}

	ticket := &domain.Ticket{
		ID:               uuid.NewString(),
		IssueTitle:       strings.TrimSpace(input.IssueTitle),
		IssueDescription: strings.TrimSpace(input.IssueDescription),
		UserEmail:        strings.TrimSpace(input.UserEmail),
		IssueCategory:    strings.ToLower(strings.TrimSpace(input.IssueCategory)),
		ForwardStatus:    domain.ForwardStatusPending,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	if s.events != nil {
		_ = s.events.Publish(ctx, events.Event{
			ID:       uuid.NewString(),
			Type:     events.EventTicketReceived,
			TicketID: ticket.ID,
			Payload: events.TicketReceivedPayload{
				IssueCategory: ticket.IssueCategory,
				IssueTitle:    ticket.IssueTitle,
			},
		})
	}

	result, err := s.forwarder.ForwardStored(ctx, ticket.ID)
	return ticket, result, err
}

// ListTickets returns all stored tickets.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreReadFailure(err)
	}
	return tickets, nil
}

// GetTicket fetches one stored ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": id})
	}
	return ticket, nil
}
