package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-relay/internal/domain"
	"github.com/spec-kit/ticket-relay/internal/events"
	"github.com/spec-kit/ticket-relay/internal/observability"
	"github.com/spec-kit/ticket-relay/internal/relay"
	"github.com/spec-kit/ticket-relay/internal/repository"
	apperrors "github.com/spec-kit/ticket-relay/pkg/util/errorutil"
)

// BulkForwardEntry is one line of the bulk re-forward manifest.
type BulkForwardEntry struct {
	TicketID string `json:"ticketid"`
	Status   string `json:"status"`
}

// ForwardService orchestrates single and bulk forwarding.
type ForwardService struct {
	tickets    repository.TicketRepository
	cache      repository.ForwardResultCache
	classifier *relay.Classifier
	dispatcher relay.Dispatcher
	events     events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// ForwardDependencies bundles collaborators for the forward service.
type ForwardDependencies struct {
	TicketRepo  repository.TicketRepository
	ResultCache repository.ForwardResultCache
	Classifier  *relay.Classifier
	Dispatcher  relay.Dispatcher
	Events      events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// NewForwardService constructs the service.
func NewForwardService(deps ForwardDependencies) *ForwardService {
	return &ForwardService{
		tickets:    deps.TicketRepo,
		cache:      deps.ResultCache,
		classifier: deps.Classifier,
		dispatcher: deps.Dispatcher,
		events:     deps.Events,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// ForwardTicket runs single-ticket mode: classify, dispatch once, report.
// Rejections (missing field, unsupported category) return an error before any
// network I/O; dispatch failures return an error carrying the failure detail.
func (s *ForwardService) ForwardTicket(ctx context.Context, ticket domain.Ticket) (*relay.ForwardResult, error) {
	decision, err := s.classifier.Classify(ticket)
	if err != nil {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketRejected,
			TicketID: ticket.ID,
			Payload: events.TicketRejectedPayload{
				IssueCategory: ticket.IssueCategory,
				Reason:        err.Error(),
			},
		})
		return nil, err
	}

	result := s.dispatcher.Dispatch(ctx, decision)
	s.metrics.RecordDispatch(string(result.Target), result.Success)
	s.cacheResult(ctx, result)

	if !result.Success {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketForwardFailed,
			TicketID: ticket.ID,
			Payload: events.TicketForwardFailedPayload{
				Target: result.Target,
				Reason: result.Error,
			},
		})
		if result.Code == relay.CodeMissingConfiguration {
			return &result, apperrors.NewMissingConfiguration(string(result.Target))
		}
		return &result, apperrors.NewDownstreamFailure(string(result.Target), result.Error)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketForwarded,
		TicketID: ticket.ID,
		Payload:  events.TicketForwardedPayload{Target: result.Target},
	})
	return &result, nil
}

// ForwardStored loads a persisted ticket, forwards it, and records the
// outcome on the ticket row.
func (s *ForwardService) ForwardStored(ctx context.Context, ticketID string) (*relay.ForwardResult, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
	}

	result, err := s.ForwardTicket(ctx, *ticket)
	s.recordOutcome(ctx, ticketID, result, err)
	return result, err
}

// ForwardAll runs bulk mode: every stored ticket is sent sequentially to the
// POS function with a category-derived task. Individual failures are recorded
// in the manifest and never abort the loop.
func (s *ForwardService) ForwardAll(ctx context.Context) ([]BulkForwardEntry, error) {
	tickets, err := s.tickets.ListAll(ctx)
	if err != nil {
		return nil, apperrors.NewStoreReadFailure(err)
	}
	if len(tickets) == 0 {
		return nil, nil
	}

	entries := make([]BulkForwardEntry, 0, len(tickets))
	for i := range tickets {
		ticket := tickets[i]
		decision := s.classifier.BulkDecision(ticket)
		result := s.dispatcher.Dispatch(ctx, decision)
		s.metrics.RecordDispatch(string(result.Target), result.Success)
		s.cacheResult(ctx, result)

		entry := BulkForwardEntry{TicketID: ticket.ID}
		if result.Success {
			entry.Status = "forwarded"
			s.recordOutcome(ctx, ticket.ID, &result, nil)
		} else {
			entry.Status = fmt.Sprintf("failed: %s", result.Error)
			s.recordOutcome(ctx, ticket.ID, &result, apperrors.NewDownstreamFailure(string(result.Target), result.Error))
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// LastResult returns the cached outcome of the most recent dispatch attempt
// for a ticket, or nil when no attempt is cached.
func (s *ForwardService) LastResult(ctx context.Context, ticketID string) *repository.CachedForwardResult {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, ticketID)
	if err != nil {
		s.logger.Debug("forward result cache read failed",
			zap.String("ticket_id", ticketID), zap.Error(err))
		return nil
	}
	return cached
}

func (s *ForwardService) recordOutcome(ctx context.Context, ticketID string, result *relay.ForwardResult, forwardErr error) {
	if s.tickets == nil {
		return
	}
	status := domain.ForwardStatusFailed
	var forwardedAt *time.Time
	if forwardErr == nil && result != nil && result.Success {
		status = domain.ForwardStatusForwarded
		now := time.Now()
		forwardedAt = &now
	} else if de := apperrors.ToDomainError(forwardErr); de != nil && de.HTTPStatus < 500 {
		status = domain.ForwardStatusRejected
	}
	if err := s.tickets.UpdateForwardStatus(ctx, ticketID, status, forwardedAt); err != nil {
		s.logger.Warn("failed to record forward status",
			zap.String("ticket_id", ticketID), zap.Error(err))
	}
}

// cacheResult is best-effort; a cache failure never fails a forward.
func (s *ForwardService) cacheResult(ctx context.Context, result relay.ForwardResult) {
	if s.cache == nil {
		return
	}
	detail := result.Error
	if result.Success {
		detail = string(result.Detail)
	}
	cached := repository.CachedForwardResult{
		TicketID:    result.TicketID,
		Target:      result.Target,
		Success:     result.Success,
		Detail:      detail,
		AttemptedAt: time.Now(),
	}
	if err := s.cache.Put(ctx, cached); err != nil {
		s.logger.Debug("forward result cache write failed",
			zap.String("ticket_id", result.TicketID), zap.Error(err))
	}
}

func (s *ForwardService) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now()
	_ = s.events.Publish(ctx, event)
}
