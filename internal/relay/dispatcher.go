package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-relay/internal/domain"
)

// Failure codes carried on ForwardResult.
const (
	CodeMissingConfiguration = "MISSING_CONFIGURATION"
	CodeDownstreamFailure    = "DOWNSTREAM_FAILURE"
)

// ForwardResult is the structured outcome of one dispatch attempt.
type ForwardResult struct {
	TicketID string
	Target   domain.Target
	Success  bool
	Detail   json.RawMessage
	Error    string
	Code     string
}

// Dispatcher performs the outbound call for a routing decision.
type Dispatcher interface {
	Dispatch(ctx context.Context, decision RoutingDecision) ForwardResult
}

// HTTPDispatcher sends a single authenticated POST per decision. It never
// returns an error: both HTTP-level and network-level failures come back as
// a structured ForwardResult.
type HTTPDispatcher struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// NewHTTPDispatcher constructs the dispatcher. A zero timeout falls back to
// 15 seconds so a hanging downstream cannot stall the bulk loop indefinitely.
func NewHTTPDispatcher(client *http.Client, timeout time.Duration, logger *zap.Logger) *HTTPDispatcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPDispatcher{client: client, timeout: timeout, logger: logger}
}

// Dispatch posts the decision payload to its target. No retries.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, decision RoutingDecision) ForwardResult {
	result := ForwardResult{TicketID: decision.TicketID, Target: decision.Target}

	if decision.URL == "" {
		result.Code = CodeMissingConfiguration
		result.Error = fmt.Sprintf("no URL configured for target %s", decision.Target)
		return result
	}

	body, err := json.Marshal(decision.Payload)
	if err != nil {
		result.Code = CodeDownstreamFailure
		result.Error = fmt.Sprintf("encode payload for %s: %v", decision.Target, err)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, decision.URL, bytes.NewReader(body))
	if err != nil {
		result.Code = CodeDownstreamFailure
		result.Error = fmt.Sprintf("build request for %s: %v", decision.Target, err)
		return result
	}
	req.Header.Set("Content-Type", "application/json")

	switch decision.AuthStyle {
	case domain.AuthStyleNone:
		// unauthenticated deployment, no credential header
	case domain.AuthStyleBearer:
		if decision.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+decision.APIKey)
		}
	case domain.AuthStyleAPIKey:
		if decision.APIKey != "" {
			req.Header.Set("X-API-Key", decision.APIKey)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		result.Code = CodeDownstreamFailure
		result.Error = fmt.Sprintf("request to %s failed: %v", decision.Target, err)
		d.logger.Warn("dispatch network failure",
			zap.String("ticket_id", decision.TicketID),
			zap.String("target", string(decision.Target)),
			zap.Error(err))
		return result
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Code = CodeDownstreamFailure
		result.Error = fmt.Sprintf("read response from %s: %v", decision.Target, err)
		return result
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		result.Code = CodeDownstreamFailure
		result.Error = fmt.Sprintf("%s responded %d: %s", decision.Target, resp.StatusCode, string(raw))
		d.logger.Warn("dispatch rejected by downstream",
			zap.String("ticket_id", decision.TicketID),
			zap.String("target", string(decision.Target)),
			zap.Int("status", resp.StatusCode))
		return result
	}

	result.Success = true
	if json.Valid(raw) && len(raw) > 0 {
		result.Detail = json.RawMessage(raw)
	} else {
		quoted, _ := json.Marshal(string(raw))
		result.Detail = quoted
	}
	d.logger.Info("ticket dispatched",
		zap.String("ticket_id", decision.TicketID),
		zap.String("target", string(decision.Target)),
		zap.Int("status", resp.StatusCode))
	return result
}
