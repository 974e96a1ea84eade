package relay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-relay/internal/domain"
)

func newTestDispatcher() *HTTPDispatcher {
	return NewHTTPDispatcher(&http.Client{}, 2*time.Second, zap.NewNop())
}

func TestDispatchSuccessBearerAuth(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pos-42","status":"accepted"}`))
	}))
	defer server.Close()

	decision := RoutingDecision{
		TicketID:  "T1",
		Target:    domain.TargetPOS,
		URL:       server.URL,
		AuthStyle: domain.AuthStyleBearer,
		APIKey:    "pos-key",
		Payload: POSTicketPayload{
			TicketID:      "T1",
			IssueCategory: "billing",
			Severity:      SeverityImmediateAttention,
			Task:          TaskCustomerRefundAlert,
		},
	}

	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.True(t, result.Success)
	assert.Equal(t, "Bearer pos-key", gotAuth)
	assert.JSONEq(t, `{"id":"pos-42","status":"accepted"}`, string(result.Detail))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	assert.Equal(t, "T1", sent["ticketid"])
	assert.Equal(t, "CUSTOMER_REFUND_ALERT", sent["task"])
}

func TestDispatchAPIKeyAuth(t *testing.T) {
	var gotKey, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	decision := RoutingDecision{
		TicketID:  "T2",
		Target:    domain.TargetInventory,
		URL:       server.URL + "/T2",
		AuthStyle: domain.AuthStyleAPIKey,
		APIKey:    "inv-key",
		Payload:   InventoryTicketPayload{TicketID: "T2", IssueCategory: "itemnotfound", Task: TaskVerifyStock},
	}

	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.True(t, result.Success)
	assert.Equal(t, "inv-key", gotKey)
	assert.Empty(t, gotAuth)
}

func TestDispatchUnauthenticated(t *testing.T) {
	var gotAuth, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-API-Key")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	decision := RoutingDecision{
		TicketID:  "T1",
		Target:    domain.TargetPOS,
		URL:       server.URL,
		AuthStyle: domain.AuthStyleNone,
		Payload:   POSTicketPayload{TicketID: "T1", IssueCategory: "billing"},
	}

	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.True(t, result.Success)
	assert.Empty(t, gotAuth, "no credential header for unauthenticated deployments")
	assert.Empty(t, gotKey)
}

func TestDispatchNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	decision := RoutingDecision{TicketID: "T1", Target: domain.TargetShopping, URL: server.URL}
	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.False(t, result.Success)
	assert.Equal(t, CodeDownstreamFailure, result.Code)
	assert.Contains(t, result.Error, "502")
	assert.Contains(t, result.Error, "upstream exploded")
}

func TestDispatchNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	decision := RoutingDecision{TicketID: "T1", Target: domain.TargetPOS, URL: url}
	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.False(t, result.Success)
	assert.Equal(t, CodeDownstreamFailure, result.Code)
	assert.Contains(t, result.Error, "request to pos failed")
}

func TestDispatchMissingURL(t *testing.T) {
	decision := RoutingDecision{TicketID: "T1", Target: domain.TargetPOS}
	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.False(t, result.Success)
	assert.Equal(t, CodeMissingConfiguration, result.Code)
}

func TestDispatchNonJSONSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	decision := RoutingDecision{TicketID: "T1", Target: domain.TargetPOS, URL: server.URL}
	result := newTestDispatcher().Dispatch(context.Background(), decision)

	require.True(t, result.Success)
	assert.Equal(t, `"created"`, string(result.Detail))
}
