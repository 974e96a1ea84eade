package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-relay/internal/api/http"
	"github.com/spec-kit/ticket-relay/internal/api/http/handlers"
	"github.com/spec-kit/ticket-relay/internal/auth"
	"github.com/spec-kit/ticket-relay/internal/config"
	"github.com/spec-kit/ticket-relay/internal/domain"
	"github.com/spec-kit/ticket-relay/internal/events"
	"github.com/spec-kit/ticket-relay/internal/observability"
	"github.com/spec-kit/ticket-relay/internal/relay"
	"github.com/spec-kit/ticket-relay/internal/repository"
	"github.com/spec-kit/ticket-relay/internal/service"
)

type fakeDispatcher struct {
	calls   int
	failFor map[string]string
}

func (d *fakeDispatcher) Dispatch(_ context.Context, decision relay.RoutingDecision) relay.ForwardResult {
	d.calls++
	result := relay.ForwardResult{TicketID: decision.TicketID, Target: decision.Target}
	if reason, ok := d.failFor[decision.TicketID]; ok {
		result.Code = relay.CodeDownstreamFailure
		result.Error = reason
		return result
	}
	result.Success = true
	result.Detail = json.RawMessage(`{"status":"accepted"}`)
	return result
}

type fakeTicketRepo struct {
	tickets []domain.Ticket
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			ticket := r.tickets[i]
			return &ticket, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	return append([]domain.Ticket{}, r.tickets...), nil
}

func (r *fakeTicketRepo) UpdateForwardStatus(_ context.Context, id string, status domain.ForwardStatus, _ *time.Time) error {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			r.tickets[i].ForwardStatus = status
		}
	}
	return nil
}

var _ repository.TicketRepository = (*fakeTicketRepo)(nil)

type fakeForwardCache struct {
	entries map[string]repository.CachedForwardResult
}

func (c *fakeForwardCache) Put(_ context.Context, result repository.CachedForwardResult) error {
	c.entries[result.TicketID] = result
	return nil
}

func (c *fakeForwardCache) Get(_ context.Context, ticketID string) (*repository.CachedForwardResult, error) {
	result, ok := c.entries[ticketID]
	if !ok {
		return nil, nil
	}
	return &result, nil
}

type testEnv struct {
	app        *fiber.App
	repo       *fakeTicketRepo
	dispatcher *fakeDispatcher
	cache      *fakeForwardCache
	tokens     *auth.TokenManager
}

func newTestApp(t *testing.T) *testEnv {
	t.Helper()

	repo := &fakeTicketRepo{}
	dispatcher := &fakeDispatcher{failFor: map[string]string{}}
	cache := &fakeForwardCache{entries: map[string]repository.CachedForwardResult{}}
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	eventBus := events.NewInMemoryDispatcher()

	classifier := relay.NewClassifier(config.TargetsConfig{
		POS:       config.TargetConfig{URL: "https://pos.example.com/tickets", APIKey: "k"},
		Shopping:  config.TargetConfig{URL: "https://shop.example.com/support", APIKey: "k"},
		Inventory: config.TargetConfig{URL: "https://inventory.example.com/stock", APIKey: "k"},
	})

	forwardService := service.NewForwardService(service.ForwardDependencies{
		TicketRepo:  repo,
		ResultCache: cache,
		Classifier:  classifier,
		Dispatcher:  dispatcher,
		Events:      eventBus,
		Metrics:     metrics,
		Logger:      logger,
	})
	ticketService := service.NewTicketService(repo, forwardService, eventBus)

	tokens := auth.NewTokenManager("test-secret", 60)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("ticket-relay", "test", nil, nil),
		Tickets:        handlers.NewTicketsHandler(ticketService, forwardService),
		Forward:        handlers.NewForwardHandler(forwardService),
		Admin:          handlers.NewAdminHandler(service.NewAuthService(config.AuthConfig{JWTSecret: "test-secret"})),
		AuthMiddleware: authMiddleware,
	})

	return &testEnv{app: app, repo: repo, dispatcher: dispatcher, cache: cache, tokens: tokens}
}

func (e *testEnv) request(t *testing.T, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, _, err := e.tokens.GenerateToken("admin", auth.RoleAdmin)
	require.NoError(t, err)
	return token
}

func TestForwardTicketEndpointSuccess(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodPost, "/ticket/forward", map[string]string{
		"ticketId":      "T1",
		"issueTitle":    "Refund",
		"issueCategory": "billing",
	}, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ticket T1 forwarded to pos.", body["message"])
	results, ok := body["results"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, results, "pos")
	assert.Equal(t, 1, env.dispatcher.calls)
}

func TestForwardTicketEndpointUnsupportedCategory(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodPost, "/ticket/forward", map[string]string{
		"ticketId":      "T3",
		"issueCategory": "shipping",
	}, "")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Unsupported issueCategory: shipping.", body["message"])
	assert.Equal(t, 0, env.dispatcher.calls, "no downstream call for rejected categories")
}

func TestForwardTicketEndpointMissingTicketID(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodPost, "/ticket/forward", map[string]string{
		"issueCategory": "billing",
	}, "")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_REQUIRED_FIELD", body["error"])
	assert.Equal(t, 0, env.dispatcher.calls)
}

func TestForwardTicketEndpointDispatchFailure(t *testing.T) {
	env := newTestApp(t)
	env.dispatcher.failFor["T1"] = "pos responded 502: boom"

	resp, body := env.request(t, http.MethodPost, "/ticket/forward", map[string]string{
		"ticketId":      "T1",
		"issueCategory": "billing",
	}, "")

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "DOWNSTREAM_FAILURE", body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestForwardAllEndpointEmptyStore(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodPost, "/ticket/forward-all", nil, env.adminToken(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "No tickets found.", body["message"])
}

func TestForwardAllEndpointManifest(t *testing.T) {
	env := newTestApp(t)
	env.repo.tickets = []domain.Ticket{
		{ID: "T1", IssueCategory: "billing"},
		{ID: "T2", IssueCategory: "stock_issue"},
	}
	env.dispatcher.failFor["T2"] = "pos responded 503: unavailable"

	resp, body := env.request(t, http.MethodPost, "/ticket/forward-all", nil, env.adminToken(t))

	require.Equal(t, http.StatusOK, resp.StatusCode)
	forwarded, ok := body["forwarded"].([]any)
	require.True(t, ok)
	require.Len(t, forwarded, 2)

	first := forwarded[0].(map[string]any)
	assert.Equal(t, "T1", first["ticketid"])
	assert.Equal(t, "forwarded", first["status"])

	second := forwarded[1].(map[string]any)
	assert.Equal(t, "T2", second["ticketid"])
	assert.Contains(t, second["status"], "503")
}

func TestForwardAllEndpointRequiresAuth(t *testing.T) {
	env := newTestApp(t)

	resp, _ := env.request(t, http.MethodPost, "/ticket/forward-all", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, env.dispatcher.calls)
}

func TestSubmitTicketEndpoint(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodPost, "/tickets", map[string]string{
		"issueTitle":    "Out of stock",
		"issueCategory": "stock_issue",
		"userEmail":     "a@b.com",
	}, "")

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)

	ticket := data["ticket"].(map[string]any)
	assert.NotEmpty(t, ticket["id"])
	assert.Equal(t, "stock_issue", ticket["issueCategory"])

	forward := data["forward"].(map[string]any)
	assert.Equal(t, true, forward["success"])
	assert.Equal(t, "inventory", forward["target"])

	require.Len(t, env.repo.tickets, 1)
	assert.Equal(t, domain.ForwardStatusForwarded, env.repo.tickets[0].ForwardStatus)
}

func TestSubmitTicketEndpointMissingCategory(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodPost, "/tickets", map[string]string{
		"issueTitle": "whatever",
	}, "")

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_REQUIRED_FIELD", body["error"])
	assert.Empty(t, env.repo.tickets)
}

func TestListTicketsEndpointRequiresAdmin(t *testing.T) {
	env := newTestApp(t)
	env.repo.tickets = []domain.Ticket{{ID: "T1", IssueCategory: "billing"}}

	resp, _ := env.request(t, http.MethodGet, "/tickets", nil, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.request(t, http.MethodGet, "/tickets", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, data, 1)
}

func TestGetTicketEndpointIncludesLastForward(t *testing.T) {
	env := newTestApp(t)
	env.repo.tickets = []domain.Ticket{{ID: "T1", IssueCategory: "billing"}}

	_, _ = env.request(t, http.MethodPost, "/ticket/forward", map[string]string{
		"ticketId":      "T1",
		"issueCategory": "billing",
	}, "")

	resp, body := env.request(t, http.MethodGet, "/tickets/T1", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	ticket := data["ticket"].(map[string]any)
	assert.Equal(t, "T1", ticket["id"])

	last, ok := data["lastForward"].(map[string]any)
	require.True(t, ok, "cached dispatch outcome should ride along")
	assert.Equal(t, "pos", last["target"])
	assert.Equal(t, true, last["success"])
	assert.NotEmpty(t, last["attemptedAt"])
}

func TestGetTicketEndpointWithoutCachedForward(t *testing.T) {
	env := newTestApp(t)
	env.repo.tickets = []domain.Ticket{{ID: "T9", IssueCategory: "access"}}

	resp, body := env.request(t, http.MethodGet, "/tickets/T9", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, data, "lastForward")
	ticket := data["ticket"].(map[string]any)
	assert.Equal(t, "T9", ticket["id"])
}

func TestHealthLive(t *testing.T) {
	env := newTestApp(t)

	resp, body := env.request(t, http.MethodGet, "/health/live", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}
